// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog owns the Product and Order data model and the Catalog
// Store abstraction (direct pgx transport, MCP-mediated transport, and an
// in-memory fixture for tests).
package catalog

import (
	"fmt"
	"time"
)

// Category is a closed enumeration; the Query Parser's keyword table is
// declared against exactly these values, in this declaration order.
type Category string

const (
	CategoryRunningShoes    Category = "Running Shoes"
	CategoryTrainingShoes   Category = "Training Shoes"
	CategoryFitnessEquipment Category = "Fitness Equipment"
	CategoryApparel         Category = "Apparel"
	CategoryAccessories     Category = "Accessories"
	CategoryRecovery        Category = "Recovery"
)

// AllCategories is the closed set in declaration order; Parse relies on
// this order for "first match wins by declaration order" (spec §4.1).
var AllCategories = []Category{
	CategoryRunningShoes,
	CategoryTrainingShoes,
	CategoryFitnessEquipment,
	CategoryApparel,
	CategoryAccessories,
	CategoryRecovery,
}

// Money is an exact two-decimal monetary amount stored as integer cents,
// avoiding the rounding drift of float64 arithmetic across the order
// pipeline (spec §4.5 "exactly under half-up rounding").
type Money int64

// NewMoneyFromFloat converts a float dollar amount to Money using half-up
// rounding to the nearest cent.
func NewMoneyFromFloat(dollars float64) Money {
	if dollars < 0 {
		return Money(-int64(-dollars*100 + 0.5))
	}
	return Money(int64(dollars*100 + 0.5))
}

// Float64 returns the dollar value as a float64, for display or for
// feeding external APIs that expect a JSON number.
func (m Money) Float64() float64 { return float64(m) / 100.0 }

// Decimal renders the amount as a fixed two-decimal string, e.g. "129.99".
func (m Money) Decimal() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Mul multiplies the amount by an integer quantity, exactly (no float
// round-trip), preserving the subtotal = Σ unit_price·quantity invariant.
func (m Money) Mul(qty int) Money { return Money(int64(m) * int64(qty)) }

// Add sums two amounts exactly.
func (m Money) Add(o Money) Money { return m + o }

// Product is the catalog's sellable item. Embedding is nil when the
// product has not been indexed for semantic search (spec §3 "all products
// either have one or have none and are excluded from semantic results").
type Product struct {
	ProductID      string
	Name           string
	Brand          string
	Description    string
	Category       Category
	Price          Money
	AvailableSizes []string
	Inventory      int
	ImageURI       string
	Embedding      []float32
}

// ScoredProduct is a Product annotated with the Hybrid Retriever's scores.
type ScoredProduct struct {
	Product
	SemanticScore float64
	LexicalScore  float64
	Score         float64
}

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderFailed    OrderStatus = "failed"
)

// OrderItem is one line of an Order, priced at the time of purchase.
type OrderItem struct {
	ProductID string
	Size      string
	Quantity  int
	UnitPrice Money
}

// Order is the persisted result of Worker-Order's Place operation.
type Order struct {
	OrderID    string
	CustomerID string
	Items      []OrderItem
	Subtotal   Money
	Tax        Money
	Shipping   Money
	Total      Money
	Status     OrderStatus
	CreatedAt  time.Time
}
