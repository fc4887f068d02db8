// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import "context"

// Filter is the set of hard constraints derived from a ParsedQuery (spec
// §4.2's "Apply filters from ParsedQuery as hard constraints"). It is
// defined here, not in internal/query, so both catalog backends and
// internal/retrieval's post-scoring filter pass share one representation.
type Filter struct {
	Category *Category
	Brand    *string
	PriceMax *Money
}

// Matches reports whether p satisfies every set constraint in f. Used as
// the Go-side "filter-hardness" safety net the Hybrid Retriever applies
// even after a store-side filter (spec §8 item 5).
func (f Filter) Matches(p Product) bool {
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.Brand != nil && !equalFoldASCII(p.Brand, *f.Brand) {
		return false
	}
	if f.PriceMax != nil && p.Price > *f.PriceMax {
		return false
	}
	return true
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// ProductStore is the domain-level surface internal/retrieval and the
// workers depend on. PGStore implements it over its pgx pool (MCPStore
// provides only Execute and LexicalSearch); FixtureStore implements it
// directly over an in-memory slice for tests (spec §8's S1-S6 scenarios).
type ProductStore interface {
	Store
	ANNIndex

	// LexicalSearch ranks products against cleanedText by full-text rank,
	// applying filter as hard SQL-side constraints, ties broken by
	// ascending product_id. When cleanedText is empty, order is by
	// product_id ascending and every row has LexicalScore 0.
	LexicalSearch(ctx context.Context, filter Filter, cleanedText string, limit int) ([]ScoredProduct, error)

	GetProduct(ctx context.Context, productID string) (Product, error)

	PlaceOrder(ctx context.Context, orderID, customerID string, items []OrderItemRequest, policy PricingPolicy) (Order, error)
}
