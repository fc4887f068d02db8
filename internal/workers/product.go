// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workers

import (
	"context"
	"encoding/json"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
)

// InventoryStatus is check_inventory's result shape (spec §4.4).
type InventoryStatus struct {
	InStock        bool     `json:"in_stock"`
	Units          int      `json:"units"`
	SizesAvailable []string `json:"sizes_available"`
}

// ProductWorker exposes pure, idempotent product reads. It never mutates
// the catalog.
type ProductWorker struct {
	store catalog.ProductStore
}

func NewProductWorker(store catalog.ProductStore) *ProductWorker {
	return &ProductWorker{store: store}
}

func (w *ProductWorker) Tools() []ToolSpec {
	return []ToolSpec{
		{
			Name:    "get_details",
			BestFor: []string{"details", "description", "price", "tell me about"},
			UseWhen: "the customer asks about a specific product they already identified",
			Handler: w.handleGetDetails,
		},
		{
			Name:    "check_inventory",
			BestFor: []string{"stock", "available", "in stock", "size"},
			UseWhen: "the customer asks whether a product or size is in stock",
			Handler: w.handleCheckInventory,
		},
	}
}

type getDetailsArgs struct {
	ProductID string `json:"product_id"`
}

type checkInventoryArgs struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
}

func (w *ProductWorker) handleGetDetails(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var a getDetailsArgs
	if err := json.Unmarshal(args, &a); err != nil || a.ProductID == "" {
		return nil, apperr.MissingField("product_id")
	}
	p, err := w.GetDetails(ctx, a.ProductID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

func (w *ProductWorker) handleCheckInventory(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var a checkInventoryArgs
	if err := json.Unmarshal(args, &a); err != nil || a.ProductID == "" {
		return nil, apperr.MissingField("product_id")
	}
	status, err := w.CheckInventory(ctx, a.ProductID, a.Size)
	if err != nil {
		return nil, err
	}
	return json.Marshal(status)
}

// GetDetails returns the full product record, or a not_found error.
func (w *ProductWorker) GetDetails(ctx context.Context, productID string) (catalog.Product, error) {
	return w.store.GetProduct(ctx, productID)
}

// CheckInventory reports stock status. When size is supplied and the
// product has a non-empty AvailableSizes list, in_stock additionally
// requires that size to be among them (spec §4.4).
func (w *ProductWorker) CheckInventory(ctx context.Context, productID, size string) (InventoryStatus, error) {
	p, err := w.store.GetProduct(ctx, productID)
	if err != nil {
		return InventoryStatus{}, err
	}

	inStock := p.Inventory > 0
	if inStock && size != "" && len(p.AvailableSizes) > 0 {
		inStock = containsSize(p.AvailableSizes, size)
	}

	return InventoryStatus{
		InStock:        inStock,
		Units:          p.Inventory,
		SizesAvailable: p.AvailableSizes,
	}, nil
}

func containsSize(sizes []string, want string) bool {
	for _, s := range sizes {
		if s == want {
			return true
		}
	}
	return false
}
