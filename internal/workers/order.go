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

	"github.com/google/uuid"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/metrics"
)

// OrderWorker is the only path to placing an order; it delegates the
// locked, all-or-nothing transaction to the store (PGStore's pgx
// transaction or FixtureStore's mutex-guarded update — spec §4.5).
type OrderWorker struct {
	store  catalog.ProductStore
	policy catalog.PricingPolicy
}

func NewOrderWorker(store catalog.ProductStore, policy catalog.PricingPolicy) *OrderWorker {
	return &OrderWorker{store: store, policy: policy}
}

func (w *OrderWorker) Tools() []ToolSpec {
	return []ToolSpec{
		{
			Name:    "place_order",
			BestFor: []string{"buy", "order", "checkout", "purchase", "add to cart"},
			UseWhen: "the customer wants to buy specific products and quantities",
			Handler: w.handlePlace,
		},
	}
}

type placeOrderArgs struct {
	CustomerID string                     `json:"customer_id"`
	Items      []catalog.OrderItemRequest `json:"items"`
}

func (w *OrderWorker) handlePlace(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var a placeOrderArgs
	if err := json.Unmarshal(args, &a); err != nil || a.CustomerID == "" {
		return nil, apperr.MissingField("customer_id")
	}
	if len(a.Items) == 0 {
		return nil, apperr.MissingField("items")
	}
	order, err := w.Place(ctx, a.CustomerID, a.Items)
	if err != nil {
		return nil, err
	}
	return json.Marshal(order)
}

// Place runs the algorithm of spec §4.5 as one logical transaction,
// generating a fresh order id per call.
func (w *OrderWorker) Place(ctx context.Context, customerID string, items []catalog.OrderItemRequest) (catalog.Order, error) {
	order, err := w.store.PlaceOrder(ctx, uuid.NewString(), customerID, items, w.policy)
	if err != nil {
		return catalog.Order{}, err
	}
	metrics.OrderPlacedTotal.Inc()
	metrics.OrderValueTotal.Add(float64(order.Total))
	return order, nil
}
