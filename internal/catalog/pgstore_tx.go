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

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
)

// GetProduct returns one product by id, or a not_found apperr.
func (s *PGStore) GetProduct(ctx context.Context, productID string) (Product, error) {
	rows, err := s.pool.Query(ctx, selectProductSQL+" WHERE product_id = $1", productID)
	if err != nil {
		return Product{}, fmt.Errorf("pgstore get product: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return Product{}, err
	}
	if len(products) == 0 {
		return Product{}, apperr.NotFound("product", productID)
	}
	return products[0], nil
}

const selectProductSQL = `SELECT product_id, name, brand, description, category, price_cents,
	available_sizes, inventory, image_uri FROM products`

// scanProducts decodes rows produced by selectProductSQL (embedding and tsv
// are intentionally excluded from this projection; callers that need the
// vector use PGStore.Query instead).
func scanProducts(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		var p Product
		var priceCents int64
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Brand, &p.Description, &p.Category,
			&priceCents, &p.AvailableSizes, &p.Inventory, &p.ImageURI); err != nil {
			return nil, fmt.Errorf("pgstore scan product: %w", err)
		}
		p.Price = Money(priceCents)
		out = append(out, p)
	}
	return out, rows.Err()
}

// PlaceOrder runs spec §4.5's algorithm as one serializable transaction:
// lock each product row with SELECT ... FOR UPDATE, validate quantity and
// inventory, price the order against the currently stored price,
// decrement inventory, and insert the order and its items. Any failure
// after the initial lock rolls back every write.
func (s *PGStore) PlaceOrder(ctx context.Context, orderID, customerID string, requests []OrderItemRequest, policy PricingPolicy) (Order, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Order{}, apperr.StoreFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines := make([]resolvedLine, 0, len(requests))
	for _, req := range requests {
		var p Product
		var priceCents int64
		row := tx.QueryRow(ctx, selectProductSQL+" WHERE product_id = $1 FOR UPDATE", req.ProductID)
		if err := row.Scan(&p.ProductID, &p.Name, &p.Brand, &p.Description, &p.Category,
			&priceCents, &p.AvailableSizes, &p.Inventory, &p.ImageURI); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Order{}, apperr.NotFound("product", req.ProductID)
			}
			return Order{}, apperr.StoreFailure(fmt.Errorf("lock product: %w", err))
		}
		p.Price = Money(priceCents)

		if err := validateLine(p, req.Size, req.Quantity); err != nil {
			return Order{}, err
		}
		lines = append(lines, resolvedLine{product: p, size: req.Size, quantity: req.Quantity})
	}

	items, subtotal, tax, shipping, total := priceOrder(lines, policy)

	for _, l := range lines {
		if _, err := tx.Exec(ctx, `UPDATE products SET inventory = inventory - $1 WHERE product_id = $2`,
			l.quantity, l.product.ProductID); err != nil {
			return Order{}, apperr.StoreFailure(fmt.Errorf("decrement inventory: %w", err))
		}
	}

	var createdAt time.Time
	if err := tx.QueryRow(ctx, `INSERT INTO orders (order_id, customer_id, subtotal_cents, tax_cents, shipping_cents, total_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		orderID, customerID, int64(subtotal), int64(tax), int64(shipping), int64(total), string(OrderConfirmed)).Scan(&createdAt); err != nil {
		return Order{}, apperr.StoreFailure(fmt.Errorf("insert order: %w", err))
	}
	for i, it := range items {
		if _, err := tx.Exec(ctx, `INSERT INTO order_items (order_id, seq, product_id, size, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID, i, it.ProductID, it.Size, it.Quantity, int64(it.UnitPrice)); err != nil {
			return Order{}, apperr.StoreFailure(fmt.Errorf("insert order item: %w", err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, apperr.StoreFailure(fmt.Errorf("commit: %w", err))
	}

	return Order{
		OrderID:    orderID,
		CustomerID: customerID,
		Items:      items,
		Subtotal:   subtotal,
		Tax:        tax,
		Shipping:   shipping,
		Total:      total,
		Status:     OrderConfirmed,
		CreatedAt:  createdAt,
	}, nil
}
