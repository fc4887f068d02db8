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

import "fmt"

// SchemaDDL returns the persisted schema (spec §6) for a store with
// embedding vectors of the given dimension. Provisioning itself is out of
// scope (spec §1); these constants exist so tests can stand up an
// ephemeral fixture database and so an out-of-scope migration tool has a
// single source of truth to start from.
func SchemaDDL(embeddingDim int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS products (
			product_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			brand TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
			available_sizes TEXT[] NOT NULL DEFAULT '{}',
			inventory INTEGER NOT NULL DEFAULT 0 CHECK (inventory >= 0),
			image_uri TEXT NOT NULL DEFAULT '',
			embedding vector(%d),
			tsv tsvector
		)`, embeddingDim),
		`CREATE INDEX IF NOT EXISTS products_tsv_idx ON products USING GIN (tsv)`,
		`CREATE INDEX IF NOT EXISTS products_embedding_idx ON products USING hnsw (embedding vector_cosine_ops)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			subtotal_cents BIGINT NOT NULL,
			tax_cents BIGINT NOT NULL,
			shipping_cents BIGINT NOT NULL,
			total_cents BIGINT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id TEXT NOT NULL REFERENCES orders(order_id),
			seq INTEGER NOT NULL,
			product_id TEXT NOT NULL REFERENCES products(product_id),
			size TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			unit_price_cents BIGINT NOT NULL,
			PRIMARY KEY (order_id, seq)
		)`,
	}
}
