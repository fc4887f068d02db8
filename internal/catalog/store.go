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

// Row is one result row from Execute, keyed by column name. Using a
// generic map (rather than a typed result struct) lets the same Store
// interface serve ad hoc filter/aggregate queries from the Hybrid
// Retriever as well as straight product lookups.
type Row map[string]any

// Store is the Catalog Store's entire SQL surface (spec §6): "the store
// abstraction has exactly one operation: execute(sql, params) -> rows".
// PGStore talks to Postgres/Aurora directly; MCPStore reaches the same
// surface through an MCP tool-server hop (Phase 2, "mediated").
type Store interface {
	Execute(ctx context.Context, sql string, params ...any) ([]Row, error)
}

// Candidate is one result of an ANN query: a product id and its cosine
// distance to the query vector.
type Candidate struct {
	ProductID string
	Distance  float64
}

// ANNIndex is the approximate-nearest-neighbor search surface used by the
// Hybrid Retriever's semantic candidate-set step. PGStore satisfies this
// via pgvector's `<=>` operator; WeaviateANNIndex is a swappable
// alternative selected by config.ANNBackend.
type ANNIndex interface {
	Query(ctx context.Context, vector []float32, k int) ([]Candidate, error)
}
