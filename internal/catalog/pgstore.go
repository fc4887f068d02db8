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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/metrics"
)

// PGStore is the direct (Phase 1/3) Catalog Store transport: a pgx
// connection pool talking to Postgres/Aurora with the pgvector extension
// enabled. Grounded on elchinoo-stormdb's vector and ecommerce plugins,
// which exercise the same pgxpool + pgvector + tsvector combination this
// domain needs.
//
// Thread Safety: safe for concurrent use; pgxpool.Pool manages its own
// connection checkout per call.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPGStore wraps an already-opened pool. The pool's lifecycle (Close) is
// owned by the caller, matching spec §9's "only process-wide mutable state
// is the Catalog Store connection pool... initialized at startup and torn
// down at shutdown."
func NewPGStore(pool *pgxpool.Pool, logger *slog.Logger) *PGStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PGStore{pool: pool, logger: logger}
}

// Execute runs one parameterized SQL statement and decodes every row into
// a Row keyed by column name. This is the Catalog Store's entire SQL
// surface per spec §6.
func (s *PGStore) Execute(ctx context.Context, sql string, params ...any) ([]Row, error) {
	start := time.Now()
	rows, err := s.pool.Query(ctx, sql, params...)
	if err != nil {
		s.logger.Error("catalog query failed", slog.String("sql_summary", summarizeSQL(sql)), slog.Any("error", err))
		return nil, fmt.Errorf("pgstore execute: %w", err)
	}
	defer rows.Close()

	out, err := decodeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("pgstore decode: %w", err)
	}
	s.logger.Debug("catalog query",
		slog.String("sql_summary", summarizeSQL(sql)),
		slog.Int("row_count", len(out)),
		slog.Duration("latency", time.Since(start)),
	)
	return out, nil
}

// Query implements ANNIndex: top-k product ids by pgvector cosine
// distance, restricted to products that have an embedding (spec §3's
// "excluded from semantic results" rule for un-embedded products).
func (s *PGStore) Query(ctx context.Context, vector []float32, k int) ([]Candidate, error) {
	start := time.Now()
	defer func() { metrics.CatalogQueryDuration.WithLabelValues("ann").Observe(time.Since(start).Seconds()) }()

	rows, err := s.pool.Query(ctx,
		`SELECT product_id, embedding <=> $1 AS distance
		 FROM products
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgVectorLiteral(vector), k)
	if err != nil {
		return nil, fmt.Errorf("pgstore ann query: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ProductID, &c.Distance); err != nil {
			return nil, fmt.Errorf("pgstore ann scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// decodeRows converts pgx.Rows into generic Row maps, preserving column
// names from the field descriptions.
func decodeRows(rows pgx.Rows) ([]Row, error) {
	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			row[string(f.Name)] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// pgVectorLiteral formats a vector as pgvector's text input format,
// e.g. "[0.1,0.2,0.3]".
func pgVectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%g", f)
	}
	b.WriteByte(']')
	return b.String()
}

// summarizeSQL truncates a statement for logging so activity events and
// log lines never carry full multi-line SQL bodies.
func summarizeSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	const max = 120
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
