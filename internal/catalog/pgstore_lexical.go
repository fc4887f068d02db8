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
)

// LexicalSearch builds and runs the parameterized SQL described by spec
// §4.2(a): category/brand/price filters, a case-insensitive substring
// match on name/description when cleanedText is non-empty, ordered by
// ts_rank_cd with ties broken by ascending product_id.
func (s *PGStore) LexicalSearch(ctx context.Context, filter Filter, cleanedText string, limit int) ([]ScoredProduct, error) {
	sql, args := buildLexicalSQL(filter, cleanedText, limit)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("pgstore lexical search: %w", err)
	}
	defer rows.Close()

	var out []ScoredProduct
	var maxRank float64
	for rows.Next() {
		var p Product
		var priceCents int64
		var rank float64
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Brand, &p.Description, &p.Category,
			&priceCents, &p.AvailableSizes, &p.Inventory, &p.ImageURI, &rank); err != nil {
			return nil, fmt.Errorf("pgstore lexical scan: %w", err)
		}
		p.Price = Money(priceCents)
		if rank > maxRank {
			maxRank = rank
		}
		out = append(out, ScoredProduct{Product: p, LexicalScore: rank})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	normalizeLexicalScores(out, maxRank)
	return out, nil
}

// normalizeLexicalScores maps the candidate set's own maximum rank to 1.0
// (spec §4.2's normalization rule), in place.
func normalizeLexicalScores(out []ScoredProduct, maxRank float64) {
	if maxRank <= 0 {
		return
	}
	for i := range out {
		out[i].LexicalScore /= maxRank
		out[i].Score = out[i].LexicalScore
	}
}
