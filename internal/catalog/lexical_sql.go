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
	"fmt"
	"strings"
)

// buildLexicalSQL renders the parameterized statement spec §4.2(a)
// describes, shared by PGStore (direct pool.Query) and MCPStore (same SQL
// shipped through Store.Execute over MCP) so Phase 1 and Phase 2 run
// byte-identical queries.
func buildLexicalSQL(filter Filter, cleanedText string, limit int) (string, []any) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != nil {
		where = append(where, "category = "+arg(string(*filter.Category)))
	}
	if filter.Brand != nil {
		where = append(where, "brand ILIKE "+arg(*filter.Brand))
	}
	if filter.PriceMax != nil {
		where = append(where, "price_cents <= "+arg(int64(*filter.PriceMax)))
	}

	rankExpr := "0.0"
	if strings.TrimSpace(cleanedText) != "" {
		where = append(where, "(name ILIKE '%'||"+arg(cleanedText)+"||'%' OR description ILIKE '%'||"+arg(cleanedText)+"||'%' OR tsv @@ plainto_tsquery("+arg(cleanedText)+"))")
		rankExpr = "ts_rank_cd(tsv, plainto_tsquery(" + arg(cleanedText) + "))"
	}

	sql := "SELECT product_id, name, brand, description, category, price_cents, available_sizes, inventory, image_uri, " +
		rankExpr + " AS rank FROM products"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += fmt.Sprintf(" ORDER BY rank DESC, product_id ASC LIMIT %d", limit)
	return sql, args
}

// rowToScoredProduct decodes one generic Row (as produced by Store.Execute,
// e.g. via MCPStore's JSON round-trip) into a ScoredProduct using the
// column layout buildLexicalSQL projects.
func rowToScoredProduct(row Row) (ScoredProduct, error) {
	p := Product{
		ProductID:   asString(row["product_id"]),
		Name:        asString(row["name"]),
		Brand:       asString(row["brand"]),
		Description: asString(row["description"]),
		Category:    Category(asString(row["category"])),
		ImageURI:    asString(row["image_uri"]),
		Inventory:   int(asInt64(row["inventory"])),
		Price:       Money(asInt64(row["price_cents"])),
	}
	if sizes, ok := row["available_sizes"].([]string); ok {
		p.AvailableSizes = sizes
	} else if sizes, ok := row["available_sizes"].([]any); ok {
		for _, s := range sizes {
			p.AvailableSizes = append(p.AvailableSizes, asString(s))
		}
	}
	return ScoredProduct{Product: p, LexicalScore: asFloat64(row["rank"])}, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
