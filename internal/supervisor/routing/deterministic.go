// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routing

import (
	"context"
	"strings"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/workers"
)

// DeterministicRouter is the fixed keyword -> worker table spec §4.6
// requires for property tests: "a fixed routing table... bypasses the
// oracle entirely." Entries are checked in order; the first keyword found
// as a substring of the (lowercased) query wins.
type DeterministicRouter struct {
	table []keywordRoute
}

type keywordRoute struct {
	keyword string
	tool    string
}

// NewDeterministicRouter builds a router from an ordered keyword->tool
// table.
func NewDeterministicRouter(table map[string]string, order []string) *DeterministicRouter {
	routes := make([]keywordRoute, 0, len(order))
	for _, kw := range order {
		routes = append(routes, keywordRoute{keyword: kw, tool: table[kw]})
	}
	return &DeterministicRouter{table: routes}
}

// DefaultTable is the catalog's fixed routing table: image keywords route
// to image_search, order keywords to place_order, stock keywords to
// check_inventory, detail keywords to get_details, and everything else
// falls through to text_search.
func DefaultTable() *DeterministicRouter {
	return NewDeterministicRouter(
		map[string]string{
			"image":     "image_search",
			"photo":     "image_search",
			"buy":       "place_order",
			"order":     "place_order",
			"checkout":  "place_order",
			"purchase":  "place_order",
			"stock":     "check_inventory",
			"available": "check_inventory",
			"details":   "get_details",
		},
		[]string{"image", "photo", "buy", "order", "checkout", "purchase", "stock", "available", "details"},
	)
}

func (r *DeterministicRouter) SelectTool(_ context.Context, query string, available []workers.ToolSpec) (Selection, error) {
	lower := strings.ToLower(query)
	for _, route := range r.table {
		if strings.Contains(lower, route.keyword) && toolAvailable(available, route.tool) {
			return Selection{Tool: route.tool, Confidence: 1.0}, nil
		}
	}
	if toolAvailable(available, "text_search") {
		return Selection{Tool: "text_search", Confidence: 1.0}, nil
	}
	if len(available) > 0 {
		return Selection{Tool: available[0].Name, Confidence: 1.0}, nil
	}
	return Selection{}, nil
}

func toolAvailable(available []workers.ToolSpec, name string) bool {
	for _, t := range available {
		if t.Name == name {
			return true
		}
	}
	return false
}
