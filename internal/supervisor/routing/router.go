// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routing supplements the Supervisor's delegation step (spec
// §4.6/§9) with a deterministic fixed-table router for property tests and
// a BM25+LLM escalation router for the agentic path, rescoped from the
// teacher's 24-tool code-intelligence routing package down to this
// module's 3-worker catalog.
package routing

import (
	"context"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/workers"
)

// Selection is one routing decision: which worker tool to invoke and how
// confident the router is in that choice.
type Selection struct {
	Tool       string
	Confidence float64
}

// Router chooses a tool given a query and the available tool set.
type Router interface {
	SelectTool(ctx context.Context, query string, available []workers.ToolSpec) (Selection, error)
}
