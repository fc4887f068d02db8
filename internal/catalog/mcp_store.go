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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPStore is the Phase 2 ("mediated") Store: every query is shipped
// across an already-connected MCP client session to the run_query tool
// exposed by MCPToolServer, rather than hitting a pgxpool directly. It
// satisfies the same Store interface as PGStore, so internal/retrieval's
// lexical-only path is identical in both phases — only the transport
// changes, per spec §4.8's "phases are a first-class contract."
type MCPStore struct {
	session *mcp.ClientSession
}

// NewMCPStore wraps an already-connected MCP client session. Establishing
// the connection (choice of transport: stdio, SSE, in-process) is the
// caller's responsibility, matching the teacher's pattern of constructing
// transports in main rather than inside library code.
func NewMCPStore(session *mcp.ClientSession) *MCPStore {
	return &MCPStore{session: session}
}

// Execute marshals sql/params into a run_query tool call and decodes the
// tool's structured output back into Rows.
func (s *MCPStore) Execute(ctx context.Context, sql string, params ...any) ([]Row, error) {
	args, err := json.Marshal(runQueryInput{SQL: sql, Params: params})
	if err != nil {
		return nil, fmt.Errorf("mcpstore marshal args: %w", err)
	}

	result, err := s.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "run_query",
		Arguments: json.RawMessage(args),
	})
	if err != nil {
		return nil, fmt.Errorf("mcpstore call run_query: %w", err)
	}
	if result.IsError {
		return nil, fmt.Errorf("mcpstore run_query tool error: %s", summarizeToolError(result))
	}

	var out runQueryOutput
	if len(result.StructuredContent) > 0 {
		if err := json.Unmarshal(result.StructuredContent, &out); err != nil {
			return nil, fmt.Errorf("mcpstore decode structured content: %w", err)
		}
	}
	return out.Rows, nil
}

func summarizeToolError(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "; ")
}

// LexicalSearch runs the same parameterized SQL PGStore.LexicalSearch
// would run, but ships it through Execute (an MCP run_query call) and
// decodes the generic Row results back into ScoredProducts. This keeps
// Phase 2's retrieval results identical to Phase 1's (spec §4.8).
func (s *MCPStore) LexicalSearch(ctx context.Context, filter Filter, cleanedText string, limit int) ([]ScoredProduct, error) {
	sql, args := buildLexicalSQL(filter, cleanedText, limit)

	rows, err := s.Execute(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("mcpstore lexical search: %w", err)
	}

	var out []ScoredProduct
	var maxRank float64
	for _, row := range rows {
		sp, err := rowToScoredProduct(row)
		if err != nil {
			return nil, err
		}
		if sp.LexicalScore > maxRank {
			maxRank = sp.LexicalScore
		}
		out = append(out, sp)
	}
	normalizeLexicalScores(out, maxRank)
	return out, nil
}
