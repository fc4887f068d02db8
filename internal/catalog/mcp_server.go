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

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPToolServer exposes a single run_query tool over MCP, wrapping a
// *PGStore so that Phase 2 ("mediated") turns reach the same Postgres
// instance as Phase 1/3 through an external tool-server hop instead of a
// direct pool checkout (spec §6's "mediated tool server" transport).
// Grounded on Aman-CERP-amanmcp's internal/mcp/server.go, which registers
// typed tool handlers the same way against the same SDK.
type MCPToolServer struct {
	server *mcp.Server
	pg     *PGStore
	logger *slog.Logger
}

// runQueryInput is the typed input schema for the run_query tool.
type runQueryInput struct {
	SQL    string `json:"sql" jsonschema:"the parameterized SQL statement to execute"`
	Params []any  `json:"params,omitempty" jsonschema:"positional parameters for $1, $2, ... placeholders"`
}

// runQueryOutput is the typed output schema for the run_query tool.
type runQueryOutput struct {
	Rows []Row `json:"rows"`
}

// NewMCPToolServer builds an MCP server backed by pg and registers the
// run_query tool. Call Server() to obtain the underlying *mcp.Server for
// the caller to attach to a transport (stdio, SSE, or in-process).
func NewMCPToolServer(pg *PGStore, logger *slog.Logger) *MCPToolServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &MCPToolServer{
		server: mcp.NewServer(&mcp.Implementation{Name: "shopagent-catalog", Version: "1.0.0"}, nil),
		pg:     pg,
		logger: logger,
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_query",
		Description: "Execute a parameterized SQL statement against the product catalog and return matching rows.",
	}, s.handleRunQuery)
	return s
}

// Server returns the underlying MCP server so main() can wire it to a
// concrete transport.
func (s *MCPToolServer) Server() *mcp.Server { return s.server }

func (s *MCPToolServer) handleRunQuery(ctx context.Context, _ *mcp.CallToolRequest, in runQueryInput) (*mcp.CallToolResult, runQueryOutput, error) {
	rows, err := s.pg.Execute(ctx, in.SQL, in.Params...)
	if err != nil {
		s.logger.Error("mcp run_query failed", slog.String("sql_summary", summarizeSQL(in.SQL)), slog.Any("error", err))
		return nil, runQueryOutput{}, fmt.Errorf("run_query: %w", err)
	}
	return nil, runQueryOutput{Rows: rows}, nil
}
