// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/orchestrator"
)

// runServeDemo exercises every phase against a couple of scripted turns
// and prints each turn's reply plus its activity trace, a quick sanity
// check that the full stack is wired correctly without a terminal.
func runServeDemo(out io.Writer, logger *slog.Logger) error {
	orch, err := buildDemoOrchestrator(logger)
	if err != nil {
		return err
	}
	ctx := context.Background()

	turns := []orchestrator.TurnRequest{
		{Phase: orchestrator.PhaseDirect, Message: "running shoe"},
		{Phase: orchestrator.PhaseMediated, Message: "training shirt"},
		{Phase: orchestrator.PhaseAgentic, Message: "do you have a compression sleeve"},
	}

	for _, req := range turns {
		result, err := orch.HandleTurn(ctx, req)
		if err != nil {
			return fmt.Errorf("phase %d: %w", req.Phase, err)
		}
		fmt.Fprintf(out, "=== phase %d: %q ===\n", req.Phase, req.Message)
		fmt.Fprintf(out, "reply: %s\n", result.ReplyText)
		for _, p := range result.Products {
			fmt.Fprintf(out, "  - %s ($%s)\n", p.Name, p.Price.Decimal())
		}
		for _, e := range result.ActivityTrace {
			fmt.Fprintf(out, "  [%d] %s: %s\n", e.ID, e.Kind, e.Title)
		}
		fmt.Fprintln(out)
	}
	return nil
}
