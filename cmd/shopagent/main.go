// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command shopagent is the developer console for local iteration against
// the Turn Orchestrator: an in-memory fixture catalog, no external
// database or model required. It is not the product-facing surface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/orchestrator"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	root := &cobra.Command{
		Use:   "shopagent",
		Short: "Developer console for the shop assistant's Turn Orchestrator",
	}

	var phase int
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive chat session against the demo catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := buildDemoOrchestrator(logger)
			if err != nil {
				return err
			}
			m := newChatModel(orch, orchestrator.Phase(phase))
			_, err = tea.NewProgram(m).Run()
			return err
		},
	}
	chatCmd.Flags().IntVar(&phase, "phase", 3, "turn phase to run: 1 (direct), 2 (mediated), or 3 (agentic)")
	root.AddCommand(chatCmd)

	var (
		orderCustomer string
		orderProduct  string
		orderSize     string
		orderQty      int
	)
	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "Place one order against the demo catalog and print the confirmation",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := buildDemoOrchestrator(logger)
			if err != nil {
				return err
			}
			result, err := orch.PlaceOrder(context.Background(), orchestrator.OrderRequest{
				Phase:      orchestrator.Phase(phase),
				CustomerID: orderCustomer,
				ProductID:  orderProduct,
				Size:       orderSize,
				Quantity:   orderQty,
			})
			if err != nil {
				return err
			}
			if result.BusinessErrorCode != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "order failed: %s (%s)\n", result.ReplyText, result.BusinessErrorCode)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s order_id=%s total=$%s\n", result.ReplyText, result.Order.OrderID, result.Order.Total.Decimal())
			return nil
		},
	}
	orderCmd.Flags().StringVar(&orderCustomer, "customer", "demo-customer", "customer id")
	orderCmd.Flags().StringVar(&orderProduct, "product", "p1", "product id")
	orderCmd.Flags().StringVar(&orderSize, "size", "", "size, if the product is sized")
	orderCmd.Flags().IntVar(&orderQty, "quantity", 1, "quantity")
	root.AddCommand(orderCmd)

	serveDemoCmd := &cobra.Command{
		Use:   "serve-demo",
		Short: "Run a handful of scripted turns against every phase and print the activity trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeDemo(cmd.OutOrStdout(), logger)
		},
	}
	root.AddCommand(serveDemoCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
