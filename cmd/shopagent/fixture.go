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
	"fmt"
	"log/slog"
	"time"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/activity"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/config"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/embedding"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/llmoracle"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/orchestrator"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/retrieval"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/supervisor"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/supervisor/routing"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/workers"
)

// demoCatalog is a small, fixed product set good enough to drive every
// console command end-to-end without a live database.
func demoCatalog() []catalog.Product {
	return []catalog.Product{
		{ProductID: "p1", Name: "Aleutian Trail Runner", Brand: "Aleutian", Description: "A lightweight trail running shoe with aggressive grip.",
			Category: catalog.CategoryRunningShoes, Price: catalog.NewMoneyFromFloat(129.99), Inventory: 14,
			AvailableSizes: []string{"8", "9", "10", "11"}, Embedding: []float32{1, 0, 0, 0}},
		{ProductID: "p2", Name: "IronWorks Cross Trainer", Brand: "IronWorks", Description: "A stable cross trainer built for lifting and short sprints.",
			Category: catalog.CategoryTrainingShoes, Price: catalog.NewMoneyFromFloat(109.99), Inventory: 8,
			AvailableSizes: []string{"9", "10", "11"}, Embedding: []float32{0.9, 0.1, 0, 0}},
		{ProductID: "p3", Name: "Aleutian Adjustable Rack", Brand: "Aleutian", Description: "A compact power rack for a home gym.",
			Category: catalog.CategoryFitnessEquipment, Price: catalog.NewMoneyFromFloat(349.00), Inventory: 3,
			Embedding: []float32{0, 1, 0, 0}},
		{ProductID: "p4", Name: "IronWorks Training Tee", Brand: "IronWorks", Description: "A moisture-wicking training shirt.",
			Category: catalog.CategoryApparel, Price: catalog.NewMoneyFromFloat(28.00), Inventory: 40,
			AvailableSizes: []string{"S", "M", "L", "XL"}, Embedding: []float32{0, 0, 1, 0}},
		{ProductID: "p5", Name: "Aleutian Compression Sleeve", Brand: "Aleutian", Description: "A graduated compression sleeve for recovery.",
			Category: catalog.CategoryRecovery, Price: catalog.NewMoneyFromFloat(19.99), Inventory: 25,
			Embedding: []float32{0, 0, 0, 1}},
	}
}

// buildDemoOrchestrator wires an in-memory FixtureStore through the full
// stack (Query Parser, Hybrid Retriever, workers, Supervisor) the same
// way a real deployment wires PGStore, one client construction per
// component before the conversation loop starts.
func buildDemoOrchestrator(logger *slog.Logger) (*orchestrator.Orchestrator, error) {
	cfg := config.Default()
	store := catalog.NewFixtureStore(demoCatalog())
	recorder := activity.New()

	ann, err := retrieval.NewANNIndex(cfg, store)
	if err != nil {
		return nil, fmt.Errorf("shopagent: select ann backend: %w", err)
	}

	oracle := embedding.NewFakeOracle(cfg.EmbeddingDim)
	retriever := retrieval.New(store, ann, retrieval.Weights{Semantic: cfg.HybridWeights.Semantic, Lexical: cfg.HybridWeights.Lexical},
		cfg.CandidateMultiplier, cfg.CandidateMinimum)

	// nil fetcher: the demo console only ever exercises image_search with
	// inline bytes, never a gs:// image_uri, so it needs no GCS client.
	search := workers.NewSearchWorker(retriever, oracle, nil, recorder)
	product := workers.NewProductWorker(store)
	policy := catalog.PricingPolicy{
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: catalog.NewMoneyFromFloat(cfg.FreeShippingThreshold),
		FlatShipping:          catalog.NewMoneyFromFloat(cfg.FlatShipping),
	}
	order := workers.NewOrderWorker(store, policy)

	toolSets := [][]workers.ToolSpec{search.Tools(), product.Tools(), order.Tools()}
	sup := supervisor.New(toolSets, noOracle(), routing.DefaultTable(), cfg.MaxToolCalls, recorder, logger)

	// The demo console has no mediated tool-server session to connect to,
	// so Phase 2 here runs the same FixtureStore's LexicalSearch a real
	// deployment would reach through MCPStore; retrieval semantics are
	// identical either way (spec §4.8), only the transport differs.
	return orchestrator.New(store, store, retriever, sup, order, recorder, time.Duration(cfg.TurnDeadlineMS)*time.Millisecond), nil
}

// noOracle returns nil: the developer console runs the deterministic
// router by default so it never requires a live API key. Point
// buildDemoOrchestrator at a real llmoracle.Oracle to exercise Phase 3's
// full tool-calling loop against Anthropic or OpenAI.
func noOracle() llmoracle.Oracle {
	return nil
}
