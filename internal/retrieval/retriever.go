// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package retrieval implements the Hybrid Retriever (C2): lexical-only and
// semantic+lexical blended product search over a catalog.ProductStore.
package retrieval

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/config"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/metrics"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/query"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/telemetry"
)

// Weights are the semantic/lexical blend weights, resolved once.
type Weights struct {
	Semantic float64
	Lexical  float64
}

// Retriever holds its tuning resolved at construction time (spec §4.2:
// "weights and candidate multiplier... must be resolved at construction
// time, not per call"), never re-read per Retrieve call.
type Retriever struct {
	store               catalog.ProductStore
	ann                 catalog.ANNIndex
	weights             Weights
	candidateMultiplier int
	candidateMinimum    int
}

// New builds a Retriever bound to one store and one fixed tuning. ann is
// the semantic candidate-set backend; pass nil to use the store's own
// ANNIndex implementation (pgvector via PGStore, or FixtureStore's
// in-memory cosine scan), or a value from NewANNIndex to select a
// different backend such as WeaviateANNIndex.
func New(store catalog.ProductStore, ann catalog.ANNIndex, weights Weights, candidateMultiplier, candidateMinimum int) *Retriever {
	if ann == nil {
		ann = store
	}
	return &Retriever{
		store:               store,
		ann:                 ann,
		weights:             weights,
		candidateMultiplier: candidateMultiplier,
		candidateMinimum:    candidateMinimum,
	}
}

// NewANNIndex selects the semantic candidate-set backend named by
// cfg.ANNBackend (spec §4's "selectable via config"): pgvector reuses
// store's own ANNIndex implementation, weaviate dials a separate
// Weaviate deployment.
func NewANNIndex(cfg *config.Config, store catalog.ProductStore) (catalog.ANNIndex, error) {
	switch cfg.ANNBackend {
	case config.ANNBackendWeaviate:
		client, err := catalog.NewWeaviateClient(cfg.WeaviateScheme, cfg.WeaviateHost)
		if err != nil {
			return nil, fmt.Errorf("retrieval: weaviate ann index: %w", err)
		}
		return catalog.NewWeaviateANNIndex(client, cfg.WeaviateClassName), nil
	case config.ANNBackendPGVector, "":
		return store, nil
	default:
		return nil, fmt.Errorf("retrieval: unknown ann_backend %q", cfg.ANNBackend)
	}
}

func (r *Retriever) candidateSize(limit int) int {
	k := r.candidateMultiplier * limit
	if k < r.candidateMinimum {
		k = r.candidateMinimum
	}
	return k
}

// toCatalogFilter builds the hard-constraint Filter from a ParsedQuery.
func toCatalogFilter(q query.ParsedQuery) catalog.Filter {
	f := catalog.Filter{Category: q.Category, Brand: q.Brand}
	if q.PriceMax != nil {
		m := catalog.NewMoneyFromFloat(*q.PriceMax)
		f.PriceMax = &m
	}
	return f
}

// LexicalStore is the narrow surface Phase 1 and Phase 2 of the Turn
// Orchestrator need (spec §4.8): both phases run lexical-only retrieval
// and never touch the ANN index, GetProduct, or PlaceOrder, so neither
// phase requires a store satisfying the full catalog.ProductStore —
// MCPStore (Phase 2's mediated transport) implements only this much.
type LexicalStore interface {
	LexicalSearch(ctx context.Context, filter catalog.Filter, cleanedText string, limit int) ([]catalog.ScoredProduct, error)
}

// LexicalOnly runs the lexical-only retrieval path against any
// LexicalStore. It is the single implementation shared by Retriever's
// own nil-vector branch and the Turn Orchestrator's Phase 1/Phase 2
// dispatch, so both phases apply identical filter and error-wrapping
// semantics.
func LexicalOnly(ctx context.Context, store LexicalStore, q query.ParsedQuery, limit int) ([]catalog.ScoredProduct, error) {
	filter := toCatalogFilter(q)
	results, err := store.LexicalSearch(ctx, filter, q.CleanedText, limit)
	if err != nil {
		return nil, apperr.RetrieverUnavailable(fmt.Errorf("lexical search: %w", err))
	}
	return results, nil
}

// Retrieve runs the lexical-only path when queryVector is nil, or the
// hybrid semantic+lexical path otherwise. Never returns an error for an
// empty candidate set — only for store failure (apperr.CodeRetrieverUnavailable).
func (r *Retriever) Retrieve(ctx context.Context, q query.ParsedQuery, queryVector []float32, limit int) ([]catalog.ScoredProduct, error) {
	if queryVector == nil {
		return LexicalOnly(ctx, r.store, q, limit)
	}
	return r.retrieveHybrid(ctx, toCatalogFilter(q), q, queryVector, limit)
}

func (r *Retriever) retrieveHybrid(ctx context.Context, filter catalog.Filter, q query.ParsedQuery, queryVector []float32, limit int) ([]catalog.ScoredProduct, error) {
	ctx, span := telemetry.RetrievalTracer.Start(ctx, "retrieval.Retriever.retrieveHybrid")
	defer span.End()

	k := r.candidateSize(limit)
	metrics.RetrieverCandidateSetSize.Observe(float64(k))

	var candidates []catalog.Candidate
	var lexical []catalog.ScoredProduct

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		c, err := r.ann.Query(gctx, queryVector, k)
		if err != nil {
			return fmt.Errorf("semantic candidates: %w", err)
		}
		candidates = c
		return nil
	})
	group.Go(func() error {
		if q.CleanedText == "" {
			return nil
		}
		l, err := r.store.LexicalSearch(gctx, filter, q.CleanedText, k)
		if err != nil {
			return fmt.Errorf("lexical candidates: %w", err)
		}
		lexical = l
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, apperr.RetrieverUnavailable(err)
	}
	if len(candidates) == 0 {
		return []catalog.ScoredProduct{}, nil
	}

	lexicalScoreByID := make(map[string]float64, len(lexical))
	var maxLexical float64
	for _, sp := range lexical {
		lexicalScoreByID[sp.ProductID] = sp.LexicalScore
		if sp.LexicalScore > maxLexical {
			maxLexical = sp.LexicalScore
		}
	}

	scored := make([]catalog.ScoredProduct, 0, len(candidates))
	for _, c := range candidates {
		product, err := r.store.GetProduct(ctx, c.ProductID)
		if err != nil {
			continue // product removed between ANN index and lookup; skip rather than fail the whole query
		}
		if !filter.Matches(product) {
			continue // Go-side filter-hardness safety net (spec §8 item 5)
		}

		semanticScore := 1 - c.Distance
		lexicalScore := 0.0
		if maxLexical > 0 {
			lexicalScore = lexicalScoreByID[product.ProductID] / maxLexical
		}

		scored = append(scored, catalog.ScoredProduct{
			Product:       product,
			SemanticScore: semanticScore,
			LexicalScore:  lexicalScore,
			Score:         r.weights.Semantic*semanticScore + r.weights.Lexical*lexicalScore,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].SemanticScore != scored[j].SemanticScore {
			return scored[i].SemanticScore > scored[j].SemanticScore
		}
		return scored[i].ProductID < scored[j].ProductID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}
