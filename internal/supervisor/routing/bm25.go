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
	"math"
	"regexp"
	"strings"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/workers"
)

// Okapi BM25 tuning constants, the same values the teacher's routing
// package uses (Robertson et al.'s standard middle ground).
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// extractTerms lowercases and splits on non-alphanumeric runs, returning
// the unique term set.
func extractTerms(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, t := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		terms[t] = true
	}
	return terms
}

type bm25Doc struct {
	name string
	tf   map[string]int
	len  int
}

// BM25Index ranks the worker tools (5, across this module's 3 workers)
// against a query using
// Okapi BM25 over each tool's (name, BestFor keywords, UseWhen) document —
// the same math as the teacher's tool-routing corpus, rescoped from ~30
// code-intelligence tools to 3 catalog workers.
//
// Thread Safety: immutable after BuildBM25Index; safe for concurrent use.
type BM25Index struct {
	docs   []bm25Doc
	idf    map[string]float64
	avgLen float64
}

// BuildBM25Index indexes every tool across every worker.
func BuildBM25Index(allTools []workers.ToolSpec) *BM25Index {
	if len(allTools) == 0 {
		return &BM25Index{idf: make(map[string]float64)}
	}

	docs := make([]bm25Doc, 0, len(allTools))
	df := make(map[string]int)
	totalLen := 0

	for _, spec := range allTools {
		doc := buildDoc(spec)
		docs = append(docs, doc)
		totalLen += doc.len
		for term := range doc.tf {
			df[term]++
		}
	}

	n := len(docs)
	idf := make(map[string]float64, len(df))
	for term, docFreq := range df {
		idf[term] = math.Log(float64(n+1)/float64(docFreq+1)) + 1.0
	}

	return &BM25Index{docs: docs, idf: idf, avgLen: float64(totalLen) / float64(n)}
}

func buildDoc(spec workers.ToolSpec) bm25Doc {
	parts := append([]string{spec.Name}, spec.BestFor...)
	if spec.UseWhen != "" {
		parts = append(parts, spec.UseWhen)
	}
	terms := extractTerms(strings.Join(parts, " "))

	tf := make(map[string]int, len(terms))
	for t := range terms {
		tf[t] = 1
	}
	return bm25Doc{name: spec.Name, tf: tf, len: len(tf)}
}

// IsEmpty reports whether the index has no tool documents.
func (idx *BM25Index) IsEmpty() bool { return len(idx.docs) == 0 }

// Score returns tool name -> BM25 score normalized to [0, 1] by the
// maximum observed score. Tools that score 0 are omitted.
func (idx *BM25Index) Score(query string) map[string]float64 {
	if query == "" || len(idx.docs) == 0 {
		return map[string]float64{}
	}
	queryTerms := extractTerms(query)
	if len(queryTerms) == 0 {
		return map[string]float64{}
	}

	scores := make(map[string]float64, len(idx.docs))
	var maxScore float64
	for _, doc := range idx.docs {
		s := bm25Score(queryTerms, doc, idx.idf, idx.avgLen)
		if s > 0 {
			scores[doc.name] = s
			if s > maxScore {
				maxScore = s
			}
		}
	}
	if maxScore > 0 {
		for name := range scores {
			scores[name] /= maxScore
		}
	}
	return scores
}

func bm25Score(queryTerms map[string]bool, doc bm25Doc, idf map[string]float64, avgLen float64) float64 {
	dl := float64(doc.len)
	var score float64
	for term := range queryTerms {
		tf, inDoc := doc.tf[term]
		if !inDoc {
			continue
		}
		termIDF, known := idf[term]
		if !known {
			continue
		}
		tfFloat := float64(tf)
		numerator := tfFloat * (bm25K1 + 1)
		lengthNorm := bm25K1 * (1.0 - bm25B + bm25B*dl/avgLen)
		score += termIDF * (numerator / (tfFloat + lengthNorm))
	}
	return score
}

// BM25Router is a Router that picks the top-scoring tool by BM25 alone,
// with no LLM involved — the primary stage of EscalatingRouter.
type BM25Router struct {
	index *BM25Index
}

func NewBM25Router(index *BM25Index) *BM25Router {
	return &BM25Router{index: index}
}

func (r *BM25Router) SelectTool(_ context.Context, query string, available []workers.ToolSpec) (Selection, error) {
	scores := r.index.Score(query)

	var best string
	var bestScore float64
	for _, tool := range available {
		if s, ok := scores[tool.Name]; ok && s >= bestScore {
			best, bestScore = tool.Name, s
		}
	}
	if best == "" && len(available) > 0 {
		best = available[0].Name
	}
	return Selection{Tool: best, Confidence: bestScore}, nil
}
