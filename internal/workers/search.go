// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/activity"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/embedding"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/query"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/retrieval"
)

// SearchResult is the shared {products, message} shape both text_search
// and image_search return (spec §4.3).
type SearchResult struct {
	Products []catalog.ScoredProduct `json:"products"`
	Message  string                  `json:"message"`
}

// ImageFetcher resolves a customer-supplied image_uri (e.g. a gs:// GCS
// reference) into raw bytes. *media.Fetcher satisfies this; tests can
// substitute a fake that needs no real storage credentials.
type ImageFetcher interface {
	Fetch(ctx context.Context, imageURI string) ([]byte, error)
}

// SearchWorker owns the only path from a user query to the Hybrid
// Retriever, wiring in the Embedding Oracle and Query Parser.
type SearchWorker struct {
	retriever *retrieval.Retriever
	oracle    embedding.Oracle
	fetcher   ImageFetcher
	recorder  *activity.Recorder
}

// NewSearchWorker builds a SearchWorker bound to one retriever, one
// embedding oracle, and the turn's activity recorder. fetcher may be nil,
// in which case image_search requires the caller to supply raw image
// bytes rather than an image_uri.
func NewSearchWorker(retriever *retrieval.Retriever, oracle embedding.Oracle, fetcher ImageFetcher, recorder *activity.Recorder) *SearchWorker {
	return &SearchWorker{retriever: retriever, oracle: oracle, fetcher: fetcher, recorder: recorder}
}

// Tools returns this worker's ToolSpec registry for the routing layer.
func (w *SearchWorker) Tools() []ToolSpec {
	return []ToolSpec{
		{
			Name:    "text_search",
			BestFor: []string{"search", "find", "browse", "shoes", "products", "catalog"},
			UseWhen: "the customer describes what they want in words, e.g. a category, brand, or price limit",
			Handler: w.handleTextSearch,
		},
		{
			Name:    "image_search",
			BestFor: []string{"image", "photo", "picture", "looks like", "visual"},
			UseWhen: "the customer supplies an image and wants visually similar products",
			Handler: w.handleImageSearch,
		},
	}
}

type textSearchArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type imageSearchArgs struct {
	Image    []byte `json:"image"`
	ImageURI string `json:"image_uri,omitempty"`
	Limit    int    `json:"limit"`
}

func (w *SearchWorker) handleTextSearch(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var a textSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, apperr.MissingField("query")
	}
	if a.Limit <= 0 {
		a.Limit = 5
	}
	result, err := w.TextSearch(ctx, a.Query, a.Limit)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func (w *SearchWorker) handleImageSearch(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var a imageSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, apperr.MissingField("image")
	}
	image := a.Image
	if len(image) == 0 && a.ImageURI != "" {
		if w.fetcher == nil {
			return nil, apperr.BadImage("image_uri supplied but no image fetcher is configured")
		}
		fetched, err := w.fetcher.Fetch(ctx, a.ImageURI)
		if err != nil {
			return nil, apperr.BadImage("could not resolve image_uri: " + err.Error())
		}
		image = fetched
	}
	if len(image) == 0 {
		return nil, apperr.BadImage("image payload is empty")
	}
	if a.Limit <= 0 {
		a.Limit = 5
	}
	result, err := w.ImageSearch(ctx, image, a.Limit)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

// TextSearch embeds query, parses it, and runs the Hybrid Retriever in
// hybrid mode. If the Embedding Oracle fails, it falls back to lexical-
// only retrieval and records an error event rather than failing the turn
// (spec §4.3: "must never propagate the oracle failure as a turn failure
// while any non-empty lexical path could succeed").
func (w *SearchWorker) TextSearch(ctx context.Context, rawQuery string, limit int) (SearchResult, error) {
	parsed := query.Parse(rawQuery)

	var vector []float32
	start := time.Now()
	vec, err := w.oracle.EmbedText(ctx, rawQuery)
	if err != nil {
		w.recorder.Record(activity.KindError, "embedding failed, falling back to lexical search",
			activity.WithErrorKind("embedding"), activity.WithDetail(err.Error()))
	} else {
		vector = vec
		w.recorder.Record(activity.KindEmbedding, "embedded query", activity.WithLatency(time.Since(start)))
	}

	searchStart := time.Now()
	products, err := w.retriever.Retrieve(ctx, parsed, vector, limit)
	if err != nil {
		return SearchResult{}, err
	}
	w.recorder.Record(activity.KindSearch, "hybrid retrieval",
		activity.WithLatency(time.Since(searchStart)), activity.WithSQL(summarizeQuery(parsed, vector != nil)))
	w.recorder.Record(activity.KindResult, "search results", activity.WithCount(len(products)))

	return SearchResult{Products: products, Message: summarizeMessage(len(products))}, nil
}

// ImageSearch embeds image bytes and runs the Hybrid Retriever in
// semantic-only mode (cleaned_text is empty, so the lexical branch is
// skipped per spec §4.2).
func (w *SearchWorker) ImageSearch(ctx context.Context, image []byte, limit int) (SearchResult, error) {
	start := time.Now()
	vector, err := w.oracle.EmbedImage(ctx, image)
	if err != nil {
		return SearchResult{}, apperr.EmbeddingFailure(err)
	}
	w.recorder.Record(activity.KindEmbedding, "embedded image", activity.WithLatency(time.Since(start)))

	searchStart := time.Now()
	products, err := w.retriever.Retrieve(ctx, query.ParsedQuery{}, vector, limit)
	if err != nil {
		return SearchResult{}, err
	}
	w.recorder.Record(activity.KindSearch, "image similarity search", activity.WithLatency(time.Since(searchStart)))
	w.recorder.Record(activity.KindResult, "search results", activity.WithCount(len(products)))

	return SearchResult{Products: products, Message: summarizeMessage(len(products))}, nil
}

func summarizeQuery(q query.ParsedQuery, hybrid bool) string {
	mode := "lexical"
	if hybrid {
		mode = "hybrid"
	}
	return fmt.Sprintf("%s search: text=%q category=%v brand=%v price_max=%v", mode, q.CleanedText, q.Category, q.Brand, q.PriceMax)
}

func summarizeMessage(count int) string {
	if count == 0 {
		return "I couldn't find anything matching that."
	}
	if count == 1 {
		return "Found 1 product."
	}
	return fmt.Sprintf("Found %d products.", count)
}
