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

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

// WeaviateANNIndex is an alternate ANN backend for the Hybrid Retriever's
// semantic candidate-set step, selected via config.ANNBackend ==
// "weaviate" instead of pgvector. The Glossary's "ANN index" is a
// swappable concern in this system rather than a single hard-coded
// engine; this type and PGStore both satisfy the same ANNIndex interface.
type WeaviateANNIndex struct {
	client     *weaviate.Client
	className  string
}

// NewWeaviateANNIndex wraps an already-configured Weaviate client. The
// class must have been created (out of scope: schema provisioning) with a
// "productId" text property matching products.product_id.
func NewWeaviateANNIndex(client *weaviate.Client, className string) *WeaviateANNIndex {
	return &WeaviateANNIndex{client: client, className: className}
}

// NewWeaviateClient builds the client NewWeaviateANNIndex wraps, selected
// by config.ANNBackend == "weaviate" instead of pgvector.
func NewWeaviateClient(scheme, host string) (*weaviate.Client, error) {
	return weaviate.NewClient(weaviate.Config{Scheme: scheme, Host: host})
}

// Query performs a nearVector search, returning up to k candidates with
// their cosine distance, matching PGStore.Query's contract exactly so the
// Hybrid Retriever is indifferent to which ANNIndex it was given.
func (w *WeaviateANNIndex) Query(ctx context.Context, vector []float32, k int) ([]Candidate, error) {
	nearVector := w.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	result, err := w.client.GraphQL().Get().
		WithClassName(w.className).
		WithFields(graphql.Field{Name: "productId"}, graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}}).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate ann query: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate ann query: %v", result.Errors[0].Message)
	}

	return decodeWeaviateCandidates(result.Data, w.className)
}

// decodeWeaviateCandidates walks the nested GraphQL response shape
// {Get: {<className>: [{productId, _additional: {distance}}]}}.
func decodeWeaviateCandidates(data map[string]any, className string) ([]Candidate, error) {
	get, ok := data["Get"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("weaviate ann query: unexpected response shape")
	}
	items, ok := get[className].([]any)
	if !ok {
		return nil, nil
	}

	var out []Candidate
	for _, raw := range items {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		c := Candidate{ProductID: asString(obj["productId"])}
		if add, ok := obj["_additional"].(map[string]any); ok {
			c.Distance = asFloat64(add["distance"])
		}
		out = append(out, c)
	}
	return out, nil
}
