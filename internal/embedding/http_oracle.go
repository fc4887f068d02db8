// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ollamaEmbedReq/ollamaEmbedResp mirror the Ollama-compatible /api/embed
// wire format exactly as routing/embedder.go's ToolEmbeddingCache uses it.
type ollamaEmbedReq struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbedResp struct {
	Embeddings [][]float32 `json:"embeddings"`
}

const defaultQueryTimeout = 3 * time.Second

// HTTPOracle talks to an Ollama-compatible /api/embed endpoint. Image
// bytes are base64-encoded and sent as the same "input" field; the
// service is expected to be backed by a model that understands both
// modalities in one embedding space (spec §9's cross-modal requirement).
//
// Thread Safety: safe for concurrent use; the rate limiter serializes
// outbound calls across goroutines sharing one HTTPOracle.
type HTTPOracle struct {
	url     string
	model   string
	dim     int
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPOracle constructs an oracle bound to one Ollama endpoint/model
// pair, rate-limited to ratePerSecond requests/second with a burst of 1.
func NewHTTPOracle(url, model string, dim int, ratePerSecond float64) *HTTPOracle {
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	return &HTTPOracle{
		url:     url,
		model:   model,
		dim:     dim,
		client:  &http.Client{Timeout: defaultQueryTimeout},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

func (o *HTTPOracle) Dimension() int { return o.dim }

func (o *HTTPOracle) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return o.embed(ctx, text)
}

func (o *HTTPOracle) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	return o.embed(ctx, base64.StdEncoding.EncodeToString(image))
}

func (o *HTTPOracle) embed(ctx context.Context, input string) ([]float32, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding oracle: rate limit wait: %w", err)
	}

	reqBody, err := json.Marshal(ollamaEmbedReq{Model: o.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("embedding oracle: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("embedding oracle: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding oracle: http call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding oracle: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding oracle: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed ollamaEmbedResp
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("embedding oracle: parse response: %w", err)
	}
	if len(parsed.Embeddings) == 0 || len(parsed.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embedding oracle: empty vector returned")
	}

	vec := parsed.Embeddings[0]
	if o.dim > 0 && len(vec) != o.dim {
		return nil, fmt.Errorf("embedding oracle: expected dimension %d, got %d", o.dim, len(vec))
	}
	return normalize(vec), nil
}
