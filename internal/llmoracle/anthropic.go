// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llmoracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/awnumar/memguard"
	"golang.org/x/time/rate"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/redact"
)

const anthropicAPIVersion = "2023-06-01"
const defaultAnthropicBaseURL = "https://api.anthropic.com/v1/messages"

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	System    string             `json:"system,omitempty"`
	MaxTokens int                `json:"max_tokens"`
	Tools     []anthropicToolDef `json:"tools,omitempty"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Error   *anthropicError         `json:"error,omitempty"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AnthropicOracle implements the Decide/Decision contract against the
// Anthropic Messages API: a tool_use content block becomes a ToolCall, a
// text block becomes a FinalAnswer. The API key is sealed
// in a memguard.Enclave between calls so it never sits in a plain Go
// string that a heap dump or core file could expose.
type AnthropicOracle struct {
	apiKey  *memguard.Enclave
	model   string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewAnthropicOracle seals apiKey immediately; the caller's copy should be
// discarded after this call.
func NewAnthropicOracle(apiKey, model, baseURL string, ratePerSecond float64) *AnthropicOracle {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &AnthropicOracle{
		apiKey:  memguard.NewEnclave([]byte(apiKey)),
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

func (o *AnthropicOracle) Decide(ctx context.Context, prompt Prompt, tools []ToolSpec) (Decision, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, apperr.LLMFailure("rate limit wait", err)
	}

	keyBuf, err := o.apiKey.Open()
	if err != nil {
		return nil, apperr.LLMFailure("unseal api key", err)
	}
	defer keyBuf.Destroy()

	reqPayload := anthropicRequest{
		Model:     o.model,
		System:    prompt.System,
		MaxTokens: 2048,
		Messages:  toAnthropicMessages(prompt),
		Tools:     toAnthropicTools(tools),
	}

	body, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, apperr.LLMFailure("marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.LLMFailure("build request", err)
	}
	req.Header.Set("x-api-key", keyBuf.String())
	req.Header.Set("anthropic-version", anthropicAPIVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, apperr.LLMFailure("http call", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.LLMFailure("read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.LLMFailure(fmt.Sprintf("status %d", resp.StatusCode), fmt.Errorf("%s", redact.String(string(respBody))))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperr.LLMFailure("parse response", err)
	}
	if parsed.Error != nil {
		return nil, apperr.LLMFailure(parsed.Error.Type, fmt.Errorf("%s", parsed.Error.Message))
	}

	return decisionFromBlocks(parsed.Content)
}

func toAnthropicMessages(prompt Prompt) []anthropicMessage {
	messages := []anthropicMessage{{Role: "user", Content: prompt.UserMessage}}
	for _, out := range prompt.ToolOutputs {
		messages = append(messages, anthropicMessage{
			Role:    "user",
			Content: fmt.Sprintf("tool %s result: %s", out.ToolName, string(out.Result)),
		})
	}
	return messages
}

func toAnthropicTools(tools []ToolSpec) []anthropicToolDef {
	out := make([]anthropicToolDef, 0, len(tools))
	for _, t := range tools {
		schema := t.Parameters
		if len(schema) == 0 {
			schema = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		out = append(out, anthropicToolDef{Name: t.Name, Description: t.Description, InputSchema: schema})
	}
	return out
}

func decisionFromBlocks(blocks []anthropicContentBlock) (Decision, error) {
	for _, b := range blocks {
		if b.Type == "tool_use" {
			return ToolCall{Name: b.Name, Arguments: b.Input}, nil
		}
	}
	var text string
	for _, b := range blocks {
		if b.Type == "text" {
			text += b.Text
		}
	}
	if text == "" {
		return nil, apperr.LLMFailure("empty response", nil)
	}
	return FinalAnswer{Text: text}, nil
}
