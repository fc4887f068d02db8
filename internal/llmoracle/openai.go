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

const defaultOpenAIBaseURL = "https://api.openai.com/v1/chat/completions"

type openaiMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content,omitempty"`
	ToolCalls  []openaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openaiTool struct {
	Type     string         `json:"type"`
	Function openaiFunction `json:"function"`
}

type openaiFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type openaiToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function openaiCallFunction `json:"function"`
}

type openaiCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openaiRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
	Tools    []openaiTool    `json:"tools,omitempty"`
}

type openaiChoice struct {
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Error   *openaiError   `json:"error,omitempty"`
}

type openaiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// OpenAIOracle implements the Decide/Decision contract against the
// OpenAI Chat Completions API. Like AnthropicOracle, the API key is
// sealed in a memguard.Enclave and only briefly unsealed per call.
type OpenAIOracle struct {
	apiKey  *memguard.Enclave
	model   string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewOpenAIOracle seals apiKey immediately; the caller's copy should be
// discarded after this call.
func NewOpenAIOracle(apiKey, model, baseURL string, ratePerSecond float64) *OpenAIOracle {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &OpenAIOracle{
		apiKey:  memguard.NewEnclave([]byte(apiKey)),
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

func (o *OpenAIOracle) Decide(ctx context.Context, prompt Prompt, tools []ToolSpec) (Decision, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, apperr.LLMFailure("rate limit wait", err)
	}

	keyBuf, err := o.apiKey.Open()
	if err != nil {
		return nil, apperr.LLMFailure("unseal api key", err)
	}
	defer keyBuf.Destroy()

	reqPayload := openaiRequest{
		Model:    o.model,
		Messages: toOpenAIMessages(prompt),
		Tools:    toOpenAITools(tools),
	}

	body, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, apperr.LLMFailure("marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.LLMFailure("build request", err)
	}
	req.Header.Set("authorization", "Bearer "+keyBuf.String())
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

	var parsed openaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperr.LLMFailure("parse response", err)
	}
	if parsed.Error != nil {
		return nil, apperr.LLMFailure(parsed.Error.Type, fmt.Errorf("%s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return nil, apperr.LLMFailure("empty response", nil)
	}

	msg := parsed.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		return ToolCall{Name: call.Function.Name, Arguments: json.RawMessage(call.Function.Arguments)}, nil
	}
	if msg.Content == "" {
		return nil, apperr.LLMFailure("empty response", nil)
	}
	return FinalAnswer{Text: msg.Content}, nil
}

func toOpenAIMessages(prompt Prompt) []openaiMessage {
	messages := []openaiMessage{{Role: "user", Content: prompt.UserMessage}}
	for _, out := range prompt.ToolOutputs {
		messages = append(messages, openaiMessage{
			Role:    "user",
			Content: fmt.Sprintf("tool %s result: %s", out.ToolName, string(out.Result)),
		})
	}
	if prompt.System != "" {
		messages = append([]openaiMessage{{Role: "system", Content: prompt.System}}, messages...)
	}
	return messages
}

func toOpenAITools(tools []ToolSpec) []openaiTool {
	out := make([]openaiTool, 0, len(tools))
	for _, t := range tools {
		params := t.Parameters
		if len(params) == 0 {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		out = append(out, openaiTool{
			Type: "function",
			Function: openaiFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return out
}
