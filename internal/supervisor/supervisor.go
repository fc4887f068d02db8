// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package supervisor implements the Supervisor (C6): the orchestrating
// agent that routes one turn to Worker-Search, Worker-Product, or
// Worker-Order via the LLM Oracle's tool-calling loop (spec §4.6). The
// Supervisor never touches the Catalog Store or the Embedding Oracle
// directly; workers are injected at construction so neither side holds a
// reference to the other (spec §9 "avoid cyclic references").
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/activity"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/llmoracle"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/metrics"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/supervisor/routing"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/telemetry"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/workers"
)

const defaultMaxToolCalls = 5

const supervisorSystemPrompt = `You are a shopping assistant for an athletic goods retailer. ` +
	`You may answer directly or invoke exactly one tool per turn of this loop. ` +
	`Use text_search or image_search to find products, get_details or check_inventory to answer ` +
	`questions about a specific product, and place_order once the customer has confirmed what to buy.`

// Request is one customer turn's input, already normalized by the Turn
// Orchestrator (spec §4.8). Only the fields relevant to the turn's intent
// need to be set.
type Request struct {
	Message    string
	Image      []byte
	ImageURI   string
	CustomerID string
	ProductID  string
	Size       string
	Items      []catalog.OrderItemRequest
	Limit      int
}

// Reply is the Supervisor's output: a textual answer plus whichever
// structured payload the dispatched worker produced, if any.
type Reply struct {
	Text     string
	Products []catalog.ScoredProduct
	Order    *catalog.Order
}

// Supervisor runs the bounded tool-calling loop of spec §4.6.
type Supervisor struct {
	tools        map[string]workers.ToolSpec
	toolOrder    []string
	oracle       llmoracle.Oracle
	router       routing.Router
	maxToolCalls int
	recorder     *activity.Recorder
	logger       *slog.Logger
}

// New builds a Supervisor. Exactly one of oracle or router should be
// non-nil: a non-nil oracle drives the full multi-call loop of spec
// §4.6; a non-nil router with a nil oracle is the deterministic test
// mode of spec §4.6 ("bypasses the oracle and dispatches directly"),
// which performs a single dispatch and returns the worker's own message
// as the reply.
func New(toolSets [][]workers.ToolSpec, oracle llmoracle.Oracle, router routing.Router, maxToolCalls int, recorder *activity.Recorder, logger *slog.Logger) *Supervisor {
	if maxToolCalls <= 0 {
		maxToolCalls = defaultMaxToolCalls
	}
	if logger == nil {
		logger = slog.Default()
	}
	tools := make(map[string]workers.ToolSpec)
	var order []string
	for _, set := range toolSets {
		for _, t := range set {
			tools[t.Name] = t
			order = append(order, t.Name)
		}
	}
	return &Supervisor{
		tools:        tools,
		toolOrder:    order,
		oracle:       oracle,
		router:       router,
		maxToolCalls: maxToolCalls,
		recorder:     recorder,
		logger:       logger,
	}
}

func (s *Supervisor) available() []workers.ToolSpec {
	out := make([]workers.ToolSpec, 0, len(s.toolOrder))
	for _, name := range s.toolOrder {
		out = append(out, s.tools[name])
	}
	return out
}

func (s *Supervisor) oracleTools() []llmoracle.ToolSpec {
	out := make([]llmoracle.ToolSpec, 0, len(s.toolOrder))
	for _, name := range s.toolOrder {
		t := s.tools[name]
		out = append(out, llmoracle.ToolSpec{Name: t.Name, Description: t.UseWhen})
	}
	return out
}

// Handle runs the loop described in spec §4.6 and returns a Reply. A
// loop_exhausted error is returned once max_tool_calls is reached without
// a final answer.
func (s *Supervisor) Handle(ctx context.Context, req Request) (Reply, error) {
	if s.oracle == nil {
		return s.handleDeterministic(ctx, req)
	}
	return s.handleAgentic(ctx, req)
}

func (s *Supervisor) handleDeterministic(ctx context.Context, req Request) (Reply, error) {
	toolName, err := s.routeDeterministic(ctx, req)
	if err != nil {
		return Reply{}, err
	}

	args := buildArgs(toolName, req)
	s.recorder.Record(activity.KindDelegation, "delegating to "+toolName, activity.WithDetail(string(args)))
	start := time.Now()
	result, err := s.dispatch(ctx, toolName, args)
	if err != nil {
		metrics.SupervisorToolCallsTotal.WithLabelValues(toolName, "error").Inc()
		s.recorder.Record(activity.KindError, toolName+" failed", activity.WithLatency(time.Since(start)), activity.WithErrorKind(string(apperr.CodeOf(err))), activity.WithDetail(err.Error()))
		return Reply{}, err
	}
	metrics.SupervisorToolCallsTotal.WithLabelValues(toolName, "success").Inc()
	s.recorder.Record(activity.KindResult, toolName+" returned", activity.WithLatency(time.Since(start)))

	return decodeReply(toolName, result)
}

func (s *Supervisor) routeDeterministic(ctx context.Context, req Request) (string, error) {
	query := req.Message
	if query == "" && (len(req.Image) > 0 || req.ImageURI != "") {
		query = "image"
	}
	sel, err := s.router.SelectTool(ctx, query, s.available())
	if err != nil {
		return "", fmt.Errorf("supervisor: deterministic routing: %w", err)
	}
	return sel.Tool, nil
}

func (s *Supervisor) handleAgentic(ctx context.Context, req Request) (Reply, error) {
	ctx, span := telemetry.SupervisorTracer.Start(ctx, "supervisor.Supervisor.handleAgentic")
	defer span.End()

	prompt := llmoracle.Prompt{System: supervisorSystemPrompt, UserMessage: req.Message}
	tools := s.oracleTools()
	available := s.available()

	for call := 0; call < s.maxToolCalls; call++ {
		decision, err := s.oracle.Decide(ctx, prompt, tools)
		if err != nil {
			s.recorder.Record(activity.KindError, "oracle decide failed", activity.WithErrorKind("llm_failure"), activity.WithDetail(err.Error()))
			return Reply{}, err
		}

		switch d := decision.(type) {
		case llmoracle.FinalAnswer:
			return Reply{Text: d.Text}, nil

		case llmoracle.ToolCall:
			if !toolKnown(available, d.Name) {
				s.recorder.Record(activity.KindError, "oracle named an unknown tool", activity.WithErrorKind("llm_failure"), activity.WithDetail(d.Name))
				return Reply{}, apperr.LLMFailure("unknown tool: "+d.Name, nil)
			}

			s.recorder.Record(activity.KindDelegation, "delegating to "+d.Name, activity.WithDetail(string(d.Arguments)))
			start := time.Now()
			result, err := s.dispatch(ctx, d.Name, d.Arguments)
			if err != nil {
				metrics.SupervisorToolCallsTotal.WithLabelValues(d.Name, "error").Inc()
				s.recorder.Record(activity.KindError, d.Name+" failed", activity.WithLatency(time.Since(start)), activity.WithErrorKind(string(apperr.CodeOf(err))), activity.WithDetail(err.Error()))
				return Reply{}, err
			}
			metrics.SupervisorToolCallsTotal.WithLabelValues(d.Name, "success").Inc()
			s.recorder.Record(activity.KindResult, d.Name+" returned", activity.WithLatency(time.Since(start)))

			prompt.ToolOutputs = append(prompt.ToolOutputs, llmoracle.ToolOutput{ToolName: d.Name, Result: result})

			if reply, ok := replyIfTerminal(d.Name, result); ok {
				return reply, nil
			}

		default:
			return Reply{}, apperr.LLMFailure("oracle returned an unrecognized decision type", nil)
		}
	}

	return Reply{}, apperr.LoopExhausted(s.maxToolCalls)
}

func (s *Supervisor) dispatch(ctx context.Context, toolName string, args json.RawMessage) (json.RawMessage, error) {
	t, ok := s.tools[toolName]
	if !ok {
		return nil, apperr.LLMFailure("unknown tool: "+toolName, nil)
	}
	return t.Handler(ctx, args)
}

func toolKnown(available []workers.ToolSpec, name string) bool {
	for _, t := range available {
		if t.Name == name {
			return true
		}
	}
	return false
}

// replyIfTerminal short-circuits the loop for tools whose result is
// already the customer-facing answer (search and order), so the oracle
// isn't required to spend an extra call restating it. get_details and
// check_inventory are informational and feed back into the loop instead.
func replyIfTerminal(toolName string, result json.RawMessage) (Reply, bool) {
	switch toolName {
	case "text_search", "image_search":
		var sr workers.SearchResult
		if err := json.Unmarshal(result, &sr); err == nil {
			return Reply{Text: sr.Message, Products: sr.Products}, true
		}
	case "place_order":
		var order catalog.Order
		if err := json.Unmarshal(result, &order); err == nil {
			return Reply{Text: "Your order is confirmed.", Order: &order}, true
		}
	}
	return Reply{}, false
}

func decodeReply(toolName string, result json.RawMessage) (Reply, error) {
	if reply, ok := replyIfTerminal(toolName, result); ok {
		return reply, nil
	}
	return Reply{Text: string(result)}, nil
}

func buildArgs(toolName string, req Request) json.RawMessage {
	limit := req.Limit
	if limit <= 0 {
		limit = 5
	}
	switch toolName {
	case "text_search":
		b, _ := json.Marshal(struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}{req.Message, limit})
		return b
	case "image_search":
		b, _ := json.Marshal(struct {
			Image    []byte `json:"image"`
			ImageURI string `json:"image_uri,omitempty"`
			Limit    int    `json:"limit"`
		}{req.Image, req.ImageURI, limit})
		return b
	case "get_details":
		b, _ := json.Marshal(struct {
			ProductID string `json:"product_id"`
		}{req.ProductID})
		return b
	case "check_inventory":
		b, _ := json.Marshal(struct {
			ProductID string `json:"product_id"`
			Size      string `json:"size,omitempty"`
		}{req.ProductID, req.Size})
		return b
	case "place_order":
		b, _ := json.Marshal(struct {
			CustomerID string                     `json:"customer_id"`
			Items      []catalog.OrderItemRequest `json:"items"`
		}{req.CustomerID, req.Items})
		return b
	default:
		return json.RawMessage(`{}`)
	}
}
