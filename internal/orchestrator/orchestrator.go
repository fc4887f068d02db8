// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orchestrator implements the Turn Orchestrator (C8), the single
// entry point of spec §4.8: handle_turn(phase, message?, image?,
// customer_id?) -> TurnResult. Phase 1 and Phase 2 bypass the Supervisor
// entirely and run lexical-only retrieval directly against the Catalog
// Store (Phase 1) or the mediated tool-server transport (Phase 2); Phase
// 3 runs the full Supervisor tool-calling loop.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/activity"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/query"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/retrieval"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/supervisor"
)

// Phase selects how a turn is handled (spec §4.8).
type Phase int

const (
	PhaseDirect   Phase = 1
	PhaseMediated Phase = 2
	PhaseAgentic  Phase = 3
)

// TurnRequest is the turn-level RPC request of spec §6.
type TurnRequest struct {
	Phase      Phase  `validate:"required,oneof=1 2 3"`
	Message    string `validate:"required_without_all=Image ImageURI"`
	Image      []byte
	ImageURI   string
	CustomerID string
	Limit      int
}

// OrderRequest is the separate Order RPC of spec §6.
type OrderRequest struct {
	Phase      Phase  `validate:"required,oneof=1 2 3"`
	CustomerID string `validate:"required"`
	ProductID  string `validate:"required"`
	Size       string
	Quantity   int `validate:"required,gte=1"`
}

// TurnResult is the response shape of spec §4.8. The Orchestrator always
// returns a successful TurnResult (spec §7): failures that are expected
// in normal operation, such as turn_timeout, are reported via
// BusinessErrorCode rather than the function's error return, which is
// reserved for request validation failures.
type TurnResult struct {
	ReplyText           string
	Products            []catalog.ScoredProduct
	Order               *catalog.Order
	ActivityTrace       []activity.Event
	FollowUpSuggestions []string
	BusinessErrorCode   string
}

var validate = validator.New()

// Orchestrator wires together the components needed to answer both RPCs
// across all three phases. One Orchestrator instance is meant to serve
// one conversation's turns sequentially (spec §5 "single-threaded per
// turn"); independent conversations use independent instances.
type Orchestrator struct {
	directStore  catalog.ProductStore
	mediatedLex  retrieval.LexicalStore
	retriever    *retrieval.Retriever
	sup          *supervisor.Supervisor
	orderWorker  orderPlacer
	recorder     *activity.Recorder
	turnDeadline time.Duration
}

type orderPlacer interface {
	Place(ctx context.Context, customerID string, items []catalog.OrderItemRequest) (catalog.Order, error)
}

// New builds an Orchestrator. mediatedLex may be nil if Phase 2 is not
// configured for this instance.
func New(directStore catalog.ProductStore, mediatedLex retrieval.LexicalStore, retriever *retrieval.Retriever, sup *supervisor.Supervisor, orderWorker orderPlacer, recorder *activity.Recorder, turnDeadline time.Duration) *Orchestrator {
	if turnDeadline <= 0 {
		turnDeadline = 30 * time.Second
	}
	return &Orchestrator{
		directStore:  directStore,
		mediatedLex:  mediatedLex,
		retriever:    retriever,
		sup:          sup,
		orderWorker:  orderWorker,
		recorder:     recorder,
		turnDeadline: turnDeadline,
	}
}

// HandleTurn dispatches req by phase and always returns a successful
// TurnResult; the error return is reserved for malformed requests.
func (o *Orchestrator) HandleTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	if err := validate.Struct(req); err != nil {
		return TurnResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.turnDeadline)
	defer cancel()

	switch req.Phase {
	case PhaseDirect:
		return o.handleLexicalPhase(ctx, req, o.directStore)
	case PhaseMediated:
		if o.mediatedLex == nil {
			return o.businessError(apperr.StoreFailure(nil)), nil
		}
		return o.handleLexicalPhase(ctx, req, o.mediatedLex)
	default:
		return o.handleAgenticPhase(ctx, req)
	}
}

func (o *Orchestrator) handleLexicalPhase(ctx context.Context, req TurnRequest, store retrieval.LexicalStore) (TurnResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 5
	}
	parsed := query.Parse(req.Message)

	start := time.Now()
	products, err := retrieval.LexicalOnly(ctx, store, parsed, limit)
	if err != nil {
		o.recorder.Record(activity.KindError, "lexical retrieval failed", activity.WithErrorKind(string(apperr.CodeOf(err))), activity.WithDetail(err.Error()))
		return o.businessError(err), nil
	}
	o.recorder.Record(activity.KindSearch, "lexical-only retrieval", activity.WithLatency(time.Since(start)), activity.WithCount(len(products)))

	return TurnResult{
		ReplyText:           summarizeResultCount(len(products)),
		Products:            products,
		ActivityTrace:       o.recorder.Take(),
		FollowUpSuggestions: followUpsForSearch(parsed),
	}, nil
}

func (o *Orchestrator) handleAgenticPhase(ctx context.Context, req TurnRequest) (TurnResult, error) {
	reply, err := o.sup.Handle(ctx, supervisor.Request{
		Message:    req.Message,
		Image:      req.Image,
		ImageURI:   req.ImageURI,
		CustomerID: req.CustomerID,
		Limit:      req.Limit,
	})
	if err != nil {
		return o.businessError(err), nil
	}

	return TurnResult{
		ReplyText:           reply.Text,
		Products:            reply.Products,
		Order:               reply.Order,
		ActivityTrace:       o.recorder.Take(),
		FollowUpSuggestions: followUpsForReply(reply),
	}, nil
}

// PlaceOrder runs the Order RPC of spec §6. Order placement always goes
// through the directly-injected OrderWorker regardless of phase: the
// mediated transport's SQL surface does not expose the transactional
// write path PlaceOrder requires (spec §6 describes it as a read
// surface — execute/run_query).
func (o *Orchestrator) PlaceOrder(ctx context.Context, req OrderRequest) (TurnResult, error) {
	if err := validate.Struct(req); err != nil {
		return TurnResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.turnDeadline)
	defer cancel()

	items := []catalog.OrderItemRequest{{ProductID: req.ProductID, Size: req.Size, Quantity: req.Quantity}}
	order, err := o.orderWorker.Place(ctx, req.CustomerID, items)
	if err != nil {
		o.recorder.Record(activity.KindError, "order placement failed", activity.WithErrorKind(string(apperr.CodeOf(err))), activity.WithDetail(err.Error()))
		return o.businessError(err), nil
	}
	o.recorder.Record(activity.KindResult, "order confirmed", activity.WithDetail(order.OrderID))

	return TurnResult{
		ReplyText:     "Your order is confirmed.",
		Order:         &order,
		ActivityTrace: o.recorder.Take(),
	}, nil
}

func (o *Orchestrator) businessError(err error) TurnResult {
	if errors.Is(err, context.DeadlineExceeded) {
		err = apperr.TurnTimeout()
	}
	return TurnResult{
		ReplyText:         apperr.UserMessage(err),
		ActivityTrace:     o.recorder.Take(),
		BusinessErrorCode: string(apperr.CodeOf(err)),
	}
}

func summarizeResultCount(n int) string {
	if n == 0 {
		return "I couldn't find anything matching that."
	}
	return "Here's what I found."
}

// followUpsForSearch derives 2-4 related-category suggestions purely
// from the parsed query's shape (spec §4.8: "a small deterministic
// function of the result shape", not the LLM).
func followUpsForSearch(q query.ParsedQuery) []string {
	suggestions := []string{"Show me similar products", "What sizes are available?", "Any items under $50?"}
	if q.Category != nil {
		suggestions[0] = "Show me more " + string(*q.Category)
	}
	return suggestions
}

func followUpsForReply(reply supervisor.Reply) []string {
	if reply.Order != nil {
		return nil
	}
	if len(reply.Products) > 0 {
		return []string{"Show me similar products", "What sizes are available?", "Any items under $50?"}
	}
	return nil
}
