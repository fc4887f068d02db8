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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/workers"
)

var routerEscalationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "shopagent",
	Subsystem: "router",
	Name:      "escalation_total",
	Help:      "Escalation events by outcome: success, error, skipped",
}, []string{"outcome"})

var routerEscalationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "shopagent",
	Subsystem: "router",
	Name:      "escalation_latency_seconds",
	Help:      "Latency of escalation router calls",
	Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
})

var escalatingRouterTracer = otel.Tracer("shopagent.supervisor.routing.escalating")

// EscalatingRouter wraps a fast primary router (BM25) and escalates to a
// slower, more capable router (typically one backed by the LLM Oracle's
// tool-calling) when the primary's confidence falls below threshold —
// the same primary/escalation/threshold shape as the teacher's
// escalating_router.go, rescoped to a 3-tool corpus.
type EscalatingRouter struct {
	primary    Router
	escalation Router
	threshold  float64
	cache      *RouterCacheStore
	logger     *slog.Logger
}

// NewEscalatingRouter builds an EscalatingRouter. escalation or cache may
// be nil; a nil escalation disables escalation (zero overhead), a nil
// cache disables decision caching.
func NewEscalatingRouter(primary, escalation Router, threshold float64, cache *RouterCacheStore, logger *slog.Logger) *EscalatingRouter {
	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = 0.7
	}
	return &EscalatingRouter{primary: primary, escalation: escalation, threshold: threshold, cache: cache, logger: logger}
}

func (r *EscalatingRouter) SelectTool(ctx context.Context, query string, available []workers.ToolSpec) (Selection, error) {
	ctx, span := escalatingRouterTracer.Start(ctx, "routing.EscalatingRouter.SelectTool",
		trace.WithAttributes(
			attribute.Int("available_tools", len(available)),
			attribute.Bool("escalation_configured", r.escalation != nil),
		))
	defer span.End()

	if r.cache != nil {
		if cached, ok := r.cache.Lookup(query); ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
	}

	sel, err := r.primary.SelectTool(ctx, query, available)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "primary router failed")
		return Selection{}, err
	}
	span.SetAttributes(attribute.String("primary_tool", sel.Tool), attribute.Float64("primary_confidence", sel.Confidence))

	if r.escalation == nil || sel.Confidence >= r.threshold {
		routerEscalationTotal.WithLabelValues("skipped").Inc()
		r.store(query, sel)
		return sel, nil
	}

	start := time.Now()
	escalated, err := r.escalation.SelectTool(ctx, query, available)
	routerEscalationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		r.logger.Warn("escalation router failed, falling back to primary",
			slog.Float64("primary_confidence", sel.Confidence), slog.Any("error", err))
		routerEscalationTotal.WithLabelValues("error").Inc()
		r.store(query, sel)
		return sel, nil
	}

	routerEscalationTotal.WithLabelValues("success").Inc()
	span.SetAttributes(attribute.String("escalated_tool", escalated.Tool), attribute.Float64("escalated_confidence", escalated.Confidence))
	r.store(query, escalated)
	return escalated, nil
}

func (r *EscalatingRouter) store(query string, sel Selection) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Save(query, sel); err != nil {
		r.logger.Warn("router cache save failed", slog.Any("error", err))
	}
}
