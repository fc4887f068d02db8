// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metrics holds the process-wide Prometheus collectors shared
// across components, following the same promauto-at-package-scope
// pattern as internal/supervisor/routing's escalation metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var CatalogQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "shopagent",
	Subsystem: "catalog",
	Name:      "query_duration_seconds",
	Help:      "Latency of Catalog Store operations by kind; only ann queries are recorded.",
	Buckets:   prometheus.DefBuckets,
}, []string{"operation"})

var RetrieverCandidateSetSize = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "shopagent",
	Subsystem: "retriever",
	Name:      "candidate_set_size",
	Help:      "Size of the candidate set fetched before scoring and truncation.",
	Buckets:   []float64{10, 25, 50, 100, 200, 500},
})

var SupervisorToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "shopagent",
	Subsystem: "supervisor",
	Name:      "tool_calls_total",
	Help:      "Tool invocations dispatched by the Supervisor, by tool name and outcome.",
}, []string{"tool", "outcome"})

var OrderPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "shopagent",
	Subsystem: "order",
	Name:      "placed_total",
	Help:      "Orders successfully confirmed by Worker-Order.",
})

var OrderValueTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "shopagent",
	Subsystem: "order",
	Name:      "value_total_cents",
	Help:      "Sum of confirmed order totals in integer cents.",
})
