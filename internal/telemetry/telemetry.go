// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry provides one OTel tracer per component, matching the
// otel.Tracer(...) pattern internal/supervisor/routing's escalating
// router already uses, so every package traces spans under the same
// "shopagent.<component>" naming convention.
package telemetry

import "go.opentelemetry.io/otel"

var (
	CatalogTracer     = otel.Tracer("shopagent.catalog")
	RetrievalTracer   = otel.Tracer("shopagent.retrieval")
	EmbeddingTracer   = otel.Tracer("shopagent.embedding")
	LLMOracleTracer   = otel.Tracer("shopagent.llmoracle")
	SupervisorTracer  = otel.Tracer("shopagent.supervisor")
	OrchestratorTracer = otel.Tracer("shopagent.orchestrator")
)
