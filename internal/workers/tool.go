// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workers implements Worker-Search, Worker-Product, and
// Worker-Order (spec §4.3-§4.5): the only components with access to the
// Catalog Store and Embedding Oracle. The Supervisor reaches them
// exclusively through the ToolSpec registry each worker exposes.
package workers

import (
	"context"
	"encoding/json"
)

// ToolSpec is one callable operation a worker exposes to the Supervisor's
// routing layer (spec §9: "an explicit registry... the Supervisor
// consumes this registry uniformly, never a type switch over hand-
// written worker names"). BestFor/UseWhen feed internal/supervisor/routing's
// BM25 index.
type ToolSpec struct {
	Name    string
	BestFor []string
	UseWhen string
	Handler func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)
}
