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
	"context"
	"fmt"
)

// FakeOracle plays back a fixed script of Decisions, one per call,
// regardless of the prompt it's given. It exists so Supervisor tests and
// the deterministic-mode test suite can exercise the tool-calling loop
// without a network call or a live model.
type FakeOracle struct {
	script []Decision
	calls  int
}

// NewFakeOracle returns an oracle that yields script[0], script[1], ...
// on successive Decide calls. Calling Decide past the end of script is a
// test-authoring error and returns an error rather than panicking.
func NewFakeOracle(script ...Decision) *FakeOracle {
	return &FakeOracle{script: script}
}

func (f *FakeOracle) Decide(_ context.Context, _ Prompt, _ []ToolSpec) (Decision, error) {
	if f.calls >= len(f.script) {
		return nil, fmt.Errorf("llmoracle: fake oracle script exhausted after %d calls", f.calls)
	}
	d := f.script[f.calls]
	f.calls++
	return d, nil
}

// Calls reports how many times Decide has been invoked.
func (f *FakeOracle) Calls() int {
	return f.calls
}
