// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llmoracle is the LLM Oracle (L2): given a prompt and the tool
// catalog, decide between a final textual answer and one tool
// invocation.
package llmoracle

import (
	"context"
	"encoding/json"
)

// Prompt is the Supervisor's input to the oracle: a fixed system
// description plus the user's message and any accumulated tool outputs
// from earlier turns of this same tool-calling loop (spec §4.6 step 1).
type Prompt struct {
	System      string
	UserMessage string
	ToolOutputs []ToolOutput
}

// ToolOutput is one prior tool call's result, fed back to the oracle as
// conversation history within a single turn's loop.
type ToolOutput struct {
	ToolName string
	Result   json.RawMessage
}

// ToolSpec is the subset of a worker tool the oracle needs to decide:
// name, description, and a JSON-schema-shaped parameter description.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Decision is the tagged-variant result of one oracle call — either a
// FinalAnswer or a ToolCall (spec §9 "Delegation" design note). The
// private marker method makes the variant set closed: no type outside this
// package can implement Decision. The compiler does not check a type
// switch over it for exhaustiveness.
type Decision interface {
	isDecision()
}

// FinalAnswer means the oracle has no more tool calls to make; Text is
// the reply shown to the customer.
type FinalAnswer struct {
	Text string
}

func (FinalAnswer) isDecision() {}

// ToolCall means the oracle wants to invoke one worker tool before
// answering.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

func (ToolCall) isDecision() {}

// Oracle decides what to do next given a prompt and the available tools.
type Oracle interface {
	Decide(ctx context.Context, prompt Prompt, tools []ToolSpec) (Decision, error)
}
