// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package activity is the Activity Recorder (C7): per-turn, append-only
// event logging for progressive UI replay of embedding/search/delegation
// steps.
package activity

import "time"

// Kind is the closed set of event kinds a Turn can emit.
type Kind string

const (
	KindEmbedding  Kind = "embedding"
	KindSearch     Kind = "search"
	KindResult     Kind = "result"
	KindDelegation Kind = "delegation"
	KindError      Kind = "error"
)

// Event is one entry in a turn's activity trace (spec §3 ActivityEvent).
type Event struct {
	ID        int64
	Kind      Kind
	Title     string
	Timestamp time.Time
	LatencyMS int64
	SQL       string
	Count     int
	ErrorKind string
	Detail    string
}

// EventOption sets an optional field on an Event at record time.
type EventOption func(*Event)

func WithLatency(d time.Duration) EventOption {
	return func(e *Event) { e.LatencyMS = d.Milliseconds() }
}

func WithSQL(summary string) EventOption {
	return func(e *Event) { e.SQL = summary }
}

func WithCount(n int) EventOption {
	return func(e *Event) { e.Count = n }
}

func WithErrorKind(kind string) EventOption {
	return func(e *Event) { e.ErrorKind = kind }
}

func WithDetail(detail string) EventOption {
	return func(e *Event) { e.Detail = detail }
}
