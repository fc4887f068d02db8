// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package activity

import (
	"sync"
	"sync/atomic"
	"time"
)

// Recorder is a per-turn, append-only event log. The common single-
// threaded case (Phase 1/2, no concurrent workers) never contends on the
// mutex beyond the append itself; id assignment is a lock-free atomic
// increment so concurrent workers racing to complete never block each
// other on id generation, only on the final append.
type Recorder struct {
	counter atomic.Int64
	mu      sync.Mutex
	events  []Event
	sinks   []Sink
}

// New builds an empty Recorder, optionally fanning every recorded event
// out to the given sinks (e.g. a ChannelSink feeding a streaming HTTP
// response).
func New(sinks ...Sink) *Recorder {
	return &Recorder{sinks: sinks}
}

// Record appends a new event with the next id and the current wall-clock
// time, applying opts, and pushes it to every attached sink. Safe for
// concurrent callers; when multiple workers complete at nearly the same
// instant, insertion order reflects completion order, not start order.
func (r *Recorder) Record(kind Kind, title string, opts ...EventOption) Event {
	e := Event{
		ID:        r.counter.Add(1),
		Kind:      kind,
		Title:     title,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(&e)
	}

	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()

	for _, sink := range r.sinks {
		sink.Push(e)
	}
	return e
}

// Take returns the ordered event list accumulated so far and resets the
// recorder for the next turn.
func (r *Recorder) Take() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.events
	r.events = nil
	r.counter.Store(0)
	return out
}
