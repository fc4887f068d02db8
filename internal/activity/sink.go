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
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Sink receives a copy of every event as it is recorded. Push must never
// block the turn; a slow consumer drops events rather than stall it.
type Sink interface {
	Push(e Event)
}

// ChannelSink fans events out over a buffered channel. When the buffer is
// full, the event is dropped and logged rather than blocking the caller.
type ChannelSink struct {
	ch     chan Event
	logger *slog.Logger
}

// NewChannelSink builds a ChannelSink with the given buffer size.
func NewChannelSink(buffer int, logger *slog.Logger) *ChannelSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelSink{ch: make(chan Event, buffer), logger: logger}
}

// Events returns the read side of the channel for a consumer to range over.
func (s *ChannelSink) Events() <-chan Event { return s.ch }

func (s *ChannelSink) Push(e Event) {
	select {
	case s.ch <- e:
	default:
		s.logger.Warn("activity sink buffer full, dropping event", slog.String("kind", string(e.Kind)), slog.Int64("id", e.ID))
	}
}

// WebSocketSink pushes each event as a JSON text frame to a connected
// client, used by the (out-of-scope) outer HTTP layer to stream progress.
// Push writes the frame synchronously under a mutex, so the turn that
// produced the event waits until the write returns; there is no outbound
// queue. A write failure is logged and the event is dropped.
type WebSocketSink struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	logger *slog.Logger
}

// NewWebSocketSink wraps an already-upgraded websocket connection.
func NewWebSocketSink(conn *websocket.Conn, logger *slog.Logger) *WebSocketSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketSink{conn: conn, logger: logger}
}

func (s *WebSocketSink) Push(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.WriteJSON(e); err != nil {
		s.logger.Warn("websocket sink write failed, dropping event", slog.String("kind", string(e.Kind)), slog.Int64("id", e.ID), slog.Any("error", err))
	}
}
