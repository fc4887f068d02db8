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

// RouterCacheStore persists EscalatingRouter's final tool selections
// across process restarts, keyed by a hash of the query text. An
// escalation call (BM25 + LLM Oracle round trip) costs far more than a
// BadgerDB lookup, so a repeat query skips both the primary and
// escalation routers entirely on a cache hit.
//
// Storage layout: routing/decision/v1/{queryHash} -> gob-encoded
// Selection, TTL enforced by BadgerDB's own GC rather than application
// code — the same pattern the teacher's tool-embedding cache uses.

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const routerCacheKeyPrefix = "routing/decision/v1/"
const routerCacheDefaultTTL = 7 * 24 * time.Hour

// RouterCacheStore wraps an already-opened BadgerDB instance. The
// teacher's own badgerstore.DB wrapper package covers a different
// project's journal format and does not fit this module's decision-cache
// shape, so this type talks to *badger.DB directly.
type RouterCacheStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewRouterCacheStore wraps db with the default 7-day TTL.
func NewRouterCacheStore(db *badger.DB) *RouterCacheStore {
	return &RouterCacheStore{db: db, ttl: routerCacheDefaultTTL}
}

func queryKey(query string) []byte {
	sum := sha256.Sum256([]byte(query))
	return []byte(routerCacheKeyPrefix + hex.EncodeToString(sum[:]))
}

// Lookup returns a cached Selection for query, or ok=false on a miss or
// storage error (a cache failure degrades to "always escalate", never a
// hard error).
func (s *RouterCacheStore) Lookup(query string) (Selection, bool) {
	var sel Selection
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(queryKey(query))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return errCacheMiss
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&sel)
		})
	})
	if err != nil {
		return Selection{}, false
	}
	return sel, true
}

var errCacheMiss = errors.New("router cache: miss")

// Save persists sel for query with the store's TTL. Failures are the
// caller's to log; persistence is best-effort.
func (s *RouterCacheStore) Save(query string, sel Selection) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(sel); err != nil {
		return fmt.Errorf("router cache: encode: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(queryKey(query), buf.Bytes()).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
}
