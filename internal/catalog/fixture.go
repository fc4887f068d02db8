// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
)

// FixtureStore is an in-memory ProductStore used by tests and the
// developer console (cmd/shopagent serve-demo). It implements the exact
// filter/ranking/transaction semantics of PGStore without a database,
// so the testable-property scenarios S1-S6 (spec §8) run without
// provisioning Postgres.
//
// Thread Safety: safe for concurrent use; PlaceOrder serializes through a
// single mutex, giving the same linearizable-inventory guarantee spec §5
// requires of the real transactional store.
type FixtureStore struct {
	mu       sync.Mutex
	products map[string]*Product
	orders   []Order
}

// NewFixtureStore builds a store seeded with the given products. Each
// Product is copied so later mutation of the caller's slice cannot
// corrupt the fixture.
func NewFixtureStore(products []Product) *FixtureStore {
	m := make(map[string]*Product, len(products))
	for _, p := range products {
		cp := p
		m[p.ProductID] = &cp
	}
	return &FixtureStore{products: m}
}

// Execute is unsupported: FixtureStore is consumed through the typed
// ProductStore methods, never through raw SQL text. Present only to
// satisfy the Store interface embedded in ProductStore.
func (s *FixtureStore) Execute(_ context.Context, sql string, _ ...any) ([]Row, error) {
	return nil, apperr.StoreFailure(&unsupportedFixtureOp{op: "Execute: " + sql})
}

type unsupportedFixtureOp struct{ op string }

func (e *unsupportedFixtureOp) Error() string { return "fixture store does not support " + e.op }

// Query implements ANNIndex by cosine distance against every embedded
// product, returning the k closest.
func (s *FixtureStore) Query(_ context.Context, vector []float32, k int) ([]Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cands []Candidate
	for _, p := range s.products {
		if p.Embedding == nil {
			continue
		}
		cands = append(cands, Candidate{ProductID: p.ProductID, Distance: cosineDistance(p.Embedding, vector)})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Distance != cands[j].Distance {
			return cands[i].Distance < cands[j].Distance
		}
		return cands[i].ProductID < cands[j].ProductID
	})
	if len(cands) > k {
		cands = cands[:k]
	}
	return cands, nil
}

// cosineDistance mirrors internal/embedding.CosineDistance without an
// import cycle; both compute 1 - dot(a,b) for unit vectors.
func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return 1 - cos
}

// LexicalSearch ranks products by a deterministic term-overlap score that
// approximates ts_rank_cd closely enough for fixture-driven tests: each of
// cleanedText's whitespace tokens found (case insensitively) in the
// product's name adds 2 and in its description adds 1, and the ranks of
// the returned rows are then divided by the highest rank among them.
func (s *FixtureStore) LexicalSearch(_ context.Context, filter Filter, cleanedText string, limit int) ([]ScoredProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := strings.Fields(strings.ToLower(cleanedText))

	var out []ScoredProduct
	for _, p := range s.products {
		if !filter.Matches(*p) {
			continue
		}
		var rank float64
		if len(tokens) > 0 {
			nameLower := strings.ToLower(p.Name)
			descLower := strings.ToLower(p.Description)
			for _, t := range tokens {
				if strings.Contains(nameLower, t) {
					rank += 2
				}
				if strings.Contains(descLower, t) {
					rank += 1
				}
			}
			if rank == 0 {
				// No lexical match at all: excluded from the lexical-only
				// path's result set (mirrors the SQL WHERE clause, which
				// requires at least one of name/description/tsv to match).
				continue
			}
		}
		out = append(out, ScoredProduct{Product: *p, LexicalScore: rank})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LexicalScore != out[j].LexicalScore {
			return out[i].LexicalScore > out[j].LexicalScore
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}

	var maxRank float64
	for _, sp := range out {
		if sp.LexicalScore > maxRank {
			maxRank = sp.LexicalScore
		}
	}
	if maxRank > 0 {
		for i := range out {
			out[i].LexicalScore /= maxRank
			out[i].Score = out[i].LexicalScore
		}
	}
	return out, nil
}

// GetProduct returns a copy of the stored product, or not_found.
func (s *FixtureStore) GetProduct(_ context.Context, productID string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return Product{}, apperr.NotFound("product", productID)
	}
	return *p, nil
}

// AllProducts returns a snapshot of every product, for the semantic
// candidate pre-filter and for the developer console's catalog browser.
func (s *FixtureStore) AllProducts() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// PlaceOrder applies spec §4.5's algorithm under a single mutex, giving
// the same serializable-per-product-line guarantee as PGStore's
// SELECT...FOR UPDATE transaction (spec §8 scenario S5: exactly one of
// two concurrent orders against inventory=1 succeeds).
func (s *FixtureStore) PlaceOrder(_ context.Context, orderID, customerID string, requests []OrderItemRequest, policy PricingPolicy) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]resolvedLine, 0, len(requests))
	for _, req := range requests {
		p, ok := s.products[req.ProductID]
		if !ok {
			return Order{}, apperr.NotFound("product", req.ProductID)
		}
		if err := validateLine(*p, req.Size, req.Quantity); err != nil {
			return Order{}, err
		}
		lines = append(lines, resolvedLine{product: *p, size: req.Size, quantity: req.Quantity})
	}

	items, subtotal, tax, shipping, total := priceOrder(lines, policy)

	for _, l := range lines {
		s.products[l.product.ProductID].Inventory -= l.quantity
	}

	order := Order{
		OrderID:    orderID,
		CustomerID: customerID,
		Items:      items,
		Subtotal:   subtotal,
		Tax:        tax,
		Shipping:   shipping,
		Total:      total,
		Status:     OrderConfirmed,
		CreatedAt:  time.Now().UTC(),
	}
	s.orders = append(s.orders, order)
	return order, nil
}

// Orders returns every confirmed order placed so far, for tests that
// assert on order count (spec §8 scenario S5: "one Order row exists").
func (s *FixtureStore) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

