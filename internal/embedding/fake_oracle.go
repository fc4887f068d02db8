// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package embedding

import (
	"context"
	"hash/fnv"
)

// FakeOracle produces deterministic, unit-normalized vectors derived from
// a hash of the input bytes rather than calling any model. It backs tests
// and scenario S3/S6 (retrieval determinism without a live embedding
// service), grounded on the same "seed a PRNG from a hash" trick the
// teacher's test doubles use to stay reproducible across runs.
type FakeOracle struct {
	dim int
}

// NewFakeOracle returns a FakeOracle producing vectors of the given
// dimension.
func NewFakeOracle(dim int) *FakeOracle {
	return &FakeOracle{dim: dim}
}

func (f *FakeOracle) Dimension() int { return f.dim }

func (f *FakeOracle) EmbedText(_ context.Context, text string) ([]float32, error) {
	return f.vectorFor([]byte(text)), nil
}

func (f *FakeOracle) EmbedImage(_ context.Context, image []byte) ([]float32, error) {
	return f.vectorFor(image), nil
}

// vectorFor expands a 64-bit FNV-1a hash of input into dim pseudo-random
// components via a simple xorshift, then unit-normalizes. Same input
// always yields the same vector; different inputs yield near-orthogonal
// vectors with high probability.
func (f *FakeOracle) vectorFor(input []byte) []float32 {
	h := fnv.New64a()
	_, _ = h.Write(input)
	state := h.Sum64()
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}

	out := make([]float32, f.dim)
	for i := range out {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		out[i] = float32(int64(state%2000)-1000) / 1000.0
	}
	return normalize(out)
}
