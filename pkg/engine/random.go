// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"math/rand"
	"time"
)

// Rand is the source of randomness the engine draws from. It covers
// exactly the two draws the models need: a uniform integer for weighted
// sampling and a standard normal for the gaussian model.
//
// *math/rand.Rand satisfies Rand. Tests substitute a scripted double so a
// pick consumes a known sequence, which is what makes consent-loop
// behavior reproducible.
type Rand interface {
	// Int63n returns a uniformly distributed value in [0, n).
	Int63n(n int64) int64

	// NormFloat64 returns a normally distributed value with mean 0 and
	// standard deviation 1.
	NormFloat64() float64
}

// NewSeededRand returns a reproducible random source. A seed of 0 falls
// back to the current time.
func NewSeededRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

var _ Rand = (*rand.Rand)(nil)
