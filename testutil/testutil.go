// Package testutil provides test helpers for building coordinate axes and
// record sets.
//
// This package is intended for use in tests and benchmarks only.
//
//	times := testutil.Offsets(10)             // forecast hours 0..9
//	levels := testutil.Levels(20)             // levels 0..19
//	tuples := testutil.Cartesian(times, levels)
//	rng := testutil.NewRNG(42)
//	rng.Shuffle(tuples)
package testutil

import (
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/gridex/coord"
)

// RNG encapsulates a seeded random number generator.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Shuffle permutes tuples in place.
func (r *RNG) Shuffle(tuples []coord.Tuple) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(tuples), func(i, j int) { tuples[i], tuples[j] = tuples[j], tuples[i] })
}

// Sample keeps each tuple with probability p, preserving order.
func (r *RNG) Sample(tuples []coord.Tuple, p float64) []coord.Tuple {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]coord.Tuple, 0, int(float64(len(tuples))*p)+1)
	for _, t := range tuples {
		if r.rand.Float64() < p {
			out = append(out, t)
		}
	}
	return out
}

// RefTime is the run time used by Runtimes.
var RefTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Runtimes returns n run times, 6 hours apart, starting at RefTime.
func Runtimes(n int) []coord.Value {
	out := make([]coord.Value, n)
	for i := range out {
		out[i] = coord.Runtime(RefTime.Add(time.Duration(i) * 6 * time.Hour))
	}
	return out
}

// Offsets returns forecast offsets 0..n-1.
func Offsets(n int) []coord.Value {
	out := make([]coord.Value, n)
	for i := range out {
		out[i] = coord.TimeOffset(int64(i))
	}
	return out
}

// Intervals returns n consecutive 3-unit intervals starting at 0.
func Intervals(n int) []coord.Value {
	out := make([]coord.Value, n)
	for i := range out {
		out[i] = coord.TimeInterval(int64(3*i), int64(3*i+3))
	}
	return out
}

// Levels returns vertical levels 0..n-1.
func Levels(n int) []coord.Value {
	out := make([]coord.Value, n)
	for i := range out {
		out[i] = coord.Level(float64(i))
	}
	return out
}

// Members returns ensemble members 0..n-1 under code 1.
func Members(n int) []coord.Value {
	out := make([]coord.Value, n)
	for i := range out {
		out[i] = coord.Ensemble(1, i)
	}
	return out
}

// Axis builds an axis from values and panics on error.
func Axis(kind coord.Kind, name string, values []coord.Value) *coord.Axis {
	b := coord.NewAxisBuilder(kind, name, "")
	for _, v := range values {
		b.Add(v)
	}
	a, err := b.Finish()
	if err != nil {
		panic(err)
	}
	return a
}

// Cartesian returns every combination of the given per-axis values, in
// row-major order.
func Cartesian(values ...[]coord.Value) []coord.Tuple {
	if len(values) == 0 {
		return nil
	}
	n := 1
	for _, vs := range values {
		n *= len(vs)
	}
	out := make([]coord.Tuple, 0, n)
	idx := make([]int, len(values))
	for range n {
		t := make(coord.Tuple, len(values))
		for i, x := range idx {
			t[i] = values[i][x]
		}
		out = append(out, t)
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(values[i]) {
				break
			}
			idx[i] = 0
		}
	}
	return out
}

// ScenarioValues returns the per-axis values of the standard growth
// scenario: a time axis with n values and a vertical axis with 2n values.
func ScenarioValues(n int) [][]coord.Value {
	return [][]coord.Value{Offsets(n), Levels(2 * n)}
}

// ScenarioKinds returns the axis kinds of ScenarioValues.
func ScenarioKinds() []coord.Kind {
	return []coord.Kind{coord.KindTime, coord.KindVertical}
}
