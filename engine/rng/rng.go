// Package rng provides the deterministic random source shared by every
// engine that needs chance: pattern pools, hazards and loot rolls.
package rng

import "math/rand"

// countingSource wraps a rand.Source and counts every Int63 draw, so the
// exact stream position can be saved and replayed.
type countingSource struct {
	src   rand.Source
	draws int64
}

func (c *countingSource) Int63() int64 {
	c.draws++
	return c.src.Int63()
}

func (c *countingSource) Seed(seed int64) {
	c.draws = 0
	c.src.Seed(seed)
}

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position counts raw source draws, enabling save/restore.
type RNG struct {
	seed int64
	cs   *countingSource
	src  *rand.Rand
}

// New creates a new deterministic RNG from a seed.
func New(seed int64) *RNG {
	cs := &countingSource{src: rand.NewSource(seed)}
	return &RNG{
		seed: seed,
		cs:   cs,
		src:  rand.New(cs),
	}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a uniform integer in [0, n). n must be positive.
func (r *RNG) Intn(n int) int {
	return r.src.Intn(n)
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.src.Intn(sides) + 1
}

// Float64 returns a uniform float in [0, 1).
func (r *RNG) Float64() float64 {
	return r.src.Float64()
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := r.src.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Sample returns k distinct elements of pool chosen uniformly at random.
// It runs a Fisher–Yates shuffle over a copy of pool and stops after k
// swaps, so the cost is O(len(pool)) regardless of k. k is clamped to
// [0, len(pool)]; pool is not modified.
func (r *RNG) Sample(pool []int, k int) []int {
	if k > len(pool) {
		k = len(pool)
	}
	if k <= 0 {
		return nil
	}
	buf := make([]int, len(pool))
	copy(buf, pool)
	for i := 0; i < k; i++ {
		j := i + r.src.Intn(len(buf)-i)
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf[:k]
}

// Position returns the number of source draws made since creation.
func (r *RNG) Position() int64 {
	return r.cs.draws
}

// Restore creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func Restore(seed int64, position int64) *RNG {
	r := New(seed)
	r.Reset(seed, position)
	return r
}

// Reset reseeds r in place and advances it to position, so holders of r
// see the restored stream.
func (r *RNG) Reset(seed int64, position int64) {
	r.seed = seed
	r.cs.Seed(seed)
	for r.cs.draws < position {
		r.cs.Int63()
	}
}
