package rng

import "math/rand"

// RNG wraps math/rand.Rand with deterministic position tracking.
// Every draw advances the position by one, so a session can be reproduced
// from its seed and the number of draws made so far.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// New creates a deterministic RNG from a seed.
func New(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Restore creates an RNG and advances it to the given position.
func Restore(seed int64, position int64) *RNG {
	r := New(seed)
	for i := int64(0); i < position; i++ {
		r.src.Int63()
	}
	r.pos = position
	return r
}

// Intn returns a value in [0, n). n <= 1 always yields 0 without a draw.
func (r *RNG) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	r.pos++
	return int(r.src.Int63() % int64(n))
}

// Range returns a float in [lo, hi).
func (r *RNG) Range(lo, hi float64) float64 {
	r.pos++
	f := float64(r.src.Int63()) / (1 << 63)
	return lo + f*(hi-lo)
}

// Chance returns true with probability 1/2.
func (r *RNG) Chance() bool {
	return r.Intn(2) == 0
}

// Shuffle performs a Fisher-Yates shuffle over n elements.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}
