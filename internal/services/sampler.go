package services

import (
	"math/rand"
	"time"
)

// Sampler is the randomness capability used by synthesis and temporal
// allocation. Tests substitute deterministic implementations and
// assert invariants instead of exact outputs.
type Sampler interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// Intn returns a uniform value in [0, n). n must be > 0.
	Intn(n int) int
}

// NewSampler returns a time-seeded Sampler for production use.
func NewSampler() Sampler {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededSampler returns a Sampler with a fixed seed.
func NewSeededSampler(seed int64) Sampler {
	return rand.New(rand.NewSource(seed))
}

// intBetween samples uniformly from [lo, hi] inclusive.
func intBetween(s Sampler, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + int64(s.Intn(int(hi-lo+1)))
}

// shuffle permutes xs in place (Fisher-Yates).
func shuffle[T any](s Sampler, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
