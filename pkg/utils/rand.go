package utils

import (
	"math"
	"math/rand"
	"time"
)

// RandSource is a seedable random number generator for workload generation.
// Not safe for concurrent use; each generator owns its own source.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource creates a new random source with the given seed
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a random int in [0, n)
func (r *RandSource) Intn(n int) int {
	return r.rng.Intn(n)
}

// ExpFloat64 returns an exponentially distributed random number with rate lambda
func (r *RandSource) ExpFloat64(lambda float64) float64 {
	return r.rng.ExpFloat64() / lambda
}

// PoissonInt returns a Poisson-distributed random integer with rate lambda
func (r *RandSource) PoissonInt(lambda float64) int {
	if lambda <= 0 {
		return 0
	}

	// Knuth's algorithm
	L := math.Exp(-lambda)
	k := 0
	p := 1.0

	for p > L {
		k++
		p *= r.rng.Float64()
	}

	return k - 1
}

// BernoulliBool returns true with probability p, false otherwise
func (r *RandSource) BernoulliBool(p float64) bool {
	return r.rng.Float64() < p
}
