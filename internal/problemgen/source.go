package problemgen

import "math/rand/v2"

// Source supplies random integers to the generator.
type Source interface {
	// IntN returns a uniform integer in [0, n). n is always > 0.
	IntN(n int) int
}

// globalSource draws from the math/rand/v2 top-level generator, which is
// safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// NewSeededSource returns a deterministic Source. It is not safe for
// concurrent use on its own; Generator serializes access to it.
func NewSeededSource(seed1, seed2 uint64) Source {
	return rand.New(rand.NewPCG(seed1, seed2))
}
