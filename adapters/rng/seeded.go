package rng

import (
	"hash/fnv"
	"math/rand"

	"gokinetics/ports"
)

// SeededRNG derives independent deterministic rand streams from a name and a
// base seed. The same (name, seed) pair always yields an identical stream, so
// robust re-fits are reproducible per run.
type SeededRNG struct{}

// NewSeededRNG creates a new seeded RNG adapter
func NewSeededRNG() *SeededRNG {
	return &SeededRNG{}
}

var _ ports.RNGPort = (*SeededRNG)(nil)

// SeededStream creates a deterministic random number generator for a named operation
func (s *SeededRNG) SeededStream(name string, seed int64) *rand.Rand {
	return rand.New(rand.NewSource(deriveSeed(name, seed)))
}

// RunStream creates a deterministic RNG stream for a specific run label
func (s *SeededRNG) RunStream(runLabel string, baseSeed int64) *rand.Rand {
	return s.SeededStream("robust_fit/"+runLabel, baseSeed)
}

// deriveSeed mixes the stream name into the base seed so differently named
// streams never share a sequence
func deriveSeed(name string, seed int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return seed ^ int64(h.Sum64())
}
