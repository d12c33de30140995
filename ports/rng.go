package ports

import (
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(name string, seed int64) *rand.Rand

	// RunStream creates a deterministic RNG stream for a specific run label.
	// This ensures robust re-fits produce identical inlier masks for the
	// same run and base seed.
	RunStream(runLabel string, baseSeed int64) *rand.Rand
}
