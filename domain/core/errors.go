package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Fit errors
	ErrDegenerateFit = errors.New("degenerate fit")
	ErrTooFewPoints  = fmt.Errorf("%w: fewer than 2 distinct x-values", ErrDegenerateFit)
	ErrZeroVariance  = fmt.Errorf("%w: zero variance in y-values", ErrDegenerateFit)

	// Configuration errors
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrNonPositiveExtinction  = fmt.Errorf("%w: extinction coefficient must be > 0", ErrInvalidConfig)
	ErrNonPositivePathLength  = fmt.Errorf("%w: path length must be > 0", ErrInvalidConfig)
	ErrNonPositiveSaltFactor  = fmt.Errorf("%w: salt factor must be > 0", ErrInvalidConfig)
	ErrNonPositiveTemperature = fmt.Errorf("%w: temperature must be > 0 K", ErrInvalidConfig)

	// Input errors
	ErrInvalidRun       = errors.New("invalid run data")
	ErrNonMonotonicTime = fmt.Errorf("%w: timestamps must be strictly increasing", ErrInvalidRun)
	ErrNegativeTime     = fmt.Errorf("%w: timestamps must be non-negative", ErrInvalidRun)
	ErrEmptyRun         = fmt.Errorf("%w: run contains no samples", ErrInvalidRun)

	// Aggregation errors
	ErrInsufficientArrheniusData = errors.New("insufficient data for Arrhenius regression")

	// Repository errors
	ErrNotFound          = errors.New("resource not found")
	ErrRunResultNotFound = fmt.Errorf("%w: run result", ErrNotFound)
)

// Error constructors with context
func NewRunError(label string, err error) error {
	return fmt.Errorf("run %q: %w", label, err)
}

func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

// Error checking helpers
func IsDegenerateFit(err error) bool {
	return errors.Is(err, ErrDegenerateFit)
}

func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsInvalidRun(err error) bool {
	return errors.Is(err, ErrInvalidRun)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientArrheniusData)
}
