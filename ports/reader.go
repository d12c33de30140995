package ports

import (
	"context"

	"gokinetics/domain/kinetics"
)

// RunReaderPort turns external trace files into validated Runs.
// All column-name normalization and temperature extraction happens behind
// this port; the core only ever sees ordered (time, absorbance) samples with
// a pre-resolved Kelvin temperature.
type RunReaderPort interface {
	// ReadRun loads a single trace file
	ReadRun(ctx context.Context, path string) (kinetics.Run, error)

	// ScanDirectory discovers trace files (.csv, .xlsx) under dir.
	// Files whose name carries no temperature are reported in skipped,
	// not silently dropped.
	ScanDirectory(ctx context.Context, dir string) (runs []kinetics.Run, skipped []string, err error)
}
