package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gokinetics/domain/kinetics"
	"gokinetics/internal"
	"gokinetics/ports"

	"github.com/xuri/excelize/v2"
)

// TraceReader reads absorbance traces from CSV and Excel files and hands the
// core validated Runs. All column normalization and filename temperature
// extraction lives here, outside the core's contract.
type TraceReader struct {
	logger *internal.Logger
}

// NewTraceReader creates a new trace reader
func NewTraceReader(logger *internal.Logger) *TraceReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TraceReader{logger: logger}
}

var _ ports.RunReaderPort = (*TraceReader)(nil)

// ReadRun loads a single trace file into a validated Run
func (r *TraceReader) ReadRun(ctx context.Context, path string) (kinetics.Run, error) {
	if err := ctx.Err(); err != nil {
		return kinetics.Run{}, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return kinetics.Run{}, fmt.Errorf("trace file not found: %s", path)
	}

	name := filepath.Base(path)
	tempK, err := TemperatureFromFilename(name)
	if err != nil {
		return kinetics.Run{}, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = r.readCSVRows(path)
	case ".xlsx":
		rows, err = r.readExcelRows(path)
	default:
		return kinetics.Run{}, fmt.Errorf("unsupported trace file type: %s", path)
	}
	if err != nil {
		return kinetics.Run{}, err
	}

	samples, err := r.parseSamples(name, rows)
	if err != nil {
		return kinetics.Run{}, err
	}

	return kinetics.NewRun(kinetics.RunMetadata{
		TemperatureK: tempK,
		Label:        name,
	}, samples)
}

// ScanDirectory discovers trace files under dir. Files without a parseable
// temperature go to skipped rather than being silently dropped.
func (r *TraceReader) ScanDirectory(ctx context.Context, dir string) ([]kinetics.Run, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan data directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var runs []kinetics.Run
	var skipped []string
	for _, p := range paths {
		run, err := r.ReadRun(ctx, p)
		if err != nil {
			r.logger.Warn("skipping %s: %v", filepath.Base(p), err)
			skipped = append(skipped, filepath.Base(p))
			continue
		}
		runs = append(runs, run)
	}
	return runs, skipped, nil
}

func (r *TraceReader) readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // instruments emit ragged trailing rows
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file %s: %w", path, err)
	}
	return rows, nil
}

func (r *TraceReader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// parseSamples normalizes the header row and parses the data rows. Blank
// rows and rows with unparseable numbers are rejected with the row index so
// the caller can fix the file.
func (r *TraceReader) parseSamples(name string, rows [][]string) ([]kinetics.RawSample, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("trace %s has no data rows", name)
	}

	roles, ok := resolveColumns(rows[0])
	if !ok {
		return nil, fmt.Errorf("trace %s: could not identify time and absorbance columns", name)
	}
	if roles.positional {
		r.logger.Warn("trace %s: could not identify columns by name, assuming col 1 is time and col 2 is absorbance", name)
	}

	samples := make([]kinetics.RawSample, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) <= roles.timeIdx || len(row) <= roles.absorbanceIdx {
			continue // ragged trailing row
		}
		tStr := strings.TrimSpace(row[roles.timeIdx])
		aStr := strings.TrimSpace(row[roles.absorbanceIdx])
		if tStr == "" && aStr == "" {
			continue
		}

		t, err := strconv.ParseFloat(tStr, 64)
		if err != nil {
			return nil, fmt.Errorf("trace %s row %d: invalid time %q", name, i+2, tStr)
		}
		a, err := strconv.ParseFloat(aStr, 64)
		if err != nil {
			return nil, fmt.Errorf("trace %s row %d: invalid absorbance %q", name, i+2, aStr)
		}
		samples = append(samples, kinetics.RawSample{TimeS: t, Absorbance: a})
	}
	return samples, nil
}
