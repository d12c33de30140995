package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gokinetics/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTrace(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newReader() *TraceReader {
	return NewTraceReader(internal.NewLogger(internal.LogLevelError))
}

func TestReadRun_CSV(t *testing.T) {
	dir := t.TempDir()
	path := writeTrace(t, dir, "run_298K.csv",
		"Time (s),Absorbance (AU)\n0,1.20\n30,1.10\n60,1.01\n")

	run, err := newReader().ReadRun(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 298.0, run.Metadata.TemperatureK)
	assert.Equal(t, "run_298K.csv", run.Metadata.Label)
	require.Len(t, run.Samples, 3)
	assert.Equal(t, 30.0, run.Samples[1].TimeS)
	assert.Equal(t, 1.10, run.Samples[1].Absorbance)
}

func TestReadRun_SwappedColumnsResolvedByName(t *testing.T) {
	dir := t.TempDir()
	path := writeTrace(t, dir, "run_308K.csv",
		"abs,time_s\n1.20,0\n1.10,30\n1.01,60\n")

	run, err := newReader().ReadRun(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, run.Samples, 3)
	assert.Equal(t, 0.0, run.Samples[0].TimeS)
	assert.Equal(t, 1.20, run.Samples[0].Absorbance)
}

func TestReadRun_SkipsBlankAndRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := writeTrace(t, dir, "run_298K.csv",
		"time,abs\n0,1.20\n,\n30,1.10\n60\n90,1.01\n")

	run, err := newReader().ReadRun(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, run.Samples, 3)
	assert.Equal(t, 90.0, run.Samples[2].TimeS)
}

func TestReadRun_ReportsRowForBadNumber(t *testing.T) {
	dir := t.TempDir()
	path := writeTrace(t, dir, "run_298K.csv",
		"time,abs\n0,1.20\n30,oops\n")

	_, err := newReader().ReadRun(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "oops")
}

func TestReadRun_Rejections(t *testing.T) {
	dir := t.TempDir()
	reader := newReader()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"missing temperature", "trace.csv", "time,abs\n0,1.0\n10,0.9\n"},
		{"unsupported extension", "run_298K.txt", "time,abs\n0,1.0\n"},
		{"header only", "run_308K.csv", "time,abs\n"},
		{"non-monotonic time", "run_318K.csv", "time,abs\n0,1.0\n30,0.9\n30,0.8\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTrace(t, dir, tt.file, tt.content)
			_, err := reader.ReadRun(context.Background(), path)
			assert.Error(t, err)
		})
	}

	t.Run("file not found", func(t *testing.T) {
		_, err := reader.ReadRun(context.Background(), filepath.Join(dir, "run_400K.csv"))
		assert.Error(t, err)
	})
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTrace(t, dir, "run_308K.csv", "time,abs\n0,1.2\n30,1.1\n60,1.0\n")
	writeTrace(t, dir, "run_288K.csv", "time,abs\n0,1.2\n30,1.15\n60,1.1\n")
	writeTrace(t, dir, "notes.txt", "not a trace")
	writeTrace(t, dir, "no_temp.csv", "time,abs\n0,1.0\n10,0.9\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	runs, skipped, err := newReader().ScanDirectory(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, runs, 2)
	// Discovery order is lexicographic by filename
	assert.Equal(t, "run_288K.csv", runs[0].Metadata.Label)
	assert.Equal(t, "run_308K.csv", runs[1].Metadata.Label)
	assert.Equal(t, []string{"no_temp.csv"}, skipped)
}

func TestScanDirectory_MissingDir(t *testing.T) {
	_, _, err := newReader().ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
