package ingest

import (
	"fmt"
	"regexp"
	"strconv"
)

// temperaturePattern matches the trace filename convention, e.g.
// "run_298K.csv" or "stress_308.5K.xlsx"
var temperaturePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)K`)

// TemperatureFromFilename extracts the run temperature in Kelvin from a
// trace filename. Temperature association is resolved here, before the core
// ever sees the run; the core takes Kelvin as a pre-resolved numeric field.
func TemperatureFromFilename(name string) (float64, error) {
	match := temperaturePattern.FindStringSubmatch(name)
	if match == nil {
		return 0, fmt.Errorf("no temperature found in filename %q (expected e.g. run_298K.csv)", name)
	}
	t, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable temperature in filename %q: %w", name, err)
	}
	if t <= 0 {
		return 0, fmt.Errorf("non-physical temperature %gK in filename %q", t, name)
	}
	return t, nil
}
