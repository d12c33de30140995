package ingest

import (
	"strings"
)

// columnRoles maps heterogeneous header spellings onto the two roles the
// core cares about. Matching is substring-based: "Time (s)", "time_s" and
// "Elapsed Time" all resolve to the time column; "Absorbance", "Abs" and
// "abs_au" to the absorbance column.
type columnRoles struct {
	timeIdx       int
	absorbanceIdx int
	positional    bool // true when name matching failed and positions were assumed
}

// resolveColumns identifies the time and absorbance columns from a header
// row. When neither name matches and the file has at least two columns, it
// falls back to column 0 = time, column 1 = absorbance, flagging the guess
// so the reader can log a warning.
func resolveColumns(headers []string) (columnRoles, bool) {
	roles := columnRoles{timeIdx: -1, absorbanceIdx: -1}
	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case roles.timeIdx < 0 && strings.Contains(lower, "time"):
			roles.timeIdx = i
		case roles.absorbanceIdx < 0 && strings.Contains(lower, "abs"):
			roles.absorbanceIdx = i
		}
	}

	if roles.timeIdx >= 0 && roles.absorbanceIdx >= 0 {
		return roles, true
	}
	if len(headers) >= 2 {
		return columnRoles{timeIdx: 0, absorbanceIdx: 1, positional: true}, true
	}
	return roles, false
}
