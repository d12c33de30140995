package kinetics

import (
	"testing"

	"gokinetics/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaltTable_NormalizeIsInvertible(t *testing.T) {
	table := SaltTable{"Cl-": 1.0, "SO4--": 1.4, "ClO4-": 0.9}

	for anion := range table {
		kObs := 2.13e-7
		kInt, factor, known := table.Normalize(kObs, anion)
		assert.True(t, known)
		assert.Greater(t, factor, 0.0)
		// k_intrinsic * salt_factor == k_obs for all positive factors
		assert.InEpsilon(t, kObs, kInt*factor, 1e-12)
	}
}

func TestSaltTable_UnknownAnionDefaultsToUnity(t *testing.T) {
	table := SaltTable{"Cl-": 1.0}

	kInt, factor, known := table.Normalize(5.24e-7, "NO3-")
	assert.False(t, known)
	assert.Equal(t, 1.0, factor)
	assert.Equal(t, 5.24e-7, kInt)
}

func TestSaltTable_ValidateRejectsNonPositiveFactors(t *testing.T) {
	tests := []struct {
		name  string
		table SaltTable
		ok    bool
	}{
		{"valid table", SaltTable{"Cl-": 1.0, "SO4--": 1.4}, true},
		{"zero factor", SaltTable{"Cl-": 0}, false},
		{"negative factor", SaltTable{"ClO4-": -0.9}, false},
		{"empty table", SaltTable{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, core.IsInvalidConfig(err))
			}
		})
	}
}
