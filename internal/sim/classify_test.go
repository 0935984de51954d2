package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySequentialRules(t *testing.T) {
	tests := []struct {
		name    string
		within  float64
		between float64
		want    Class
	}{
		// Rule 1 fires before rule 2 is checked.
		{"low sum is variable", 0.05, 0.04, Variable},
		// Rule 2 keeps the literal strict-less-than: small difference
		// maps to fingerprint.
		{"small difference is fingerprint", 0.5, 0.45, IndividualFingerprint},
		{"large difference is canonical", 0.6, 0.2, Canonical},
		{"sum exactly at threshold is not variable", 0.05, 0.05, IndividualFingerprint},
		{"difference exactly at threshold is canonical", 0.2, 0.1, Canonical},
		{"negative scores are variable", -0.2, 0.1, Variable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.within, tt.between)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyTotality(t *testing.T) {
	for w := -1.0; w <= 1.0; w += 0.25 {
		for b := -1.0; b <= 1.0; b += 0.25 {
			got, err := Classify(w, b)
			require.NoError(t, err)
			assert.Contains(t, []Class{Variable, IndividualFingerprint, Canonical}, got)
		}
	}
}

func TestClassifyUndefinedInput(t *testing.T) {
	for _, pair := range [][2]float64{
		{math.NaN(), 0.5},
		{0.5, math.NaN()},
		{math.NaN(), math.NaN()},
	} {
		_, err := Classify(pair[0], pair[1])
		var undefined *UndefinedInputError
		require.ErrorAs(t, err, &undefined)
	}
}

func TestScore(t *testing.T) {
	s := Score(0.6, 0.2)
	assert.InDelta(t, 0.4, s.FingerprintStrength, 1e-12)
	assert.InDelta(t, 0.8, s.VariabilityScore, 1e-12)
	assert.InDelta(t, 0.2, s.CanonicalityScore, 1e-12)

	// Between above within: canonicality is penalized by the same gap.
	s = Score(0.2, 0.6)
	assert.InDelta(t, -0.4, s.FingerprintStrength, 1e-12)
	assert.InDelta(t, -0.2, s.CanonicalityScore, 1e-12)
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "variable", Variable.String())
	assert.Equal(t, "indiv_fingerprint", IndividualFingerprint.String())
	assert.Equal(t, "canonical", Canonical.String())
}
