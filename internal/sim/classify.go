package sim

import (
	"fmt"
	"math"
)

// Class is the behavioral category of a parcel-contrast pair.
type Class int

const (
	// Variable marks parcels with low overall similarity.
	Variable Class = iota
	// IndividualFingerprint marks parcels whose activation is
	// subject-specific.
	IndividualFingerprint
	// Canonical marks parcels with consistent activation across subjects.
	Canonical
)

func (c Class) String() string {
	switch c {
	case Variable:
		return "variable"
	case IndividualFingerprint:
		return "indiv_fingerprint"
	case Canonical:
		return "canonical"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// ClassifyThreshold is the cut-off used by both classification rules.
const ClassifyThreshold = 0.1

// Classify assigns a class from a (within, between) score pair. The rules are
// evaluated in order, first match wins:
//
//	1. within+between < 0.1  -> Variable
//	2. within-between < 0.1  -> IndividualFingerprint
//	3. otherwise             -> Canonical
//
// Rule 2 keeps the literal strict-less-than comparison of the reference
// analysis even though the narrative reading of "fingerprint" is the
// opposite; the comparison hangs off ClassifyThreshold so a future correction
// is a one-line change. NaN input is an error, never a default label.
func Classify(within, between float64) (Class, error) {
	if math.IsNaN(within) || math.IsNaN(between) {
		return 0, &UndefinedInputError{Within: within, Between: between}
	}

	if within+between < ClassifyThreshold {
		return Variable, nil
	}
	if within-between < ClassifyThreshold {
		return IndividualFingerprint, nil
	}
	return Canonical, nil
}

// Scores are the derived ranking scores of a parcel-contrast pair.
type Scores struct {
	FingerprintStrength float64
	VariabilityScore    float64
	CanonicalityScore   float64
}

// Score derives the ranking scores from a (within, between) pair. It is
// computed independently of which classification rule fired.
func Score(within, between float64) Scores {
	return Scores{
		FingerprintStrength: within - between,
		VariabilityScore:    within + between,
		CanonicalityScore:   within - math.Abs(within-between),
	}
}

// UndefinedInputError indicates classification was attempted on a missing or
// NaN score.
type UndefinedInputError struct {
	Within  float64
	Between float64
}

func (e *UndefinedInputError) Error() string {
	return fmt.Sprintf("undefined classification input: within=%v between=%v", e.Within, e.Between)
}
