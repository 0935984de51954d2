// Package anal aggregates per-contrast classifications into parcel-level
// summaries, rankings, and cross-contrast consistency scores.
package anal

import (
	"fmt"

	"parcelcorr/internal/sim"
)

// tieOrder resolves equal counts when picking the most common class. Canonical
// is favored as the conservative classification, mirroring the classifier's
// own fallback ordering.
var tieOrder = []sim.Class{sim.Canonical, sim.IndividualFingerprint, sim.Variable}

// ConsistencySummary describes how consistently one parcel was classified
// across the contrasts it appears in. Only contrasts where classification
// succeeded count toward the denominator.
type ConsistencySummary struct {
	Counts           map[sim.Class]int
	Proportions      map[sim.Class]float64
	MostCommon       sim.Class
	ConsistencyScore float64
	NContrasts       int
}

// EmptyInputError indicates a consistency summary over zero successful
// classifications.
type EmptyInputError struct {
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: no %s", e.What)
}

// Summarize reduces one parcel's per-contrast classes to a consistency
// summary. The result is invariant to input ordering.
func Summarize(classes []sim.Class) (ConsistencySummary, error) {
	if len(classes) == 0 {
		return ConsistencySummary{}, &EmptyInputError{What: "classifications"}
	}

	counts := make(map[sim.Class]int)
	for _, c := range classes {
		counts[c]++
	}

	total := len(classes)
	proportions := make(map[sim.Class]float64, len(counts))
	for c, cnt := range counts {
		proportions[c] = float64(cnt) / float64(total)
	}

	mostCommon := tieOrder[0]
	best := -1
	for _, c := range tieOrder {
		if counts[c] > best {
			best = counts[c]
			mostCommon = c
		}
	}

	return ConsistencySummary{
		Counts:           counts,
		Proportions:      proportions,
		MostCommon:       mostCommon,
		ConsistencyScore: float64(best) / float64(total),
		NContrasts:       total,
	}, nil
}
