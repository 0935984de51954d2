package anal

import (
	"sort"

	"parcelcorr/internal/pipeline"
	"parcelcorr/internal/sim"
)

// Summary counts classes for one contrast.
type Summary struct {
	Contrast string
	Total    int
	Counts   map[sim.Class]int
}

// ClassificationSummary tallies classes per contrast over the successful
// result rows, plus an OVERALL row across all contrasts.
func ClassificationSummary(results []pipeline.Result) []Summary {
	byContrast := make(map[string]*Summary)
	overall := &Summary{Contrast: "OVERALL", Counts: make(map[sim.Class]int)}

	var order []string
	for i := range results {
		r := &results[i]
		if !r.OK() {
			continue
		}

		s, ok := byContrast[r.Contrast]
		if !ok {
			s = &Summary{Contrast: r.Contrast, Counts: make(map[sim.Class]int)}
			byContrast[r.Contrast] = s
			order = append(order, r.Contrast)
		}
		s.Counts[r.Class]++
		s.Total++
		overall.Counts[r.Class]++
		overall.Total++
	}

	sort.Strings(order)
	out := make([]Summary, 0, len(order)+1)
	for _, contrast := range order {
		out = append(out, *byContrast[contrast])
	}
	out = append(out, *overall)
	return out
}

// Ranked is one entry of a ranking over contrast-parcel pairs.
type Ranked struct {
	Contrast string
	Parcel   string
	Score    float64
	Class    sim.Class
}

func rank(results []pipeline.Result, score func(sim.Scores) float64, less func(a, b Ranked) bool) []Ranked {
	var ranked []Ranked
	for i := range results {
		r := &results[i]
		if !r.OK() {
			continue
		}
		ranked = append(ranked, Ranked{
			Contrast: r.Contrast,
			Parcel:   r.Parcel,
			Score:    score(r.Scores),
			Class:    r.Class,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
	return ranked
}

// RankByFingerprint ranks pairs by fingerprint strength, strongest first.
func RankByFingerprint(results []pipeline.Result) []Ranked {
	return rank(results,
		func(s sim.Scores) float64 { return s.FingerprintStrength },
		func(a, b Ranked) bool { return a.Score > b.Score })
}

// RankByVariability ranks pairs by variability score, most variable (lowest
// within+between) first.
func RankByVariability(results []pipeline.Result) []Ranked {
	return rank(results,
		func(s sim.Scores) float64 { return s.VariabilityScore },
		func(a, b Ranked) bool { return a.Score < b.Score })
}

// RankByCanonicality ranks pairs by canonicality score, most canonical first.
func RankByCanonicality(results []pipeline.Result) []Ranked {
	return rank(results,
		func(s sim.Scores) float64 { return s.CanonicalityScore },
		func(a, b Ranked) bool { return a.Score > b.Score })
}

// ParcelConsistency holds one parcel's cross-contrast consistency summary.
type ParcelConsistency struct {
	Parcel  string
	Summary ConsistencySummary
}

// CrossContrastConsistency summarizes every parcel's classifications across
// contrasts, sorted by parcel name. Parcels with zero successful
// classifications are omitted rather than reported as empty summaries.
func CrossContrastConsistency(results []pipeline.Result) []ParcelConsistency {
	byParcel := make(map[string][]sim.Class)
	for i := range results {
		r := &results[i]
		if !r.OK() {
			continue
		}
		byParcel[r.Parcel] = append(byParcel[r.Parcel], r.Class)
	}

	var parcels []string
	for parcel := range byParcel {
		parcels = append(parcels, parcel)
	}
	sort.Strings(parcels)

	out := make([]ParcelConsistency, 0, len(parcels))
	for _, parcel := range parcels {
		summary, err := Summarize(byParcel[parcel])
		if err != nil {
			continue
		}
		out = append(out, ParcelConsistency{Parcel: parcel, Summary: summary})
	}
	return out
}
