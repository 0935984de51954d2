package io

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"parcelcorr/internal/anal"
	"parcelcorr/internal/pipeline"
	"parcelcorr/internal/sim"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// WriteClassifications writes the per-unit results table, one row per
// contrast-parcel pair, failed units included with their failure reason in
// the status column.
func WriteClassifications(path string, results []pipeline.Result) error {
	header := []string{
		"contrast", "parcel", "status", "classification",
		"within_subject_similarity", "between_subject_similarity",
		"fingerprint_strength", "variability_score", "canonicality_score",
	}

	rows := make([][]string, 0, len(results))
	for i := range results {
		r := &results[i]
		if !r.OK() {
			rows = append(rows, []string{
				r.Contrast, r.Parcel, r.Err.Error(), "", "", "", "", "", "",
			})
			continue
		}
		rows = append(rows, []string{
			r.Contrast, r.Parcel, "ok", r.Class.String(),
			formatFloat(r.Within), formatFloat(r.Between),
			formatFloat(r.Scores.FingerprintStrength),
			formatFloat(r.Scores.VariabilityScore),
			formatFloat(r.Scores.CanonicalityScore),
		})
	}

	return writeCSV(path, header, rows)
}

// WriteAcrossConstruct writes the across-construct similarities, one row per
// (contrast, parcel, construct) with a value.
func WriteAcrossConstruct(path string, results []pipeline.Result) error {
	header := []string{"contrast", "parcel", "construct", "across_construct_similarity"}

	var rows [][]string
	for i := range results {
		r := &results[i]
		if len(r.Across) == 0 {
			continue
		}

		var constructs []string
		for name := range r.Across {
			constructs = append(constructs, name)
		}
		sort.Strings(constructs)

		for _, name := range constructs {
			rows = append(rows, []string{r.Contrast, r.Parcel, name, formatFloat(r.Across[name])})
		}
	}

	return writeCSV(path, header, rows)
}

// WriteSummary writes per-contrast classification counts and percentages,
// with an OVERALL row last.
func WriteSummary(path string, summaries []anal.Summary) error {
	header := []string{
		"contrast", "total_parcels",
		"canonical_count", "canonical_percentage",
		"indiv_fingerprint_count", "indiv_fingerprint_percentage",
		"variable_count", "variable_percentage",
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		row := []string{s.Contrast, strconv.Itoa(s.Total)}
		for _, class := range []sim.Class{sim.Canonical, sim.IndividualFingerprint, sim.Variable} {
			count := s.Counts[class]
			pct := 0.0
			if s.Total > 0 {
				pct = float64(count) / float64(s.Total) * 100
			}
			row = append(row, strconv.Itoa(count), formatFloat(pct))
		}
		rows = append(rows, row)
	}

	return writeCSV(path, header, rows)
}

// WriteConsistency writes per-parcel cross-contrast consistency summaries.
func WriteConsistency(path string, parcels []anal.ParcelConsistency) error {
	header := []string{
		"parcel", "n_contrasts", "most_common_classification", "consistency_score",
		"canonical_proportion", "indiv_fingerprint_proportion", "variable_proportion",
	}

	rows := make([][]string, 0, len(parcels))
	for _, p := range parcels {
		rows = append(rows, []string{
			p.Parcel,
			strconv.Itoa(p.Summary.NContrasts),
			p.Summary.MostCommon.String(),
			formatFloat(p.Summary.ConsistencyScore),
			formatFloat(p.Summary.Proportions[sim.Canonical]),
			formatFloat(p.Summary.Proportions[sim.IndividualFingerprint]),
			formatFloat(p.Summary.Proportions[sim.Variable]),
		})
	}

	return writeCSV(path, header, rows)
}

// WriteRanking writes one ranked list; scoreName labels the score column.
func WriteRanking(path, scoreName string, ranked []anal.Ranked) error {
	header := []string{"rank", "contrast", "parcel", scoreName, "classification"}

	rows := make([][]string, 0, len(ranked))
	for i, r := range ranked {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), r.Contrast, r.Parcel,
			formatFloat(r.Score), r.Class.String(),
		})
	}

	return writeCSV(path, header, rows)
}
