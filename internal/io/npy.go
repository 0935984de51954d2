// Package io persists analysis outputs: npy matrix snapshots and CSV
// reports.
package io

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kshedden/gonpy"

	"parcelcorr/internal/calc"
)

// SaveMatrix writes one pooled correlation matrix to
// <dir>/<contrast>__<parcel>.npy, with the axis keys in a JSON file next to
// it. Axis order in the index matches matrix row order.
func SaveMatrix(dir, contrast, parcel string, m *calc.Matrix) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create matrix dir: %w", err)
	}

	base := sanitize(contrast) + "__" + sanitize(parcel)
	npyPath := filepath.Join(dir, base+".npy")

	n := m.Dim()
	data := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data = append(data, m.At(i, j))
		}
	}

	w, err := gonpy.NewFileWriter(npyPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", npyPath, err)
	}
	w.Shape = []int{n, n}
	w.Version = 2
	if err := w.WriteFloat64(data); err != nil {
		return fmt.Errorf("write %s: %w", npyPath, err)
	}

	keys := make([]calc.ObservationKey, n)
	for i := 0; i < n; i++ {
		keys[i] = m.Key(i)
	}
	index, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return err
	}

	jsonPath := filepath.Join(dir, base+".json")
	if err := os.WriteFile(jsonPath, index, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}
	return nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ':
			return '-'
		default:
			return r
		}
	}, name)
}
