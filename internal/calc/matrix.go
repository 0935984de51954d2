// Package calc holds the numeric kernels of the pipeline: labeled Pearson
// correlation matrices and NaN-aware reductions over them.
package calc

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// ObservationKey identifies where a voxel vector came from. It labels matrix
// axes and is never used as computational content.
type ObservationKey struct {
	Subject  string
	Session  string
	Run      string
	Contrast string
}

// Matrix is a square, symmetric Pearson correlation matrix over a set of
// labeled voxel vectors. Diagonal cells are 1.0 by construction.
type Matrix struct {
	keys []ObservationKey
	m    *mat64.Dense
}

type statistic struct {
	avg float64
	std float64
}

// Build computes the pairwise Pearson correlation matrix for the given
// vectors. Axis order follows the order of keys. Vectors must all have the
// same length (>= 2), and at least two vectors are required. A zero-variance
// vector yields NaN cells against every partner; NaN is propagated, not
// substituted.
func Build(keys []ObservationKey, vectors [][]float64) (*Matrix, error) {
	n := len(vectors)
	if n < 2 {
		return nil, &InsufficientDataError{What: "observations", Need: 2, Got: n}
	}
	if len(keys) != n {
		return nil, &DimensionMismatchError{Expected: n, Actual: len(keys)}
	}

	cols := len(vectors[0])
	for _, v := range vectors {
		if len(v) != cols {
			return nil, &DimensionMismatchError{Expected: cols, Actual: len(v)}
		}
	}
	if cols < 2 {
		return nil, &InsufficientDataError{What: "voxels per vector", Need: 2, Got: cols}
	}

	stats := make([]statistic, n)
	for i, v := range vectors {
		var accVal float64
		var accSqrVal float64
		for _, value := range v {
			accVal += value
			accSqrVal += value * value
		}

		avgVal := accVal / float64(cols)
		avgSqrVal := accSqrVal / float64(cols)

		stats[i].avg = avgVal
		stats[i].std = math.Sqrt(avgSqrVal - (avgVal * avgVal))
	}

	out := mat64.NewDense(n, n, nil)
	for from := 0; from < n; from++ {
		out.Set(from, from, 1.0)

		for to := from + 1; to < n; to++ {
			var r float64
			if stats[from].std == 0 || stats[to].std == 0 {
				r = math.NaN()
			} else {
				var accProd float64
				for t := 0; t < cols; t++ {
					accProd += vectors[from][t] * vectors[to][t]
				}

				cov := (accProd / float64(cols)) - (stats[from].avg * stats[to].avg)
				r = cov / (stats[from].std * stats[to].std)
			}

			out.Set(from, to, r)
			out.Set(to, from, r)
		}
	}

	ks := make([]ObservationKey, n)
	copy(ks, keys)

	return &Matrix{keys: ks, m: out}, nil
}

// Dim returns the number of observations on each axis.
func (m *Matrix) Dim() int {
	return len(m.keys)
}

// At returns the correlation between observations i and j.
func (m *Matrix) At(i, j int) float64 {
	return m.m.At(i, j)
}

// Key returns the label of axis index i.
func (m *Matrix) Key(i int) ObservationKey {
	return m.keys[i]
}

// UpperTriangle returns all cells strictly above the diagonal in row order,
// n(n-1)/2 values. This is the only view the aggregators consume; matrix
// structure is discarded on purpose.
func (m *Matrix) UpperTriangle() []float64 {
	n := len(m.keys)
	tri := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			tri = append(tri, m.m.At(i, j))
		}
	}
	return tri
}

// NaNMean returns the mean of the defined values in xs. The second return is
// false when xs holds no defined value at all.
func NaNMean(xs []float64) (float64, bool) {
	var acc float64
	cnt := 0
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		acc += x
		cnt++
	}

	if cnt == 0 {
		return math.NaN(), false
	}
	return acc / float64(cnt), true
}
