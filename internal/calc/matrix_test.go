package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysFor(n int) []ObservationKey {
	keys := make([]ObservationKey, n)
	for i := range keys {
		keys[i] = ObservationKey{Subject: "sub", Session: string(rune('a' + i))}
	}
	return keys
}

func TestBuildPearson(t *testing.T) {
	vectors := [][]float64{
		{1, 2, 3},
		{2, 4, 6},
		{3, 2, 1},
	}

	m, err := Build(keysFor(3), vectors)
	require.NoError(t, err)
	require.Equal(t, 3, m.Dim())

	assert.InDelta(t, 1.0, m.At(0, 1), 1e-12)
	assert.InDelta(t, -1.0, m.At(0, 2), 1e-12)
	assert.InDelta(t, -1.0, m.At(1, 2), 1e-12)
}

func TestBuildDiagonalIsExactlyOne(t *testing.T) {
	vectors := [][]float64{
		{1, 2, 3},
		{5, 5, 5}, // zero variance: off-diagonal NaN, diagonal still 1
	}

	m, err := Build(keysFor(2), vectors)
	require.NoError(t, err)

	for i := 0; i < m.Dim(); i++ {
		assert.Equal(t, 1.0, m.At(i, i))
	}
}

func TestBuildSymmetry(t *testing.T) {
	vectors := [][]float64{
		{1.5, 2.2, -3.1, 0.4},
		{0.9, -1.1, 2.8, 3.3},
		{2.0, 2.0, 1.0, -1.0},
		{-0.5, 1.7, 0.2, 0.8},
	}

	m, err := Build(keysFor(4), vectors)
	require.NoError(t, err)

	for i := 0; i < m.Dim(); i++ {
		for j := 0; j < m.Dim(); j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i))
		}
	}
}

func TestBuildDegenerateVectorYieldsNaN(t *testing.T) {
	vectors := [][]float64{
		{5, 5, 5},
		{1, 2, 3},
	}

	m, err := Build(keysFor(2), vectors)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(m.At(0, 1)))
	assert.True(t, math.IsNaN(m.At(1, 0)))
}

func TestBuildErrors(t *testing.T) {
	t.Run("fewer than two observations", func(t *testing.T) {
		_, err := Build(keysFor(1), [][]float64{{1, 2, 3}})
		var insufficient *InsufficientDataError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 2, insufficient.Need)
		assert.Equal(t, 1, insufficient.Got)
	})

	t.Run("unequal vector lengths", func(t *testing.T) {
		_, err := Build(keysFor(2), [][]float64{{1, 2, 3}, {1, 2}})
		var mismatch *DimensionMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 3, mismatch.Expected)
		assert.Equal(t, 2, mismatch.Actual)
	})

	t.Run("scalar vectors", func(t *testing.T) {
		_, err := Build(keysFor(2), [][]float64{{1}, {2}})
		var insufficient *InsufficientDataError
		require.ErrorAs(t, err, &insufficient)
	})
}

func TestUpperTriangleSize(t *testing.T) {
	for _, n := range []int{2, 3, 5, 8} {
		vectors := make([][]float64, n)
		for i := range vectors {
			vectors[i] = []float64{float64(i), float64(i * i), float64(i + 7), 1}
		}

		m, err := Build(keysFor(n), vectors)
		require.NoError(t, err)
		assert.Len(t, m.UpperTriangle(), n*(n-1)/2)
	}
}

func TestNaNMean(t *testing.T) {
	mean, ok := NaNMean([]float64{1, math.NaN(), 3})
	require.True(t, ok)
	assert.InDelta(t, 2.0, mean, 1e-12)

	_, ok = NaNMean([]float64{math.NaN(), math.NaN()})
	assert.False(t, ok)

	_, ok = NaNMean(nil)
	assert.False(t, ok)
}
