package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcelcorr/internal/calc"
)

func obs(subject, session string, voxels ...float64) Observation {
	return Observation{
		Key:    calc.ObservationKey{Subject: subject, Session: session, Contrast: "task-A_contrast-x"},
		Voxels: voxels,
	}
}

func TestWithinSubject(t *testing.T) {
	// sub-a sessions correlate perfectly; sub-b sessions correlate at 0.5.
	within, err := WithinSubject([]Observation{
		obs("sub-a", "ses-1", 1, 2, 3),
		obs("sub-a", "ses-2", 2, 4, 6),
		obs("sub-b", "ses-1", 1, 2, 3),
		obs("sub-b", "ses-2", 1, 3, 2),
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, within, 1e-12)
}

func TestWithinSubjectSingleSessionExcluded(t *testing.T) {
	within, err := WithinSubject([]Observation{
		obs("sub-a", "ses-1", 1, 2, 3),
		obs("sub-a", "ses-2", 2, 4, 6),
		obs("sub-b", "ses-1", 9, 1, 4), // one session: contributes nothing
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, within, 1e-12)
}

func TestWithinSubjectAllSingleSessions(t *testing.T) {
	_, err := WithinSubject([]Observation{
		obs("sub-a", "ses-1", 1, 2, 3),
		obs("sub-b", "ses-1", 3, 2, 1),
	})
	var insufficient *calc.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestWithinSubjectNaNSubjectExcluded(t *testing.T) {
	// sub-c's constant session makes its only correlation NaN, so the
	// subject drops out instead of contributing zero.
	within, err := WithinSubject([]Observation{
		obs("sub-a", "ses-1", 1, 2, 3),
		obs("sub-a", "ses-2", 2, 4, 6),
		obs("sub-c", "ses-1", 5, 5, 5),
		obs("sub-c", "ses-2", 1, 2, 3),
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, within, 1e-12)
}

func TestBetweenSubjectUsesOnlyCrossSubjectCells(t *testing.T) {
	// Same-subject pairs correlate at +1, cross-subject pairs at -1. The
	// full 6-cell upper triangle would average -1/3; the 4 cross-subject
	// cells average exactly -1.
	between, err := BetweenSubject([]Observation{
		obs("sub-a", "ses-1", 1, 2, 3),
		obs("sub-a", "ses-2", 2, 4, 6),
		obs("sub-b", "ses-1", 3, 2, 1),
		obs("sub-b", "ses-2", 6, 4, 2),
	})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, between, 1e-12)
}

func TestBetweenSubjectNeedsTwoSubjects(t *testing.T) {
	_, err := BetweenSubject([]Observation{
		obs("sub-a", "ses-1", 1, 2, 3),
		obs("sub-a", "ses-2", 2, 4, 6),
	})
	var insufficient *calc.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Need)
	assert.Equal(t, 1, insufficient.Got)
}

func TestBetweenSubjectAllNaNCrossCells(t *testing.T) {
	_, err := BetweenSubject([]Observation{
		obs("sub-a", "ses-1", 5, 5, 5),
		obs("sub-b", "ses-1", 1, 2, 3),
	})
	var insufficient *calc.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestAcrossConstruct(t *testing.T) {
	pools := map[string][]float64{
		"task-A_contrast-x": {1, 2, 3, 4},
		"task-B_contrast-y": {2, 4, 6, 8},
	}

	across, err := AcrossConstruct([]string{"task-A_contrast-x", "task-B_contrast-y"}, pools)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, across, 1e-12)
}

func TestAcrossConstructMissingContrastsSkipped(t *testing.T) {
	pools := map[string][]float64{
		"task-A_contrast-x": {1, 2, 3, 4},
	}

	_, err := AcrossConstruct([]string{"task-A_contrast-x", "task-B_contrast-y"}, pools)
	var insufficient *calc.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestPoolContrastOrder(t *testing.T) {
	pooled := PoolContrast([]Observation{
		obs("sub-b", "ses-1", 5, 6),
		obs("sub-a", "ses-2", 3, 4),
		obs("sub-a", "ses-1", 1, 2),
	})
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, pooled)
}

func TestPooledMatrixKeepsKeyOrder(t *testing.T) {
	m, err := PooledMatrix([]Observation{
		obs("sub-b", "ses-1", 3, 2, 1),
		obs("sub-a", "ses-1", 1, 2, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-a", m.Key(0).Subject)
	assert.Equal(t, "sub-b", m.Key(1).Subject)
}
