// Package sim reduces per-parcel voxel vectors to scalar similarity scores
// and classifies each parcel-contrast pair from its (within, between) scores.
package sim

import (
	"sort"

	"parcelcorr/internal/calc"
)

// Observation is one labeled voxel vector for a single parcel.
type Observation struct {
	Key    calc.ObservationKey
	Voxels []float64
}

// SortObservations orders observations by subject, session, then run so that
// pooled computations are independent of map iteration order.
func SortObservations(obs []Observation) {
	sort.Slice(obs, func(i, j int) bool {
		a, b := obs[i].Key, obs[j].Key
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Session != b.Session {
			return a.Session < b.Session
		}
		return a.Run < b.Run
	})
}

// WithinSubject computes the within-subject similarity for one parcel-contrast:
// the unweighted mean over subjects of each subject's mean upper-triangle
// correlation across its sessions. Subjects with fewer than two sessions, or
// whose triangle holds no defined value, contribute nothing. With no
// contributing subject the score is undefined.
func WithinSubject(obs []Observation) (float64, error) {
	bySubject := make(map[string][]Observation)
	var subjects []string
	for _, o := range obs {
		if _, ok := bySubject[o.Key.Subject]; !ok {
			subjects = append(subjects, o.Key.Subject)
		}
		bySubject[o.Key.Subject] = append(bySubject[o.Key.Subject], o)
	}
	sort.Strings(subjects)

	var subjectMeans []float64
	for _, subject := range subjects {
		sessions := bySubject[subject]
		if len(sessions) < 2 {
			continue
		}

		SortObservations(sessions)
		keys := make([]calc.ObservationKey, len(sessions))
		vectors := make([][]float64, len(sessions))
		for i, s := range sessions {
			keys[i] = s.Key
			vectors[i] = s.Voxels
		}

		m, err := calc.Build(keys, vectors)
		if err != nil {
			return 0, err
		}

		mean, ok := calc.NaNMean(m.UpperTriangle())
		if !ok {
			continue
		}
		subjectMeans = append(subjectMeans, mean)
	}

	if len(subjectMeans) == 0 {
		return 0, &calc.InsufficientDataError{What: "subjects with correlated sessions", Need: 1, Got: 0}
	}

	var acc float64
	for _, v := range subjectMeans {
		acc += v
	}
	return acc / float64(len(subjectMeans)), nil
}

// BetweenSubject computes the between-subject similarity for one
// parcel-contrast: the NaN-ignoring mean over upper-triangle cells of the
// pooled correlation matrix whose endpoints belong to different subjects.
// Same-subject cells belong to the within-subject computation and are
// excluded here. With fewer than two distinct subjects the score is
// undefined and reported as such, never silently dropped.
func BetweenSubject(obs []Observation) (float64, error) {
	distinct := make(map[string]struct{})
	for _, o := range obs {
		distinct[o.Key.Subject] = struct{}{}
	}
	if len(distinct) < 2 {
		return 0, &calc.InsufficientDataError{What: "distinct subjects", Need: 2, Got: len(distinct)}
	}

	m, err := PooledMatrix(obs)
	if err != nil {
		return 0, err
	}

	var cross []float64
	n := m.Dim()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if m.Key(i).Subject == m.Key(j).Subject {
				continue
			}
			cross = append(cross, m.At(i, j))
		}
	}

	mean, ok := calc.NaNMean(cross)
	if !ok {
		return 0, &calc.InsufficientDataError{What: "defined cross-subject correlations", Need: 1, Got: 0}
	}
	return mean, nil
}

// AcrossConstruct computes the across-construct similarity for one parcel:
// one pooled voxel vector per contrast of the construct, one correlation
// matrix over those, mean of the full upper triangle. Cross-contrast pairs
// are the unit of interest, so no subject filtering applies. Contrasts absent
// from pools are skipped; fewer than two present contrasts leaves the score
// undefined.
func AcrossConstruct(contrasts []string, pools map[string][]float64) (float64, error) {
	var keys []calc.ObservationKey
	var vectors [][]float64
	for _, contrast := range contrasts {
		v, ok := pools[contrast]
		if !ok || len(v) == 0 {
			continue
		}
		keys = append(keys, calc.ObservationKey{Contrast: contrast})
		vectors = append(vectors, v)
	}

	if len(vectors) < 2 {
		return 0, &calc.InsufficientDataError{What: "contrasts in construct", Need: 2, Got: len(vectors)}
	}

	m, err := calc.Build(keys, vectors)
	if err != nil {
		return 0, err
	}

	mean, ok := calc.NaNMean(m.UpperTriangle())
	if !ok {
		return 0, &calc.InsufficientDataError{What: "defined cross-contrast correlations", Need: 1, Got: 0}
	}
	return mean, nil
}

// PooledMatrix builds the correlation matrix over all observations of one
// contrast-parcel, in subject/session/run order.
func PooledMatrix(obs []Observation) (*calc.Matrix, error) {
	pooled := make([]Observation, len(obs))
	copy(pooled, obs)
	SortObservations(pooled)

	keys := make([]calc.ObservationKey, len(pooled))
	vectors := make([][]float64, len(pooled))
	for i, o := range pooled {
		keys[i] = o.Key
		vectors[i] = o.Voxels
	}

	return calc.Build(keys, vectors)
}

// PoolContrast concatenates all observation vectors of one contrast-parcel
// into a single vector, in subject/session/run order.
func PoolContrast(obs []Observation) []float64 {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	SortObservations(sorted)

	var pooled []float64
	for _, o := range sorted {
		pooled = append(pooled, o.Voxels...)
	}
	return pooled
}
