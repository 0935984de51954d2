// Package pipeline fans the similarity engine out over contrast-parcel units
// and collects per-unit results, failures included.
package pipeline

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"parcelcorr/internal/sim"
)

// maxWorkers caps the pool size; larger pools only grow memory pressure.
const maxWorkers = 16

// Input maps contrast name -> parcel name -> observations, as produced by
// extraction.
type Input map[string]map[string][]sim.Observation

// Result holds everything computed for one contrast-parcel unit. Err is set
// when the unit failed; a failed unit never aborts the rest of the run.
type Result struct {
	Contrast string
	Parcel   string
	Within   float64
	Between  float64
	Across   map[string]float64
	Class    sim.Class
	Scores   sim.Scores
	Err      error
}

// OK reports whether the unit was fully classified.
func (r *Result) OK() bool {
	return r.Err == nil
}

// DefaultWorkers returns the default pool size.
func DefaultWorkers() int {
	w := runtime.NumCPU()
	if w > maxWorkers {
		w = maxWorkers
	}
	return w
}

type unit struct {
	contrast string
	parcel   string
}

func sortedUnits(in Input) []unit {
	var units []unit
	for contrast, parcels := range in {
		for parcel := range parcels {
			units = append(units, unit{contrast: contrast, parcel: parcel})
		}
	}
	sort.Slice(units, func(i, j int) bool {
		if units[i].contrast != units[j].contrast {
			return units[i].contrast < units[j].contrast
		}
		return units[i].parcel < units[j].parcel
	})
	return units
}

// Run evaluates every contrast-parcel unit concurrently and returns results
// sorted by contrast then parcel, independent of completion order. constructs
// maps construct name -> contrast names; when nil the across-construct stage
// is skipped for the whole run. workers <= 0 selects DefaultWorkers.
func Run(ctx context.Context, in Input, constructs map[string][]string, workers int) []Result {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	units := sortedUnits(in)
	results := make([]Result, len(units))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, u := range units {
		if err := ctx.Err(); err != nil {
			// Units never submitted still get a row, marked failed, so
			// downstream reports cannot mistake them for classified units.
			for j := i; j < len(units); j++ {
				results[j] = Result{Contrast: units[j].contrast, Parcel: units[j].parcel, Err: err}
			}
			break
		}

		i, u := i, u
		g.Go(func() error {
			results[i] = evalUnit(u, in[u.contrast][u.parcel])
			return nil
		})
	}
	_ = g.Wait()

	if constructs != nil {
		acrossConstructs(ctx, in, constructs, workers, results)
	}

	return results
}

func evalUnit(u unit, obs []sim.Observation) Result {
	r := Result{Contrast: u.contrast, Parcel: u.parcel}

	within, err := sim.WithinSubject(obs)
	if err != nil {
		r.Err = err
		return r
	}
	between, err := sim.BetweenSubject(obs)
	if err != nil {
		r.Err = err
		return r
	}

	r.Within = within
	r.Between = between

	class, err := sim.Classify(within, between)
	if err != nil {
		r.Err = err
		return r
	}

	r.Class = class
	r.Scores = sim.Score(within, between)
	return r
}

type acrossUnit struct {
	construct string
	parcel    string
	contrasts []string
}

type acrossValue struct {
	construct string
	parcel    string
	value     float64
	ok        bool
}

// acrossConstructs computes one similarity per (construct, parcel) and
// attaches it to every result row whose contrast belongs to that construct.
func acrossConstructs(ctx context.Context, in Input, constructs map[string][]string, workers int, results []Result) {
	parcels := make(map[string]struct{})
	for _, byParcel := range in {
		for parcel := range byParcel {
			parcels[parcel] = struct{}{}
		}
	}

	var names []string
	for name := range constructs {
		names = append(names, name)
	}
	sort.Strings(names)

	var units []acrossUnit
	for _, name := range names {
		for parcel := range parcels {
			units = append(units, acrossUnit{construct: name, parcel: parcel, contrasts: constructs[name]})
		}
	}

	values := make([]acrossValue, len(units))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, u := range units {
		if ctx.Err() != nil {
			break
		}

		i, u := i, u
		g.Go(func() error {
			pools := make(map[string][]float64)
			for _, contrast := range u.contrasts {
				byParcel, ok := in[contrast]
				if !ok {
					continue
				}
				obs, ok := byParcel[u.parcel]
				if !ok {
					continue
				}
				pools[contrast] = sim.PoolContrast(obs)
			}

			value, err := sim.AcrossConstruct(u.contrasts, pools)
			values[i] = acrossValue{construct: u.construct, parcel: u.parcel, value: value, ok: err == nil}
			return nil
		})
	}
	_ = g.Wait()

	// Single-goroutine merge into the result rows.
	index := make(map[unit]*Result, len(results))
	for i := range results {
		index[unit{contrast: results[i].Contrast, parcel: results[i].Parcel}] = &results[i]
	}

	for _, v := range values {
		if !v.ok {
			continue
		}
		for _, contrast := range constructs[v.construct] {
			r, ok := index[unit{contrast: contrast, parcel: v.parcel}]
			if !ok {
				continue
			}
			if r.Across == nil {
				r.Across = make(map[string]float64)
			}
			r.Across[v.construct] = v.value
		}
	}
}
