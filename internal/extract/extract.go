// Package extract pulls per-parcel voxel vectors out of contrast-map volumes.
package extract

import (
	"log"
	"runtime"
	"sync"

	"github.com/KyungWonPark/nifti"

	"parcelcorr/internal/atlas"
	"parcelcorr/internal/calc"
	"parcelcorr/internal/dataset"
	"parcelcorr/internal/sim"
)

func calcKey(f dataset.File) calc.ObservationKey {
	return calc.ObservationKey{
		Subject:  f.Subject,
		Session:  f.Session,
		Run:      f.Run,
		Contrast: f.Contrast,
	}
}

type fileResult struct {
	file    dataset.File
	vectors map[string][]float64
}

// Extract reads every contrast volume and gathers, per contrast and parcel,
// the labeled voxel vectors the similarity engine consumes. Parcels whose
// mask has no voxels are skipped. Files are processed by a worker pool; the
// grouped result is merged by a single goroutine so observation order stays
// deterministic.
func Extract(byContrast map[string][]dataset.File, at *atlas.Atlas) map[string]map[string][]sim.Observation {
	var files []dataset.File
	for _, fs := range byContrast {
		files = append(files, fs...)
	}

	results := make([]fileResult, len(files))

	workers := runtime.NumCPU()
	order := make(chan int, workers)
	var wg sync.WaitGroup

	wg.Add(len(files))

	for i := 0; i < workers; i++ {
		go extractFile(files, at, results, order, &wg)
	}

	for i := range files {
		order <- i
	}

	wg.Wait()
	close(order)

	grouped := make(map[string]map[string][]sim.Observation, len(byContrast))
	for _, fr := range results {
		if fr.vectors == nil {
			continue
		}

		byParcel, ok := grouped[fr.file.Contrast]
		if !ok {
			byParcel = make(map[string][]sim.Observation)
			grouped[fr.file.Contrast] = byParcel
		}

		for _, parcel := range at.Labels() {
			voxels, ok := fr.vectors[parcel]
			if !ok {
				continue
			}
			byParcel[parcel] = append(byParcel[parcel], sim.Observation{
				Key:    calcKey(fr.file),
				Voxels: voxels,
			})
		}
	}

	return grouped
}

func extractFile(files []dataset.File, at *atlas.Atlas, results []fileResult, order <-chan int, wg *sync.WaitGroup) {
	for {
		index, ok := <-order
		if ok {
			f := files[index]

			var img nifti.Nifti1Image
			img.LoadImage(f.Path, true)

			vectors := make(map[string][]float64, len(at.Labels()))
			for _, parcel := range at.Labels() {
				mask := at.Mask(parcel)
				if len(mask) == 0 {
					continue
				}

				voxels := make([]float64, len(mask))
				for i, v := range mask {
					voxels[i] = float64(img.GetAt(v.X, v.Y, v.Z, 0))
				}
				vectors[parcel] = voxels
			}

			results[index] = fileResult{file: f, vectors: vectors}
			log.Printf("extracted %s", f.Path)

			wg.Done()
		} else {
			break
		}
	}
}
