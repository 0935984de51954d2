// Package atlas loads a parcellation atlas from a local NIfTI segmentation
// volume plus its tab-separated label table, and exposes per-parcel voxel
// masks.
package atlas

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/KyungWonPark/nifti"
)

// Voxel represents one voxel coordinate in atlas space.
type Voxel struct {
	X uint32
	Y uint32
	Z uint32
}

// Atlas is a labeled parcellation volume. Label value i in the volume maps to
// Labels[i-1].
type Atlas struct {
	labels []string
	masks  map[string][]Voxel
	nx     int
	ny     int
	nz     int
}

// Load reads the atlas volume and label table from disk and builds the
// per-parcel masks. Mask voxel order is fixed (z, then y, then x) so that
// every extraction over the same atlas yields vectors in the same order.
func Load(volumePath, labelsPath string) (*Atlas, error) {
	labels, err := readLabels(labelsPath)
	if err != nil {
		return nil, err
	}

	var header nifti.Nifti1Header
	header.LoadHeader(volumePath)

	var img nifti.Nifti1Image
	img.LoadImage(volumePath, true)

	a := &Atlas{
		labels: labels,
		masks:  make(map[string][]Voxel, len(labels)),
		nx:     int(header.Dim[1]),
		ny:     int(header.Dim[2]),
		nz:     int(header.Dim[3]),
	}

	for z := 0; z < a.nz; z++ {
		for y := 0; y < a.ny; y++ {
			for x := 0; x < a.nx; x++ {
				value := img.GetAt(uint32(x), uint32(y), uint32(z), 0)
				label := int(value + 0.5)
				if label < 1 || label > len(labels) {
					continue
				}

				name := labels[label-1]
				a.masks[name] = append(a.masks[name], Voxel{X: uint32(x), Y: uint32(y), Z: uint32(z)})
			}
		}
	}

	return a, nil
}

// Labels returns the parcel names in atlas label order.
func (a *Atlas) Labels() []string {
	return a.labels
}

// Mask returns the voxel coordinates of one parcel. Parcels with no voxels in
// the volume return nil.
func (a *Atlas) Mask(name string) []Voxel {
	return a.masks[name]
}

// Dims returns the volume dimensions.
func (a *Atlas) Dims() (nx, ny, nz int) {
	return a.nx, a.ny, a.nz
}

// readLabels parses the tab-separated label table and returns the "name"
// column in row order.
func readLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open label table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse label table: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("label table %s has no rows", path)
	}

	nameCol := -1
	for i, col := range records[0] {
		if col == "name" {
			nameCol = i
			break
		}
	}
	if nameCol == -1 {
		return nil, fmt.Errorf("label table %s has no name column", path)
	}

	labels := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		labels = append(labels, row[nameCol])
	}
	return labels, nil
}
