// Package cluster groups dense regions of a density field into labeled
// star-forming clusters.
//
// The segmenter is an approximate single-pass region grower. It scans
// candidate voxels (density at or above a cutoff) in a fixed order with a
// coarse stride. Around each scanned candidate it inspects a cubic window:
// when the window already holds labeled voxels, every unlabeled candidate in
// the window adopts a label drawn uniformly from those voxels; otherwise every
// candidate in the window receives a fresh label.
//
// Two candidates of the same physical region can end up with different
// labels when no scanned window spans both. Labels are never overwritten, so
// the label space is dense: 1..n in order of first assignment.
package cluster

import (
	"github.com/matzehuels/starscape/pkg/grid"
	"github.com/matzehuels/starscape/pkg/rng"
	"github.com/matzehuels/starscape/pkg/stellar"
)

// Defaults for the scan.
var (
	DefaultRadius = 9
	DefaultStride = grid.Dims{1, 9, 9}
)

// DefaultCutoff is the density at or above which a voxel is a candidate.
const DefaultCutoff = 0.7

// Params configures a segmentation run.
type Params struct {
	// Cutoff is the candidate threshold. Zero makes every voxel a candidate.
	Cutoff float64
	// Radius is the half-width of the window around each scanned candidate
	// (default 9).
	Radius int
	// Stride is the scan step per axis (default {1, 9, 9}).
	Stride grid.Dims
	// Progress, if set, is called after each scanned slice along axis 0.
	Progress func(done, total int)
}

func (p *Params) setDefaults() {
	if p.Radius <= 0 {
		p.Radius = DefaultRadius
	}
	for axis := range p.Stride {
		if p.Stride[axis] <= 0 {
			p.Stride[axis] = DefaultStride[axis]
		}
	}
}

// window is an axis-aligned box [lo, hi) clipped to the grid.
type window struct {
	lo, hi [3]int
}

func windowAt(d grid.Dims, center [3]int, radius int) window {
	var w window
	for axis := range center {
		w.lo[axis] = max(center[axis]-radius, 0)
		w.hi[axis] = min(center[axis]+radius+1, d[axis])
	}
	return w
}

// each calls fn with the linear index of every voxel in the window.
func (w window) each(d grid.Dims, fn func(idx int)) {
	for i := w.lo[0]; i < w.hi[0]; i++ {
		for j := w.lo[1]; j < w.hi[1]; j++ {
			base := d.Index(i, j, 0)
			for k := w.lo[2]; k < w.hi[2]; k++ {
				fn(base + k)
			}
		}
	}
}

// Segment labels the dense regions of f and returns the label grid together
// with the number of labels assigned.
func Segment(f *grid.Field, p Params, src rng.Source) (*grid.Labels, int) {
	p.setDefaults()
	d := f.Dims
	labels := grid.NewLabels(d)
	candidate := func(idx int) bool { return f.Data[idx] >= p.Cutoff }

	var (
		next     int32 = 1
		existing []int32
	)
	total := (d[0] + p.Stride[0] - 1) / p.Stride[0]
	done := 0
	for x := 0; x < d[0]; x += p.Stride[0] {
		for y := 0; y < d[1]; y += p.Stride[1] {
			for z := 0; z < d[2]; z += p.Stride[2] {
				if !candidate(d.Index(x, y, z)) {
					continue
				}
				w := windowAt(d, [3]int{x, y, z}, p.Radius)

				existing = existing[:0]
				w.each(d, func(idx int) {
					if l := labels.Data[idx]; l != 0 {
						existing = append(existing, l)
					}
				})

				if len(existing) > 0 {
					w.each(d, func(idx int) {
						if labels.Data[idx] == 0 && candidate(idx) {
							labels.Data[idx] = existing[src.IntN(len(existing))]
						}
					})
					continue
				}
				fresh := next
				next++
				w.each(d, func(idx int) {
					if candidate(idx) {
						labels.Data[idx] = fresh
					}
				})
			}
		}
		done++
		if p.Progress != nil {
			p.Progress(done, total)
		}
	}
	return labels, int(next - 1)
}

// Ages draws one formation age per cluster label. The result is indexed by
// label-1.
func Ages(n int, universeGyr float64, src rng.Source) []uint64 {
	ages := make([]uint64, n)
	for i := range ages {
		ages[i] = stellar.SampleAge(src, 0, universeGyr)
	}
	return ages
}

// Sizes returns the voxel count of each label, indexed by label-1.
func Sizes(labels *grid.Labels, n int) []int {
	sizes := make([]int, n)
	for _, l := range labels.Data {
		if l > 0 && int(l) <= n {
			sizes[l-1]++
		}
	}
	return sizes
}
