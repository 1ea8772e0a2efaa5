// Package grid provides the dense 3-D grids shared by the starscape stages.
//
// A [Field] holds floating-point densities (the DensityField) and a [Labels]
// grid holds cluster labels (the ClusterGrid). Both are stored flat in
// row-major order: axis 0 is the outermost axis, axis 2 varies fastest.
//
// Grids are produced once per run and treated as read-only by every
// downstream stage. Transformations such as [Field.Pow] return new grids.
package grid

import (
	"fmt"
	"math"
)

// Dims is the extent of a grid along its three axes.
type Dims [3]int

// Len returns the number of voxels in a grid of these dimensions.
func (d Dims) Len() int { return d[0] * d[1] * d[2] }

// Index returns the linear offset of voxel (i, j, k).
func (d Dims) Index(i, j, k int) int { return (i*d[1]+j)*d[2] + k }

// Coords converts a linear offset back into voxel coordinates.
func (d Dims) Coords(idx int) (i, j, k int) {
	k = idx % d[2]
	j = (idx / d[2]) % d[1]
	i = idx / (d[1] * d[2])
	return i, j, k
}

// Contains reports whether p lies within the grid bounds.
func (d Dims) Contains(p [3]int) bool {
	for axis := range d {
		if p[axis] < 0 || p[axis] >= d[axis] {
			return false
		}
	}
	return true
}

// Div returns d divided by c on every axis (integer division).
func (d Dims) Div(c Dims) Dims {
	return Dims{d[0] / c[0], d[1] / c[1], d[2] / c[2]}
}

// String renders the dimensions as AxBxC.
func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d[0], d[1], d[2])
}

// Field is a dense 3-D grid of float64 values.
type Field struct {
	Dims Dims
	Data []float64
}

// NewField allocates a zeroed field.
func NewField(d Dims) *Field {
	return &Field{Dims: d, Data: make([]float64, d.Len())}
}

// At returns the value at voxel (i, j, k).
func (f *Field) At(i, j, k int) float64 { return f.Data[f.Dims.Index(i, j, k)] }

// Set stores v at voxel (i, j, k).
func (f *Field) Set(i, j, k int, v float64) { f.Data[f.Dims.Index(i, j, k)] = v }

// AtPos returns the value at position p.
func (f *Field) AtPos(p [3]int) float64 { return f.At(p[0], p[1], p[2]) }

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	out := &Field{Dims: f.Dims, Data: make([]float64, len(f.Data))}
	copy(out.Data, f.Data)
	return out
}

// Pow returns a new field with every value raised to exp.
// Applied to a normalized field this sharpens dense regions while keeping the
// range [0, 1] intact.
func (f *Field) Pow(exp float64) *Field {
	out := &Field{Dims: f.Dims, Data: make([]float64, len(f.Data))}
	for i, v := range f.Data {
		out.Data[i] = math.Pow(v, exp)
	}
	return out
}

// Slice returns the 2-D plane at index i along axis 0, in row-major order.
// The returned slice aliases the field's storage.
func (f *Field) Slice(i int) []float64 {
	n := f.Dims[1] * f.Dims[2]
	return f.Data[i*n : (i+1)*n]
}

// Labels is a dense 3-D grid of cluster labels. Zero means "no cluster".
type Labels struct {
	Dims Dims
	Data []int32
}

// NewLabels allocates a grid with every voxel unlabeled.
func NewLabels(d Dims) *Labels {
	return &Labels{Dims: d, Data: make([]int32, d.Len())}
}

// At returns the label at voxel (i, j, k).
func (l *Labels) At(i, j, k int) int32 { return l.Data[l.Dims.Index(i, j, k)] }

// AtPos returns the label at position p.
func (l *Labels) AtPos(p [3]int) int32 { return l.At(p[0], p[1], p[2]) }

// Distinct returns the set of nonzero labels present in the grid.
func (l *Labels) Distinct() map[int32]struct{} {
	seen := make(map[int32]struct{})
	for _, v := range l.Data {
		if v != 0 {
			seen[v] = struct{}{}
		}
	}
	return seen
}

// Max returns the largest label present (0 for an unlabeled grid).
func (l *Labels) Max() int32 {
	var m int32
	for _, v := range l.Data {
		if v > m {
			m = v
		}
	}
	return m
}
