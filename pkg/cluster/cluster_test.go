package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/starscape/pkg/grid"
	"github.com/matzehuels/starscape/pkg/noise"
	"github.com/matzehuels/starscape/pkg/rng"
)

func lineField(n int, dense ...int) *grid.Field {
	f := grid.NewField(grid.Dims{1, 1, n})
	for _, i := range dense {
		f.Data[i] = 1
	}
	return f
}

func assertDense(t *testing.T, labels *grid.Labels, n int) {
	t.Helper()
	seen := labels.Distinct()
	assert.Len(t, seen, n)
	for l := 1; l <= n; l++ {
		_, ok := seen[int32(l)]
		assert.True(t, ok, "label %d missing", l)
	}
}

func TestSegmentSeparateRegions(t *testing.T) {
	f := lineField(30, 0, 1, 2, 10, 11, 12)
	labels, n := Segment(f, Params{Cutoff: 0.5, Radius: 2, Stride: grid.Dims{1, 1, 1}}, rng.New(1))

	require.Equal(t, 2, n)
	assert.Equal(t, []int32{1, 1, 1}, labels.Data[0:3])
	assert.Equal(t, []int32{2, 2, 2}, labels.Data[10:13])
	assert.Equal(t, int32(0), labels.Data[5])
	assertDense(t, labels, n)
}

func TestSegmentGrowsIntoNeighbors(t *testing.T) {
	f := lineField(5, 0, 1, 2, 3, 4)
	labels, n := Segment(f, Params{Cutoff: 0.5, Radius: 1, Stride: grid.Dims{1, 1, 1}}, rng.New(1))
	assert.Equal(t, 1, n)
	assert.Equal(t, []int32{1, 1, 1, 1, 1}, labels.Data)
}

func TestSegmentNoCandidates(t *testing.T) {
	f := lineField(10, 3)
	labels, n := Segment(f, Params{Cutoff: 1.1}, rng.New(1))
	assert.Equal(t, 0, n)
	assert.Empty(t, labels.Distinct())
}

func TestSegmentDefaults(t *testing.T) {
	var p Params
	p.setDefaults()
	assert.Equal(t, 9, p.Radius)
	assert.Equal(t, grid.Dims{1, 9, 9}, p.Stride)
}

func TestSegmentNoiseField(t *testing.T) {
	f, err := noise.Generate(context.Background(), noise.Params{
		Seed:    42,
		Grid:    grid.Dims{8, 32, 32},
		Chunk:   grid.Dims{8, 16, 16},
		Feature: [3]float64{8, 16, 16},
	})
	require.NoError(t, err)

	var slices int
	p := Params{Cutoff: 0.5, Progress: func(done, total int) { slices = done }}
	labels, n := Segment(f, p, rng.New(7))

	require.Greater(t, n, 0)
	assertDense(t, labels, n)
	assert.Equal(t, 8, slices)

	for idx, l := range labels.Data {
		if l != 0 {
			assert.GreaterOrEqual(t, f.Data[idx], 0.5, "voxel %d labeled below cutoff", idx)
		}
	}
	// Every scanned candidate is labeled.
	for x := 0; x < 8; x++ {
		for y := 0; y < 32; y += 9 {
			for z := 0; z < 32; z += 9 {
				if f.At(x, y, z) >= 0.5 {
					assert.NotZero(t, labels.At(x, y, z))
				}
			}
		}
	}

	again, m := Segment(f, p, rng.New(7))
	assert.Equal(t, n, m)
	assert.Equal(t, labels.Data, again.Data)
}

func TestAges(t *testing.T) {
	ages := Ages(5, 13.8, rng.New(1))
	require.Len(t, ages, 5)
	for _, a := range ages {
		assert.Less(t, a, uint64(13.8e9))
	}
	assert.Empty(t, Ages(0, 13.8, rng.New(1)))
}

func TestSizes(t *testing.T) {
	l := grid.NewLabels(grid.Dims{1, 1, 6})
	l.Data = []int32{0, 1, 2, 2, 0, 2}
	assert.Equal(t, []int{1, 3}, Sizes(l, 2))
}
