// Package noise generates the normalized 3-D density field that seeds star
// formation.
//
// The grid is split into disjoint cubic chunks. Each chunk is sampled by an
// independent task from its own OpenSimplex generator, so tasks share no
// mutable state and may finish in any order. The orchestrating goroutine
// copies every finished chunk into its own region of the output and, once all
// chunks are placed, rescales the field to [0, 1].
//
// For a fixed seed, grid, chunk and feature size the output is bit-identical
// across runs regardless of worker count.
package noise

import (
	"context"
	"runtime"

	"github.com/ojrac/opensimplex-go"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	serr "github.com/matzehuels/starscape/pkg/errors"
	"github.com/matzehuels/starscape/pkg/grid"
)

// Default sizes.
var (
	DefaultGrid    = grid.Dims{32, 128, 128}
	DefaultChunk   = grid.Dims{32, 32, 32}
	DefaultFeature = [3]float64{64, 128, 128}
)

// Params configures a noise run.
type Params struct {
	// Seed selects the noise pattern.
	Seed int64
	// Grid is the extent of the output field. It must be a multiple of Chunk
	// on every axis.
	Grid grid.Dims
	// Chunk is the extent of one task.
	Chunk grid.Dims
	// Feature divides voxel coordinates before sampling; larger values give
	// smoother, larger structures along that axis.
	Feature [3]float64
	// Workers bounds the number of concurrent tasks (default: runtime.NumCPU).
	Workers int
	// Progress, if set, is called from the orchestrating goroutine after each
	// chunk is placed.
	Progress func(done, total int)
}

func (p *Params) setDefaults() {
	if p.Grid == (grid.Dims{}) {
		p.Grid = DefaultGrid
	}
	if p.Chunk == (grid.Dims{}) {
		p.Chunk = DefaultChunk
	}
	if p.Feature == ([3]float64{}) {
		p.Feature = DefaultFeature
	}
	if p.Workers <= 0 {
		p.Workers = runtime.NumCPU()
	}
}

func (p Params) validate() error {
	if err := serr.ValidateDivisible(p.Grid, p.Chunk); err != nil {
		return err
	}
	for _, f := range p.Feature {
		if err := serr.ValidatePositive("feature size", f); err != nil {
			return err
		}
	}
	return nil
}

type chunk struct {
	origin [3]int
	data   []float64
}

// Generate computes a normalized density field. Zero-valued sizes in p fall
// back to the defaults.
//
// A grid that is not a multiple of the chunk size fails with
// ErrCodeInvalidGrid. A field without variance cannot be normalized and fails
// with ErrCodeDegenerateField.
func Generate(ctx context.Context, p Params) (*grid.Field, error) {
	p.setDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}

	chunks := p.Grid.Div(p.Chunk)
	total := chunks.Len()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)

	results := make(chan chunk, p.Workers)
	errc := make(chan error, 1)

	go func() {
		for n := 0; n < total && gctx.Err() == nil; n++ {
			cx, cy, cz := chunks.Coords(n)
			origin := [3]int{cx * p.Chunk[0], cy * p.Chunk[1], cz * p.Chunk[2]}
			g.Go(func() error {
				c := chunk{origin: origin, data: sample(p.Seed, origin, p.Chunk, p.Feature)}
				select {
				case results <- c:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		errc <- g.Wait()
		close(results)
	}()

	out := grid.NewField(p.Grid)
	done := 0
	for c := range results {
		place(out, c, p.Chunk)
		done++
		if p.Progress != nil {
			p.Progress(done, total)
		}
	}
	if err := <-errc; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := Normalize(out); err != nil {
		return nil, err
	}
	return out, nil
}

// sample evaluates one chunk. It builds its own generator so that no state is
// shared between tasks.
func sample(seed int64, origin [3]int, size grid.Dims, feature [3]float64) []float64 {
	gen := opensimplex.New(seed)
	data := make([]float64, size.Len())
	n := 0
	for i := 0; i < size[0]; i++ {
		x := float64(origin[0]+i) / feature[0]
		for j := 0; j < size[1]; j++ {
			y := float64(origin[1]+j) / feature[1]
			for k := 0; k < size[2]; k++ {
				z := float64(origin[2]+k) / feature[2]
				data[n] = gen.Eval3(x, y, z)
				n++
			}
		}
	}
	return data
}

// place copies a chunk into its region of out, one contiguous row at a time.
func place(out *grid.Field, c chunk, size grid.Dims) {
	row := size[2]
	n := 0
	for i := 0; i < size[0]; i++ {
		for j := 0; j < size[1]; j++ {
			dst := out.Dims.Index(c.origin[0]+i, c.origin[1]+j, c.origin[2])
			copy(out.Data[dst:dst+row], c.data[n:n+row])
			n += row
		}
	}
}

// Normalize rescales f in place so its minimum becomes 0 and its maximum 1.
// A field whose values are all equal fails with ErrCodeDegenerateField and is
// left unchanged.
func Normalize(f *grid.Field) error {
	if len(f.Data) == 0 {
		return serr.New(serr.ErrCodeDegenerateField, "field is empty")
	}
	lo, hi := floats.Min(f.Data), floats.Max(f.Data)
	span := hi - lo
	if !(span > 0) {
		return serr.New(serr.ErrCodeDegenerateField,
			"field has no variance (min %g, max %g)", lo, hi)
	}
	floats.AddConst(-lo, f.Data)
	for i := range f.Data {
		f.Data[i] /= span
	}
	return nil
}
