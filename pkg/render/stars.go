package render

import (
	"image"
	"math"
	"sort"

	"github.com/fogleman/gg"

	"github.com/matzehuels/starscape/pkg/grid"
	"github.com/matzehuels/starscape/pkg/stellar"
)

// StarFieldOptions controls [StarField].
type StarFieldOptions struct {
	// Scale is the number of pixels per voxel (default 4).
	Scale int
	// Exposure multiplies the received flux before it is mapped to opacity
	// (default 50).
	Exposure float64
	// Distance is added to every star's depth along axis 0 (default 1).
	Distance float64
}

func (o *StarFieldOptions) setDefaults() {
	if o.Scale <= 0 {
		o.Scale = 4
	}
	if o.Exposure <= 0 {
		o.Exposure = 50
	}
	if o.Distance <= 0 {
		o.Distance = 1
	}
}

// minAlpha keeps faint stars visible.
const minAlpha = 0.15

// StarField draws the stars on a black canvas as seen along axis 0. Disc size
// follows the spectral class and opacity the inverse-square flux. Far stars
// are drawn first so near ones stay on top.
func StarField(stars []stellar.Star, d grid.Dims, opts StarFieldOptions) image.Image {
	opts.setDefaults()
	scale := float64(opts.Scale)

	dc := gg.NewContext(d[2]*opts.Scale, d[1]*opts.Scale)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	order := make([]int, len(stars))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return stars[order[a]].Pos[0] > stars[order[b]].Pos[0]
	})

	for _, i := range order {
		s := &stars[i]
		c := s.Color()
		flux := stellar.InverseSquare(s.Luminosity, float64(s.Pos[0]), opts.Distance)
		alpha := math.Max(minAlpha, math.Min(1, opts.Exposure*flux))
		radius := scale * (0.25 + 0.1*float64(max(s.Brightness(), 0)))

		x := (float64(s.Pos[2]) + 0.5) * scale
		y := (float64(s.Pos[1]) + 0.5) * scale
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(math.Round(alpha*255)))
		dc.DrawCircle(x, y, radius)
		dc.Fill()
	}
	return dc.Image()
}
