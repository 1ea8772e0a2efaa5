package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/starscape/pkg/grid"
	"github.com/matzehuels/starscape/pkg/stellar"
)

// Projection collapses the field along axis 0 into a grayscale image.
//
// With distance zero every pixel shows the maximum density along its column.
// Otherwise each voxel contributes its density dimmed by the inverse-square
// law, with distance added to its depth, so near structure dominates.
// Pixel values are rescaled to the full 0..255 range; a flat projection is
// black.
func Projection(f *grid.Field, distance float64) *image.NRGBA {
	d := f.Dims
	plane := make([]float64, d[1]*d[2])
	for i := 0; i < d[0]; i++ {
		slice := f.Slice(i)
		for p, v := range slice {
			if distance > 0 {
				plane[p] += stellar.InverseSquare(v, float64(i), distance)
			} else if i == 0 || v > plane[p] {
				plane[p] = v
			}
		}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range plane {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	img := imaging.New(d[2], d[1], color.Black)
	for p, v := range plane {
		var g uint8
		if span > 0 {
			g = uint8(math.Round(255 * (v - lo) / span))
		}
		img.SetNRGBA(p%d[2], p/d[2], color.NRGBA{R: g, G: g, B: g, A: 255})
	}
	return img
}

// ClusterImage shows, for every column along axis 0, the highest label it
// contains. Unclustered columns are black.
func ClusterImage(l *grid.Labels) *image.NRGBA {
	d := l.Dims
	img := imaging.New(d[2], d[1], color.Black)
	for j := 0; j < d[1]; j++ {
		for k := 0; k < d[2]; k++ {
			var top int32
			for i := 0; i < d[0]; i++ {
				top = max(top, l.At(i, j, k))
			}
			if top > 0 {
				img.SetNRGBA(k, j, LabelColor(top))
			}
		}
	}
	return img
}

// goldenAngle spreads consecutive labels around the hue circle.
const goldenAngle = 137.50776405003785

// LabelColor returns the display color of a cluster label. Label 0 is black.
func LabelColor(label int32) color.NRGBA {
	if label <= 0 {
		return color.NRGBA{A: 255}
	}
	hue := math.Mod(float64(label)*goldenAngle, 360)
	r, g, b := colorful.Hsv(hue, 0.65, 0.95).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
