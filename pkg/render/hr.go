package render

import (
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	serr "github.com/matzehuels/starscape/pkg/errors"
	"github.com/matzehuels/starscape/pkg/stellar"
)

// HR diagram size in pixels.
const (
	HRWidth  = 1024
	HRHeight = 768
)

// HRDiagram writes a Hertzsprung-Russell diagram of the stars to w as PNG:
// log temperature on a reversed x axis against log luminosity, each dot in
// the star's color. Temperatures are in thousands of kelvin and plotted in
// kelvin.
func HRDiagram(w io.Writer, stars []stellar.Star) error {
	if len(stars) == 0 {
		return serr.New(serr.ErrCodeInvalidInput, "no stars to plot")
	}

	xs := make([]float64, 0, len(stars))
	ys := make([]float64, 0, len(stars))
	colors := make([]drawing.Color, 0, len(stars))
	for i := range stars {
		s := &stars[i]
		if !(s.Temperature > 0) || !(s.Luminosity > 0) {
			continue
		}
		c := s.Color()
		xs = append(xs, math.Log10(s.Temperature*1000))
		ys = append(ys, math.Log10(s.Luminosity))
		colors = append(colors, drawing.Color{R: c.R, G: c.G, B: c.B, A: 255})
	}
	if len(xs) == 0 {
		return serr.New(serr.ErrCodeInvalidInput, "no star has positive temperature and luminosity")
	}

	graph := chart.Chart{
		Width:  HRWidth,
		Height: HRHeight,
		Background: chart.Style{
			FillColor: drawing.ColorBlack,
			FontColor: drawing.ColorWhite,
		},
		Canvas: chart.Style{FillColor: drawing.ColorBlack},
		XAxis: chart.XAxis{
			Name:      "log T (K)",
			NameStyle: chart.Style{FontColor: drawing.ColorWhite},
			Style:     chart.Style{FontSize: 10, FontColor: drawing.ColorWhite, StrokeColor: drawing.ColorWhite},
			Range:     paddedRange(xs, true),
		},
		YAxis: chart.YAxis{
			Name:      "log L (solar)",
			NameStyle: chart.Style{FontColor: drawing.ColorWhite},
			Style:     chart.Style{FontSize: 10, FontColor: drawing.ColorWhite, StrokeColor: drawing.ColorWhite},
			Range:     paddedRange(ys, false),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "stars",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    2,
					DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
						return colors[index]
					},
				},
			},
		},
	}
	return graph.Render(chart.PNG, w)
}

// paddedRange spans vs with a small margin, so a single star or a flat
// population still has a non-empty range.
func paddedRange(vs []float64, descending bool) *chart.ContinuousRange {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := math.Max(0.05*(hi-lo), 0.1)
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad, Descending: descending}
}
