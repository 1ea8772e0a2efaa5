package stellar

import (
	"image/color"
	"math"

	"github.com/matzehuels/starscape/pkg/rng"
)

// Star is a generated star. Luminosity and Temperature always match the
// star's current age: at creation they hold the zero-age values, and
// [Star.Evolve] returns a new record with the evolved values.
type Star struct {
	Pos         [3]int  `json:"pos"`
	Class       Class   `json:"class"`
	Mass        float64 `json:"mass"`
	Cluster     int32   `json:"cluster"`
	Age         uint64  `json:"age"`
	Luminosity  float64 `json:"luminosity"`
	Temperature float64 `json:"temperature"`
	Phase       Phase   `json:"phase"`

	ZeroAgeLuminosity  float64 `json:"zero_age_luminosity"`
	ZeroAgeTemperature float64 `json:"zero_age_temperature"`

	color    color.RGBA
	hasColor bool
}

// NewStar creates a zero-age star and samples its zero-age luminosity and
// temperature from mass.
func NewStar(src rng.Source, pos [3]int, class Class, mass float64, cluster int32) Star {
	lum := Luminosity(src, mass)
	temp := Temperature(src, mass)
	return Star{
		Pos:                pos,
		Class:              class,
		Mass:               mass,
		Cluster:            cluster,
		Luminosity:         lum,
		Temperature:        temp,
		ZeroAgeLuminosity:  lum,
		ZeroAgeTemperature: temp,
	}
}

// ZeroAge returns the star's zero-age HR-diagram position.
func (s Star) ZeroAge() Point {
	return Point{
		LogTemp: math.Log10(s.ZeroAgeTemperature),
		LogLum:  math.Log10(s.ZeroAgeLuminosity),
	}
}

// Evolve returns a copy of s aged to age years. Every phase other than
// PreMainSequence replaces luminosity and temperature with the resolved
// values. The returned star has no cached color.
func (s Star) Evolve(age uint64, r *Resolver, src rng.Source) Star {
	out := s
	out.Age = age
	out.hasColor = false
	out.color = color.RGBA{}

	o := r.Stage(s.Mass, age, s.ZeroAge(), src)
	out.Phase = o.Phase
	if o.Phase == PreMainSequence {
		out.Luminosity = s.ZeroAgeLuminosity
		out.Temperature = s.ZeroAgeTemperature
		return out
	}
	out.Luminosity = math.Pow(10, o.Point.LogLum)
	out.Temperature = math.Pow(10, o.Point.LogTemp)
	return out
}

// Color returns the star's display color, computed from its temperature on
// first use and cached afterwards.
func (s *Star) Color() color.RGBA {
	if !s.hasColor {
		s.color = Color(s.Temperature, DefaultColorOffset)
		s.hasColor = true
	}
	return s.color
}

// Brightness returns the class-based display brightness (see Class.Brightness).
func (s Star) Brightness() int { return s.Class.Brightness() }
