// Package stellar holds the stellar model used by starscape: spectral classes,
// the mass, luminosity and temperature formulas, the age sampler, the
// temperature color table, the evolutionary tracks and the [Star] record.
//
// The model is a deliberately approximate, randomized fit to published tables.
// Every formula that scatters its result takes an explicit [rng.Source] so
// callers control reproducibility and tests can pin the jitter with
// [rng.Fixed].
//
// Units: mass and luminosity are solar units, temperature is thousands of
// kelvin, ages are years.
package stellar

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/starscape/pkg/rng"
)

// Class is a spectral class, one of O, B, A, F, G, K, M.
type Class string

// Spectral classes, hottest first.
const (
	O Class = "O"
	B Class = "B"
	A Class = "A"
	F Class = "F"
	G Class = "G"
	K Class = "K"
	M Class = "M"
)

// Classes lists every spectral class from hottest to coolest.
var Classes = []Class{O, B, A, F, G, K, M}

// characteristicMass is the representative birth mass of each class.
var characteristicMass = map[Class]float64{
	O: 60,
	B: 18,
	A: 3.2,
	F: 1.7,
	G: 1.1,
	K: 0.65,
	M: 0.3,
}

// brightnessScale orders classes by their drawn size in star-field images.
const brightnessScale = "-MK--GFABO"

// ParseClass converts a single-letter class name (case-insensitive).
func ParseClass(s string) (Class, error) {
	c := Class(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := characteristicMass[c]; !ok {
		return "", fmt.Errorf("unknown spectral class %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the seven spectral classes.
func (c Class) Valid() bool {
	_, ok := characteristicMass[c]
	return ok
}

// CharacteristicMass returns the representative birth mass of the class.
func (c Class) CharacteristicMass() float64 { return characteristicMass[c] }

// Brightness returns the display brightness used when drawing star-field
// images: M is 1, O is 9. Physical luminosity spans too many decades to be
// useful for that purpose.
func (c Class) Brightness() int { return strings.Index(brightnessScale, string(c)) }

// NewMass draws a birth mass for the class, uniform within half the
// characteristic mass on either side. The result is always positive.
func NewMass(src rng.Source, c Class) float64 {
	cm := characteristicMass[c]
	return cm + rng.Uniform(src, -0.5*cm, 0.5*cm)
}

// IMF evaluates the Kroupa (2001) broken power-law initial mass function.
func IMF(mass float64) float64 {
	switch {
	case mass < 0.08:
		return math.Pow(mass, -0.3)
	case mass < 0.5:
		return math.Pow(mass, -1.3)
	default:
		return math.Pow(mass, -2.3)
	}
}

// Luminosity returns the zero-age luminosity of a star of the given mass,
// scattered by up to ±10% plus an independent ±5% term counted twice.
func Luminosity(src rng.Source, mass float64) float64 {
	var v float64
	switch {
	case mass < 0.43:
		v = 0.23 * math.Pow(mass, 2.3)
	case mass < 2:
		v = math.Pow(mass, 4)
	case mass < 55:
		v = 1.4 * math.Pow(mass, 3.5)
	default:
		v = 32000 * mass
	}
	return scatter(src, v)
}

// Temperature returns the zero-age surface temperature, in thousands of
// kelvin, with the same scatter as Luminosity.
func Temperature(src rng.Source, mass float64) float64 {
	return scatter(src, 6.21*math.Pow(mass, 0.533))
}

func scatter(src rng.Source, v float64) float64 {
	return v + rng.Scatter(src, v, 0.1) + 2*rng.Scatter(src, v, 0.05)
}

// InverseSquare dims lum by the inverse-square law at distance dist.
// off shifts the distance so a zero distance stays finite.
func InverseSquare(lum, dist, off float64) float64 {
	d := dist + off
	return lum / (4 * math.Pi * d * d)
}
