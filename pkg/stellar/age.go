package stellar

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/matzehuels/starscape/pkg/rng"
)

// Shape of the age distribution. Beta(3.33, 6.66) peaks at roughly a quarter
// of the available span and has a long tail towards old ages.
const (
	ageAlpha = 3.33
	ageBeta  = 6.66
)

// SampleAge draws an age in years from Beta(3.33, 6.66) scaled into
// [0, universeGyr*1e9 - minAge], truncated to whole years. It returns 0 when
// that span is empty.
//
// src must be a real generator: the underlying gamma sampler rejects draws
// until it accepts, so a constant source such as rng.Fixed never returns.
func SampleAge(src rng.Source, minAge uint64, universeGyr float64) uint64 {
	span := universeGyr*1e9 - float64(minAge)
	if span <= 0 {
		return 0
	}
	d := distuv.Beta{Alpha: ageAlpha, Beta: ageBeta, Src: src}
	return uint64(d.Rand() * span)
}
