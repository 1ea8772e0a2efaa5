// Package population places stars in a density field and ages them.
//
// Positions come from rejection sampling: a uniformly drawn voxel is accepted
// with probability equal to its density. Spectral classes are drawn against
// per-class quotas derived from the initial mass function, so the class mix
// follows the IMF while each placement stays random.
package population

import (
	"math"

	"gonum.org/v1/gonum/floats"

	serr "github.com/matzehuels/starscape/pkg/errors"
	"github.com/matzehuels/starscape/pkg/grid"
	"github.com/matzehuels/starscape/pkg/rng"
	"github.com/matzehuels/starscape/pkg/stellar"
)

// DefaultCount is the number of stars generated by default.
const DefaultCount = 15000

// Quotas returns how many stars of each class a population of count stars
// should contain. One representative mass is drawn per class, weighted by the
// IMF, normalized across classes and scaled by count, rounding up. The quotas
// therefore sum to at least count.
func Quotas(count int, src rng.Source) map[stellar.Class]int {
	weights := make([]float64, len(stellar.Classes))
	for i, c := range stellar.Classes {
		weights[i] = stellar.IMF(stellar.NewMass(src, c))
	}
	total := floats.Sum(weights)

	quotas := make(map[stellar.Class]int, len(stellar.Classes))
	for i, c := range stellar.Classes {
		quotas[c] = int(math.Ceil(weights[i] / total * float64(count)))
	}
	return quotas
}

// pick draws a class uniformly among those with quota left.
func pick(quotas map[stellar.Class]int, src rng.Source) (stellar.Class, bool) {
	avail := make([]stellar.Class, 0, len(stellar.Classes))
	for _, c := range stellar.Classes {
		if quotas[c] > 0 {
			avail = append(avail, c)
		}
	}
	if len(avail) == 0 {
		return "", false
	}
	return avail[src.IntN(len(avail))], true
}

// Generate places exactly count zero-age stars in f. Each star records the
// cluster label at its position; labels may be nil when no clustering ran.
//
// A field with no positive density can never accept a position and fails
// with ErrCodeDegenerateField. A label grid whose dimensions differ from the
// field fails with ErrCodeInvalidGrid.
func Generate(f *grid.Field, labels *grid.Labels, count int, src rng.Source) ([]stellar.Star, error) {
	if count <= 0 {
		return nil, nil
	}
	if labels != nil && labels.Dims != f.Dims {
		return nil, serr.New(serr.ErrCodeInvalidGrid,
			"cluster grid %s does not match field %s", labels.Dims, f.Dims)
	}
	if len(f.Data) == 0 || !(floats.Max(f.Data) > 0) {
		return nil, serr.New(serr.ErrCodeDegenerateField, "field has no positive density")
	}

	quotas := Quotas(count, src)
	stars := make([]stellar.Star, 0, count)
	d := f.Dims
	for len(stars) < count {
		pos := [3]int{src.IntN(d[0]), src.IntN(d[1]), src.IntN(d[2])}
		if src.Float64() >= f.AtPos(pos) {
			continue
		}

		c, ok := pick(quotas, src)
		if !ok {
			// Rounding up makes the quotas cover count, so this only runs if
			// that ever stops holding.
			quotas = Quotas(count-len(stars), src)
			if c, ok = pick(quotas, src); !ok {
				return nil, serr.New(serr.ErrCodeInternal, "no spectral class quota left")
			}
		}
		quotas[c]--

		var cluster int32
		if labels != nil {
			cluster = labels.AtPos(pos)
		}
		stars = append(stars, stellar.NewStar(src, pos, c, stellar.NewMass(src, c), cluster))
	}
	return stars, nil
}

// Age returns the stars evolved to their ages. Members of a cluster take the
// cluster's age from clusterAges (indexed by label-1); field stars, and
// stars whose label has no recorded age, draw their own.
func Age(stars []stellar.Star, clusterAges []uint64, universeGyr float64, r *stellar.Resolver, src rng.Source) []stellar.Star {
	out := make([]stellar.Star, len(stars))
	for i, s := range stars {
		var age uint64
		if s.Cluster > 0 && int(s.Cluster) <= len(clusterAges) {
			age = clusterAges[s.Cluster-1]
		} else {
			age = stellar.SampleAge(src, 0, universeGyr)
		}
		out[i] = s.Evolve(age, r, src)
	}
	return out
}
