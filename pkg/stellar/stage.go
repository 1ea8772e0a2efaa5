package stellar

import (
	"fmt"
	"math"

	"github.com/matzehuels/starscape/pkg/rng"
)

// Phase is the evolutionary phase a resolved star is in.
type Phase int

const (
	// PreMainSequence means the star keeps its zero-age values.
	PreMainSequence Phase = iota
	// MainSequence covers every interpolated point on a fitted track,
	// including the post-main-sequence segments.
	MainSequence
	// WhiteDwarf is the stand-in used once a star outlives its track.
	WhiteDwarf
	// NeutronStar is the stand-in for collapsed stars above the tracks.
	NeutronStar
)

var phaseNames = [...]string{"pre-main-sequence", "main-sequence", "white-dwarf", "neutron-star"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Remnant reports whether p is one of the stand-in remnant phases.
func (p Phase) Remnant() bool { return p == WhiteDwarf || p == NeutronStar }

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Outcome is the result of resolving a star's evolutionary stage.
// Point is meaningful for every phase; for PreMainSequence it echoes the
// zero-age point. Segment is the track segment used, 0 when no track applied.
type Outcome struct {
	Phase   Phase
	Point   Point
	Segment int
}

// DefaultJitter is the relative scatter applied to interpolated track points.
const DefaultJitter = 0.07

// Resolver maps a star's mass and age onto its current HR-diagram position.
// The zero value resolves without jitter.
type Resolver struct {
	// Jitter is the relative scatter applied to both interpolated values.
	Jitter float64
}

// NewResolver returns a Resolver with the default jitter.
func NewResolver() *Resolver {
	return &Resolver{Jitter: DefaultJitter}
}

// Stage resolves the phase and HR-diagram position of a star of the given
// mass and age (years), whose zero-age position is zero.
//
// Stars below the fitted tracks never leave the pre-main-sequence. Stars above
// them stay there for their main-sequence lifetime, then collapse into a
// neutron-star stand-in. Stars on a track are interpolated along it and become
// white-dwarf stand-ins once they outlive it. The remnant values are visual
// placeholders, not cooling or collapse models.
func (r *Resolver) Stage(mass float64, age uint64, zero Point, src rng.Source) Outcome {
	years := float64(age)
	switch {
	case mass < minTrackMass:
		return Outcome{Phase: PreMainSequence, Point: zero}
	case mass >= maxTrackMass:
		if years < MainSequenceLifetime(mass) {
			return Outcome{Phase: PreMainSequence, Point: zero}
		}
		return Outcome{Phase: NeutronStar, Point: Point{
			LogTemp: math.Log10(Temperature(src, NewMass(src, O))),
			LogLum:  math.Log10(Luminosity(src, NewMass(src, M))),
		}}
	}

	t, _ := TrackFor(mass, zero)
	i, frac, ok := t.Locate(years)
	if !ok {
		return Outcome{Phase: WhiteDwarf, Point: Point{
			LogTemp: zero.LogTemp,
			LogLum:  math.Log10(Luminosity(src, NewMass(src, M))),
		}}
	}
	p := t.At(i, frac)
	if r.Jitter != 0 {
		p.LogTemp += rng.Scatter(src, p.LogTemp, r.Jitter)
		p.LogLum += rng.Scatter(src, p.LogLum, r.Jitter)
	}
	return Outcome{Phase: MainSequence, Point: p, Segment: i}
}
