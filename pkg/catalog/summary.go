package catalog

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/matzehuels/starscape/pkg/stellar"
)

// Stat describes one quantity over a population. All fields are zero for an
// empty population.
type Stat struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Summary condenses a population.
type Summary struct {
	Stars     int                   `json:"stars"`
	Clusters  int                   `json:"clusters"`  // distinct clusters with at least one star
	Clustered int                   `json:"clustered"` // stars inside a cluster
	ByClass   map[stellar.Class]int `json:"by_class"`
	ByPhase   map[string]int        `json:"by_phase"`
	Mass      Stat                  `json:"mass"`
	Age       Stat                  `json:"age"` // years
	LogLum    Stat                  `json:"log_luminosity"`
}

// Summarize counts stars per class and phase and describes their mass, age
// and luminosity.
func Summarize(stars []stellar.Star) Summary {
	s := Summary{
		Stars:   len(stars),
		ByClass: make(map[stellar.Class]int),
		ByPhase: make(map[string]int),
	}
	clusters := make(map[int32]struct{})
	mass := make(stats.Float64Data, 0, len(stars))
	age := make(stats.Float64Data, 0, len(stars))
	lum := make(stats.Float64Data, 0, len(stars))

	for _, st := range stars {
		s.ByClass[st.Class]++
		s.ByPhase[st.Phase.String()]++
		if st.Cluster > 0 {
			s.Clustered++
			clusters[st.Cluster] = struct{}{}
		}
		mass = append(mass, st.Mass)
		age = append(age, float64(st.Age))
		if st.Luminosity > 0 {
			lum = append(lum, math.Log10(st.Luminosity))
		}
	}
	s.Clusters = len(clusters)
	s.Mass = describe(mass)
	s.Age = describe(age)
	s.LogLum = describe(lum)
	return s
}

func describe(data stats.Float64Data) Stat {
	if data.Len() == 0 {
		return Stat{}
	}
	// The stats functions only fail on empty input.
	minV, _ := data.Min()
	maxV, _ := data.Max()
	mean, _ := data.Mean()
	median, _ := data.Median()
	sd, _ := data.StandardDeviation()
	return Stat{Min: minV, Max: maxV, Mean: mean, Median: median, StdDev: sd}
}
