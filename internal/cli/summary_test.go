package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/starscape/pkg/catalog"
	"github.com/matzehuels/starscape/pkg/pipeline"
	"github.com/matzehuels/starscape/pkg/stellar"
)

func TestRenderSummary(t *testing.T) {
	res := &pipeline.Result{
		RunID:        "run-1",
		Options:      pipeline.Options{Seed: 42},
		ClusterCount: 3,
	}
	sum := catalog.Summary{
		Stars:     4,
		Clustered: 1,
		ByClass:   map[stellar.Class]int{stellar.G: 3, stellar.M: 1},
		ByPhase:   map[string]int{stellar.MainSequence.String(): 4},
		Mass:      catalog.Stat{Min: 0.3, Max: 1.2, Mean: 0.9, Median: 1, StdDev: 0.3},
	}

	out := renderSummary(res, sum)
	for _, want := range []string{"run-1", "seed 42", "3 clusters", "class G", "75.0%", "main-sequence", "in clusters", "mass"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestShare(t *testing.T) {
	if got := share(1, 4); got != "25.0%" {
		t.Errorf("share(1, 4) = %q", got)
	}
	if got := share(0, 0); got != "-" {
		t.Errorf("share(0, 0) = %q", got)
	}
}
