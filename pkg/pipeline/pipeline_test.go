package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/starscape/pkg/cache"
	serr "github.com/matzehuels/starscape/pkg/errors"
	"github.com/matzehuels/starscape/pkg/grid"
	"github.com/matzehuels/starscape/pkg/observability"
)

// smallOptions keeps a full run well under a second.
func smallOptions() Options {
	return Options{
		Seed:    7,
		Grid:    [3]int{8, 16, 16},
		Chunk:   [3]int{8, 8, 8},
		Feature: [3]float64{8, 16, 16},
		Workers: 2,
		Cutoff:  0.3,
		Radius:  3,
		Stride:  [3]int{1, 3, 3},
		Count:   60,
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if o.Seed == 0 {
		t.Error("zero seed should be replaced")
	}
	if o.Grid != DefaultGrid || o.Chunk != DefaultChunk || o.Feature != DefaultFeature {
		t.Errorf("geometry defaults not applied: %v %v %v", o.Grid, o.Chunk, o.Feature)
	}
	if o.Exponent != DefaultExponent {
		t.Errorf("cluster defaults not applied: exponent=%v", o.Exponent)
	}
	if o.Radius != DefaultRadius || o.Stride != DefaultStride {
		t.Errorf("scan defaults not applied: radius=%v stride=%v", o.Radius, o.Stride)
	}
	if o.UniverseAge != DefaultUniverseAge {
		t.Errorf("population defaults not applied: age=%v", o.UniverseAge)
	}
	if o.Cutoff != 0 || o.Count != 0 {
		t.Errorf("zero cutoff and count are valid settings, got cutoff=%v count=%v", o.Cutoff, o.Count)
	}
	if o.Logger == nil {
		t.Error("logger should default to a discard logger")
	}

	seed := o.Seed
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Seed != seed {
		t.Error("ValidateAndSetDefaults should resolve the seed only once")
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.Cutoff != DefaultCutoff || o.Count != DefaultCount {
		t.Errorf("DefaultOptions cutoff=%v count=%v", o.Cutoff, o.Count)
	}
	if o.Seed != 0 {
		t.Error("DefaultOptions should leave the seed to be resolved at run time")
	}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Cutoff != DefaultCutoff || o.Count != DefaultCount {
		t.Errorf("defaults changed by validation: cutoff=%v count=%v", o.Cutoff, o.Count)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
		code   serr.Code
	}{
		{"indivisible grid", func(o *Options) { o.Grid = [3]int{8, 16, 12} }, serr.ErrCodeInvalidGrid},
		{"negative chunk", func(o *Options) { o.Chunk = [3]int{-8, 8, 8} }, serr.ErrCodeInvalidGrid},
		{"zero feature", func(o *Options) { o.Feature = [3]float64{8, 0, 16} }, serr.ErrCodeInvalidConfig},
		{"cutoff above one", func(o *Options) { o.Cutoff = 1.5 }, serr.ErrCodeInvalidConfig},
		{"negative exponent", func(o *Options) { o.Exponent = -1 }, serr.ErrCodeInvalidConfig},
		{"negative universe age", func(o *Options) { o.UniverseAge = -2 }, serr.ErrCodeInvalidConfig},
		{"negative count", func(o *Options) { o.Count = -1 }, serr.ErrCodeInvalidConfig},
		{"negative radius", func(o *Options) { o.Radius = -3 }, serr.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := smallOptions()
			tt.mutate(&o)
			err := o.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := serr.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestFieldKeyOpts(t *testing.T) {
	o := smallOptions()
	k := o.FieldKeyOpts()
	if k.Seed != o.Seed || k.Grid != o.Grid || k.Chunk != o.Chunk || k.Feature != o.Feature {
		t.Errorf("FieldKeyOpts = %+v", k)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := smallOptions()

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.RunID == "" {
		t.Error("run id should be set")
	}
	if res.Options.Seed != opts.Seed {
		t.Errorf("resolved seed = %d, want %d", res.Options.Seed, opts.Seed)
	}
	if len(res.Stars) != opts.Count || res.Stats.Stars != opts.Count {
		t.Errorf("stars = %d, want %d", len(res.Stars), opts.Count)
	}
	if res.Stats.Voxels != 8*16*16 {
		t.Errorf("voxels = %d", res.Stats.Voxels)
	}
	if len(res.ClusterAges) != res.ClusterCount {
		t.Errorf("cluster ages = %d, clusters = %d", len(res.ClusterAges), res.ClusterCount)
	}
	if res.CacheInfo.FieldSource != SourceGenerated || res.CacheInfo.FieldHit {
		t.Errorf("cache info = %+v", res.CacheInfo)
	}

	d := grid.Dims(opts.Grid)
	for i, s := range res.Stars {
		if !d.Contains(s.Pos) {
			t.Fatalf("star %d out of bounds: %v", i, s.Pos)
		}
		if s.Cluster < 0 || int(s.Cluster) > res.ClusterCount {
			t.Fatalf("star %d has invalid cluster %d", i, s.Cluster)
		}
		if s.Cluster != res.Labels.AtPos(s.Pos) {
			t.Fatalf("star %d cluster %d does not match grid label %d", i, s.Cluster, res.Labels.AtPos(s.Pos))
		}
		if s.Mass <= 0 {
			t.Fatalf("star %d has mass %v", i, s.Mass)
		}
		if s.Cluster > 0 && s.Age != res.ClusterAges[s.Cluster-1] {
			t.Fatalf("star %d age %d differs from cluster age %d", i, s.Age, res.ClusterAges[s.Cluster-1])
		}
	}
}

func TestExecuteZeroCutoffAndCount(t *testing.T) {
	opts := smallOptions()
	opts.Cutoff = 0
	opts.Count = 0

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Options.Cutoff != 0 || res.Options.Count != 0 {
		t.Errorf("resolved cutoff=%v count=%v, want zeros", res.Options.Cutoff, res.Options.Count)
	}
	if len(res.Stars) != 0 {
		t.Errorf("stars = %d, want none", len(res.Stars))
	}
	if res.ClusterCount == 0 {
		t.Error("a zero cutoff makes every voxel a candidate, so clusters must exist")
	}
	for i, l := range res.Labels.Data {
		if l == 0 {
			t.Fatalf("voxel %d unlabeled with a zero cutoff", i)
		}
	}
}

func TestExecuteDeterministic(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	a, err := r.Execute(context.Background(), smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(context.Background(), smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	if a.RunID == b.RunID {
		t.Error("run ids should differ")
	}
	if !reflect.DeepEqual(a.Field.Data, b.Field.Data) {
		t.Error("same seed should give the same field")
	}
	if !reflect.DeepEqual(a.Labels.Data, b.Labels.Data) {
		t.Error("same seed should give the same clusters")
	}
	if !reflect.DeepEqual(a.Stars, b.Stars) {
		t.Error("same seed should give the same stars")
	}
}

func TestExecuteUsesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	first, err := r.Execute(context.Background(), smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(context.Background(), smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheInfo.FieldSource != SourceCache || !second.CacheInfo.FieldHit {
		t.Errorf("second run should hit the cache: %+v", second.CacheInfo)
	}
	if !reflect.DeepEqual(first.Field.Data, second.Field.Data) {
		t.Error("cached field should equal the generated one")
	}

	opts := smallOptions()
	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.FieldSource != SourceGenerated {
		t.Errorf("refresh should regenerate: %+v", third.CacheInfo)
	}
}

func TestFieldFile(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := smallOptions()
	opts.FieldPath = filepath.Join(t.TempDir(), "field.raw")

	f, src, err := r.FieldWithSource(context.Background(), opts)
	if err != nil {
		t.Fatalf("missing file should regenerate: %v", err)
	}
	if src != SourceGenerated {
		t.Errorf("source = %s, want %s", src, SourceGenerated)
	}
	info, err := os.Stat(opts.FieldPath)
	if err != nil {
		t.Fatalf("field file should be written: %v", err)
	}
	if info.Size() != int64(8*len(f.Data)) {
		t.Errorf("field file size = %d, want %d", info.Size(), 8*len(f.Data))
	}

	loaded, src, err := r.FieldWithSource(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if src != SourceFile {
		t.Errorf("source = %s, want %s", src, SourceFile)
	}
	if !reflect.DeepEqual(f.Data, loaded.Data) {
		t.Error("loaded field should equal the written one")
	}
}

func TestFieldFileWrongSize(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := smallOptions()
	opts.FieldPath = filepath.Join(t.TempDir(), "field.raw")
	if err := os.WriteFile(opts.FieldPath, make([]byte, 24), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := r.Execute(context.Background(), opts)
	if !serr.Is(err, serr.ErrCodeInvalidGrid) {
		t.Fatalf("expected INVALID_GRID, got %v", err)
	}

	opts.Refresh = true
	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Errorf("refresh should ignore the stale file: %v", err)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	opts := smallOptions()
	opts.Grid = [3]int{9, 16, 16}
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if !serr.Is(err, serr.ErrCodeInvalidGrid) {
		t.Errorf("expected INVALID_GRID, got %v", err)
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).Execute(ctx, smallOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExecuteHooksAndProgress(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetPipelineHooks(rec)
	defer observability.Reset()

	var (
		mu       sync.Mutex
		progress = map[string]int{}
	)
	opts := smallOptions()
	opts.Progress = func(stage string, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		progress[stage]++
	}

	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	want := []string{StageField, StageCluster, StageStars, StageAge}
	if !reflect.DeepEqual(rec.completed, want) {
		t.Errorf("completed stages = %v, want %v", rec.completed, want)
	}
	if progress[StageField] != 4 {
		t.Errorf("field progress calls = %d, want 4", progress[StageField])
	}
	if progress[StageCluster] == 0 {
		t.Error("cluster progress should be reported")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	completed []string
}

func (h *recordingHooks) OnStageComplete(_ context.Context, stage string, _ int, _ time.Duration, _ error) {
	h.completed = append(h.completed, stage)
}
