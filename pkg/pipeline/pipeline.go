// Package pipeline runs the complete star-field synthesis.
//
// This package implements the noise → cluster → population → evolution
// pipeline used by every starscape command. Centralizing it keeps the CLI
// thin and makes a run a pure function of its [Options].
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Field: Load, fetch from cache, or generate the normalized density field
//  2. Cluster: Raise the field to Exponent and segment dense regions
//  3. Stars: Place a stellar population by rejection sampling
//  4. Age: Assign ages and move every star along its evolutionary track
//
// Every randomized stage draws from its own stream derived from the seed, so
// a run is reproducible and stages do not perturb each other.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Seed = 42
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.Stars), "stars in", result.ClusterCount, "clusters")
package pipeline

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starscape/pkg/cache"
	"github.com/matzehuels/starscape/pkg/cluster"
	serr "github.com/matzehuels/starscape/pkg/errors"
	"github.com/matzehuels/starscape/pkg/grid"
	"github.com/matzehuels/starscape/pkg/noise"
	"github.com/matzehuels/starscape/pkg/population"
	"github.com/matzehuels/starscape/pkg/stellar"
)

// =============================================================================
// Default Values - Single Source of Truth for the CLI and library callers
// =============================================================================

const (
	// DefaultExponent sharpens the normalized field before clustering.
	DefaultExponent = 2.0

	// DefaultUniverseAge is the age of the universe in Gyr. It bounds every
	// sampled stellar age.
	DefaultUniverseAge = 13.8

	// DefaultCount is the number of stars to place.
	DefaultCount = population.DefaultCount

	// DefaultCutoff is the clustering threshold on the sharpened field.
	DefaultCutoff = cluster.DefaultCutoff
)

// Default grid geometry.
var (
	DefaultGrid    = [3]int(noise.DefaultGrid)
	DefaultChunk   = [3]int(noise.DefaultChunk)
	DefaultFeature = noise.DefaultFeature
	DefaultStride  = [3]int(cluster.DefaultStride)
	DefaultRadius  = cluster.DefaultRadius
)

// Stage names used for logging, hooks and error prefixes.
const (
	StageField   = "field"
	StageCluster = "cluster"
	StageStars   = "stars"
	StageAge     = "age"
)

// Random stream identifiers. Each stage draws from rng.Derive(seed, stream).
const (
	streamCluster uint64 = iota + 1
	streamClusterAges
	streamStars
	streamAge
)

// Field sources reported in CacheInfo.
const (
	SourceGenerated = "generated"
	SourceCache     = "cache"
	SourceFile      = "file"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a run. Zero values select defaults,
// except for Cutoff and Count where zero is a valid setting: a zero cutoff
// makes every voxel a cluster candidate and a zero count places no stars.
// Start from [DefaultOptions] to get the default cutoff and count.
// The struct round-trips through JSON (catalog snapshots) and through
// mapstructure (config files and --set overrides).
type Options struct {
	// Field options
	Seed      int64      `json:"seed" mapstructure:"seed"` // 0 picks a random seed
	Grid      [3]int     `json:"grid" mapstructure:"grid"`
	Chunk     [3]int     `json:"chunk" mapstructure:"chunk"`
	Feature   [3]float64 `json:"feature" mapstructure:"feature"`
	Workers   int        `json:"-" mapstructure:"workers"`
	FieldPath string     `json:"-" mapstructure:"field_path"` // raw field file, read if present and written after generation
	Refresh   bool       `json:"-" mapstructure:"refresh"`    // ignore the field file and the cache

	// Cluster options
	Exponent float64 `json:"exponent" mapstructure:"exponent"`
	Cutoff   float64 `json:"cutoff" mapstructure:"cutoff"`
	Radius   int     `json:"radius" mapstructure:"radius"`
	Stride   [3]int  `json:"stride" mapstructure:"stride"`

	// Population options
	Count       int     `json:"count" mapstructure:"count"`
	UniverseAge float64 `json:"universe_age" mapstructure:"universe_age"` // Gyr

	// Runtime options (not serialized)
	Logger   *log.Logger                         `json:"-" mapstructure:"-"`
	Progress func(stage string, done, total int) `json:"-" mapstructure:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in catalogs and logs.
	RunID string

	// Options are the resolved options, including the effective seed.
	Options Options

	// Field is the normalized density field.
	Field *grid.Field

	// Probability is Field raised to Options.Exponent.
	Probability *grid.Field

	// Labels is the cluster grid and ClusterCount its highest label.
	Labels       *grid.Labels
	ClusterCount int

	// ClusterAges holds the formation age of each cluster, indexed by label-1.
	ClusterAges []uint64

	// Stars are the evolved stars.
	Stars []stellar.Star

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo records where the density field came from.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Voxels      int
	Clusters    int
	Stars       int
	FieldTime   time.Duration
	ClusterTime time.Duration
	StarTime    time.Duration
	AgeTime     time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.FieldTime + s.ClusterTime + s.StarTime + s.AgeTime
}

// CacheInfo tracks how the density field was obtained.
type CacheInfo struct {
	FieldHit    bool   // Field came from the cache or the field file
	FieldSource string // SourceGenerated, SourceCache or SourceFile
}

// =============================================================================
// Options Methods
// =============================================================================

// DefaultOptions returns options with every default filled in except the
// seed, which is resolved at run time.
func DefaultOptions() Options {
	return Options{
		Grid:        DefaultGrid,
		Chunk:       DefaultChunk,
		Feature:     DefaultFeature,
		Exponent:    DefaultExponent,
		Cutoff:      DefaultCutoff,
		Radius:      DefaultRadius,
		Stride:      DefaultStride,
		Count:       DefaultCount,
		UniverseAge: DefaultUniverseAge,
	}
}

// ValidateAndSetDefaults applies defaults and validates the options once.
// A zero seed is replaced by a random one, so repeated calls keep the same
// seed. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetFieldDefaults()
	o.SetClusterDefaults()
	o.SetPopulationDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Validate checks the options without applying defaults.
func (o *Options) Validate() error {
	if err := serr.ValidateDivisible(o.Grid, o.Chunk); err != nil {
		return err
	}
	for _, f := range o.Feature {
		if err := serr.ValidatePositive("feature size", f); err != nil {
			return err
		}
	}
	if err := serr.ValidateDims("stride", o.Stride); err != nil {
		return err
	}
	if o.Radius <= 0 {
		return serr.New(serr.ErrCodeInvalidConfig, "cluster radius must be positive, got %d", o.Radius)
	}
	if err := serr.ValidateUnitInterval("cutoff", o.Cutoff); err != nil {
		return err
	}
	if err := serr.ValidatePositive("exponent", o.Exponent); err != nil {
		return err
	}
	if err := serr.ValidatePositive("universe age", o.UniverseAge); err != nil {
		return err
	}
	return serr.ValidateNonNegative("star count", o.Count)
}

// SetFieldDefaults sets defaults for density field generation.
func (o *Options) SetFieldDefaults() {
	if o.Seed == 0 {
		o.Seed = RandomSeed()
	}
	if o.Grid == ([3]int{}) {
		o.Grid = DefaultGrid
	}
	if o.Chunk == ([3]int{}) {
		o.Chunk = DefaultChunk
	}
	if o.Feature == ([3]float64{}) {
		o.Feature = DefaultFeature
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetClusterDefaults sets defaults for segmentation. Cutoff is left alone.
func (o *Options) SetClusterDefaults() {
	if o.Exponent == 0 {
		o.Exponent = DefaultExponent
	}
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	if o.Stride == ([3]int{}) {
		o.Stride = DefaultStride
	}
}

// SetPopulationDefaults sets defaults for star placement and aging. Count is
// left alone.
func (o *Options) SetPopulationDefaults() {
	if o.UniverseAge == 0 {
		o.UniverseAge = DefaultUniverseAge
	}
}

// RandomSeed returns a non-zero seed.
func RandomSeed() int64 {
	return rand.Int64N(1<<62) + 1
}

// FieldKeyOpts returns cache key options for the density field.
func (o *Options) FieldKeyOpts() cache.FieldKeyOpts {
	return cache.FieldKeyOpts{
		Seed:    o.Seed,
		Grid:    o.Grid,
		Chunk:   o.Chunk,
		Feature: o.Feature,
	}
}

// NoiseParams returns the noise generator parameters.
func (o *Options) NoiseParams() noise.Params {
	return noise.Params{
		Seed:     o.Seed,
		Grid:     grid.Dims(o.Grid),
		Chunk:    grid.Dims(o.Chunk),
		Feature:  o.Feature,
		Workers:  o.Workers,
		Progress: o.progress(StageField),
	}
}

// ClusterParams returns the segmentation parameters.
func (o *Options) ClusterParams() cluster.Params {
	return cluster.Params{
		Cutoff:   o.Cutoff,
		Radius:   o.Radius,
		Stride:   grid.Dims(o.Stride),
		Progress: o.progress(StageCluster),
	}
}

func (o *Options) progress(stage string) func(done, total int) {
	if o.Progress == nil {
		return nil
	}
	fn := o.Progress
	return func(done, total int) { fn(stage, done, total) }
}
