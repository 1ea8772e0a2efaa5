package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/starscape/pkg/cache"
	"github.com/matzehuels/starscape/pkg/cluster"
	serr "github.com/matzehuels/starscape/pkg/errors"
	"github.com/matzehuels/starscape/pkg/grid"
	"github.com/matzehuels/starscape/pkg/noise"
	"github.com/matzehuels/starscape/pkg/observability"
	"github.com/matzehuels/starscape/pkg/population"
	"github.com/matzehuels/starscape/pkg/rng"
	"github.com/matzehuels/starscape/pkg/stellar"
)

// TTLField is how long a cached density field is kept.
const TTLField = 30 * 24 * time.Hour

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Resolver *stellar.Resolver
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Resolver: stellar.NewResolver(),
	}
}

// Execute runs the complete field → cluster → stars → age pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:   uuid.NewString(),
		Options: opts,
	}
	seed := uint64(opts.Seed)
	r.Logger.Info("starting run", "run", result.RunID, "seed", opts.Seed, "grid", grid.Dims(opts.Grid))

	// Stage 1: Field
	var (
		field  *grid.Field
		source string
	)
	d, err := r.stage(ctx, StageField, func() (int, error) {
		var err error
		field, source, err = r.FieldWithSource(ctx, opts)
		if err != nil {
			return 0, err
		}
		return len(field.Data), nil
	})
	if err != nil {
		return nil, err
	}
	result.Field = field
	result.Stats.FieldTime = d
	result.Stats.Voxels = len(field.Data)
	result.CacheInfo.FieldSource = source
	result.CacheInfo.FieldHit = source != SourceGenerated

	r.Logger.Info("density field ready",
		"source", source,
		"voxels", result.Stats.Voxels,
		"duration", d)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Cluster
	d, err = r.stage(ctx, StageCluster, func() (int, error) {
		result.Probability = field.Pow(opts.Exponent)
		result.Labels, result.ClusterCount = cluster.Segment(
			result.Probability, opts.ClusterParams(), rng.Derive(seed, streamCluster))
		result.ClusterAges = cluster.Ages(
			result.ClusterCount, opts.UniverseAge, rng.Derive(seed, streamClusterAges))
		return result.ClusterCount, nil
	})
	if err != nil {
		return nil, err
	}
	result.Stats.ClusterTime = d
	result.Stats.Clusters = result.ClusterCount

	r.Logger.Info("segmented clusters",
		"clusters", result.ClusterCount,
		"cutoff", opts.Cutoff,
		"duration", d)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Stars
	var stars []stellar.Star
	d, err = r.stage(ctx, StageStars, func() (int, error) {
		var err error
		stars, err = population.Generate(
			result.Probability, result.Labels, opts.Count, rng.Derive(seed, streamStars))
		return len(stars), err
	})
	if err != nil {
		return nil, err
	}
	result.Stats.StarTime = d

	r.Logger.Info("placed stars",
		"stars", len(stars),
		"duration", d)

	// Stage 4: Age
	d, err = r.stage(ctx, StageAge, func() (int, error) {
		result.Stars = population.Age(
			stars, result.ClusterAges, opts.UniverseAge, r.resolver(), rng.Derive(seed, streamAge))
		return len(result.Stars), nil
	})
	if err != nil {
		return nil, err
	}
	result.Stats.AgeTime = d
	result.Stats.Stars = len(result.Stars)

	r.Logger.Info("evolved stars",
		"stars", result.Stats.Stars,
		"duration", d)

	return result, nil
}

// FieldWithSource returns the normalized density field and where it came
// from. Unless opts.Refresh is set it tries, in order, the raw file at
// opts.FieldPath and the cache before generating. A generated field is
// written to the cache and to opts.FieldPath.
//
// A missing or unreadable field file is regenerated. A field file of the
// wrong size is an error: it was written for different options.
func (r *Runner) FieldWithSource(ctx context.Context, opts Options) (*grid.Field, string, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", err
	}
	dims := grid.Dims(opts.Grid)

	if opts.FieldPath != "" && !opts.Refresh {
		f, err := grid.LoadRaw(opts.FieldPath, dims)
		switch {
		case err == nil:
			return f, SourceFile, nil
		case serr.Is(err, serr.ErrCodeInvalidGrid):
			return nil, "", err
		case serr.Is(err, serr.ErrCodeNotFound):
			r.Logger.Info("field file not found, regenerating", "path", opts.FieldPath)
		default:
			r.Logger.Warn("field file unreadable, regenerating", "path", opts.FieldPath, "error", err)
		}
	}

	hooks := observability.Cache()
	cacheKey := r.Keyer.FieldKey(opts.FieldKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if f, err := grid.DecodeRaw(data, dims); err == nil {
				hooks.OnCacheHit(ctx, "field")
				r.Logger.Debug("field cache hit", "key", cacheKey)
				r.persist(opts, f)
				return f, SourceCache, nil
			}
			// If decoding fails, fall through to regenerate
		} else if err != nil {
			r.Logger.Warn("field cache read failed", "error", err)
		}
		hooks.OnCacheMiss(ctx, "field")
	}

	f, err := noise.Generate(ctx, opts.NoiseParams())
	if err != nil {
		return nil, "", err
	}

	data := grid.EncodeRaw(f)
	if err := r.Cache.Set(ctx, cacheKey, data, TTLField); err != nil {
		r.Logger.Warn("field cache write failed", "error", err)
	} else {
		hooks.OnCacheSet(ctx, "field", len(data))
	}
	r.persist(opts, f)

	return f, SourceGenerated, nil
}

// Field is a convenience wrapper that calls FieldWithSource and discards the source.
func (r *Runner) Field(ctx context.Context, opts Options) (*grid.Field, error) {
	f, _, err := r.FieldWithSource(ctx, opts)
	return f, err
}

func (r *Runner) persist(opts Options, f *grid.Field) {
	if opts.FieldPath == "" {
		return
	}
	if err := grid.SaveRaw(opts.FieldPath, f); err != nil {
		r.Logger.Warn("could not write field file", "path", opts.FieldPath, "error", err)
		return
	}
	r.Logger.Debug("wrote field file", "path", opts.FieldPath)
}

// stage runs fn between the observability hooks and prefixes its error with
// the stage name.
func (r *Runner) stage(ctx context.Context, name string, fn func() (int, error)) (time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	items, err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(ctx, name, items, d, err)
	if err != nil {
		return d, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func (r *Runner) resolver() *stellar.Resolver {
	if r.Resolver == nil {
		return stellar.NewResolver()
	}
	return r.Resolver
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
