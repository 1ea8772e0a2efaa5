package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/starscape/pkg/catalog"
	"github.com/matzehuels/starscape/pkg/observability"
	"github.com/matzehuels/starscape/pkg/pipeline"
)

// generateFlags holds flags for the generate command.
type generateFlags struct {
	options      optionFlags
	cache        cacheFlags
	interactive  bool
	out          string
	render       bool
	scale        int
	exposure     float64
	distance     float64
	mongoURI     string
	mongoDB      string
	metricsFile  string
	quietSummary bool
}

// generateCommand creates the generate command for running the full pipeline.
func (c *CLI) generateCommand() *cobra.Command {
	flags := generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Synthesize a star field and write its catalog",
		Long: `Generate runs the full pipeline: density field, cluster segmentation,
star placement and stellar evolution. The catalog is written as JSON to the
output directory; --render adds density, cluster, star field and HR images.

Options are read from --config, then --interactive answers, then flags, then
--set overrides, later sources winning.`,
		Example: `  starscape generate --seed 42 --out run42 --render
  starscape generate --config field.toml --set cutoff=0.6
  starscape generate --grid 16x64x64 --chunk 16x32x32 --count 2000 -i`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, flags)
		},
	}

	flags.options.registerField(cmd.Flags())
	flags.options.registerPopulation(cmd.Flags())
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "prompt for the main options")
	cmd.Flags().StringVarP(&flags.out, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&flags.render, "render", false, "write density, cluster, star field and HR images")
	cmd.Flags().IntVar(&flags.scale, "scale", 4, "pixel scale for rendered images")
	cmd.Flags().Float64Var(&flags.exposure, "exposure", 50, "star field flux multiplier before it maps to opacity")
	cmd.Flags().Float64Var(&flags.distance, "distance", 0, "viewing distance along axis 0; >0 also sums the density projection by inverse square")
	cmd.Flags().StringVar(&flags.mongoURI, "mongo-uri", "", "also write the catalog to this MongoDB")
	cmd.Flags().StringVar(&flags.mongoDB, "mongo-db", catalog.DefaultDatabase, "MongoDB database")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	cmd.Flags().BoolVarP(&flags.quietSummary, "quiet", "q", false, "skip the summary tables")
	cmd.Flags().BoolVar(&flags.cache.noCache, "no-cache", false, "disable the field cache")
	cmd.Flags().StringVar(&flags.cache.redisAddr, "redis-addr", "", "redis address for a shared field cache")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, flags generateFlags) error {
	ctx := cmd.Context()

	var base []string
	if flags.interactive {
		answers, fallbacks, err := runPrompt(ctx, os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
		for _, key := range fallbacks {
			printWarning("Invalid %s, using the default", key)
		}
		base = answers
	}

	opts, err := flags.options.load(cmd, base...)
	if err != nil {
		return err
	}

	var prom *observability.PromHooks
	if flags.metricsFile != "" {
		prom = observability.NewPromHooks()
		observability.SetPipelineHooks(prom)
		observability.SetCacheHooks(prom)
		defer observability.Reset()
	}

	runner, err := c.newRunner(ctx, flags.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Generating star field...")
	opts.Progress = func(stage string, done, total int) {
		spinner.SetMessage(stageMessage(stage, done, total))
	}
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Generated %d stars in %d clusters (%s)",
		len(res.Stars), res.ClusterCount, res.Stats.Total().Round(time.Millisecond)))
	printFieldStats(res.Stats.Voxels, res.CacheInfo.FieldSource, res.CacheInfo.FieldHit)
	printDetail("Seed: %d · Run: %s", res.Options.Seed, res.RunID)

	cat := catalog.FromResult(res)
	var view *imageOptions
	if flags.render {
		view = &imageOptions{Scale: flags.scale, Exposure: flags.exposure, Distance: flags.distance}
	}
	paths, err := writeOutputs(flags.out, res, cat, view)
	for _, p := range paths {
		printFile(p)
	}
	if err != nil {
		return err
	}

	if flags.mongoURI != "" {
		if err := c.writeMongo(ctx, flags.mongoURI, flags.mongoDB, cat); err != nil {
			return err
		}
	}

	if prom != nil {
		if err := prom.WriteTextfile(flags.metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		printFile(flags.metricsFile)
	}

	if !flags.quietSummary {
		fmt.Println()
		fmt.Println(renderSummary(res, catalog.Summarize(res.Stars)))
	}
	return nil
}

// writeOutputs writes the catalog and, when view is set, the images into dir.
// It returns the paths written so far, also on error.
func writeOutputs(dir string, res *pipeline.Result, cat *catalog.Catalog, view *imageOptions) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	path := filepath.Join(dir, catalog.FileName)
	if err := catalog.Save(path, cat); err != nil {
		return paths, err
	}
	paths = append(paths, path)

	if view == nil {
		return paths, nil
	}
	rendered, err := renderImages(dir, res, *view)
	return append(paths, rendered...), err
}

// writeMongo replaces the run's stars in the stars collection.
func (c *CLI) writeMongo(ctx context.Context, uri, database string, cat *catalog.Catalog) error {
	prog := newProgress(c.Logger)
	sink, err := catalog.NewMongoSink(ctx, uri, database, catalog.DefaultCollection)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = sink.Close(closeCtx)
	}()

	n, err := sink.Write(ctx, cat)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("write catalog to mongo: %w", err)
	}
	prog.done("Wrote catalog to mongo")
	printSuccess("Stored %d stars in %s.%s", n, database, catalog.DefaultCollection)
	return nil
}
