package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/starscape/pkg/pipeline"
	"github.com/matzehuels/starscape/pkg/render"
)

// fieldFlags holds flags for the field command.
type fieldFlags struct {
	options  optionFlags
	cache    cacheFlags
	out      string
	png      bool
	distance float64
	scale    int
}

// fieldCommand creates the field command, which only builds the density field.
func (c *CLI) fieldCommand() *cobra.Command {
	flags := fieldFlags{}

	cmd := &cobra.Command{
		Use:   "field",
		Short: "Generate the density field and write it as raw float64 data",
		Long: `Field generates the normalized density field, or loads it from the raw
file or the cache, and writes it as little-endian float64 values in row-major
order. A later generate run with --field-path picks it up.`,
		Example: `  starscape field --seed 42 --out field.raw --png
  starscape field --grid 64x128x128 --chunk 32x32x32 --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runField(cmd, flags)
		},
	}

	flags.options.registerField(cmd.Flags())
	cmd.Flags().StringVarP(&flags.out, "out", "o", "field.raw", "raw field file")
	cmd.Flags().BoolVar(&flags.png, "png", false, "also write a projection image next to the field file")
	cmd.Flags().Float64Var(&flags.distance, "distance", 0, "inverse-square projection distance (0 takes the maximum)")
	cmd.Flags().IntVar(&flags.scale, "scale", 4, "pixel scale for the projection image")
	cmd.Flags().BoolVar(&flags.cache.noCache, "no-cache", false, "disable the field cache")
	cmd.Flags().StringVar(&flags.cache.redisAddr, "redis-addr", "", "redis address for a shared field cache")

	return cmd
}

func (c *CLI) runField(cmd *cobra.Command, flags fieldFlags) error {
	ctx := cmd.Context()

	opts, err := flags.options.load(cmd)
	if err != nil {
		return err
	}
	opts.FieldPath = flags.out
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Building density field...")
	opts.Progress = func(stage string, done, total int) {
		spinner.SetMessage(stageMessage(stage, done, total))
	}
	spinner.Start()
	f, source, err := runner.FieldWithSource(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Density field ready")

	printSuccess("Density field %s", f.Dims)
	printFieldStats(len(f.Data), source, source != pipeline.SourceGenerated)
	printFile(flags.out)

	if flags.png {
		path := strings.TrimSuffix(flags.out, filepath.Ext(flags.out)) + ".png"
		img := render.Scale(render.Projection(f, flags.distance), flags.scale)
		if err := render.SavePNG(path, img); err != nil {
			return fmt.Errorf("write projection: %w", err)
		}
		printFile(path)
	}

	fmt.Println()
	printNextStep("Generate stars from it", fmt.Sprintf("%s generate --field-path %s --seed %d", appName, flags.out, opts.Seed))
	return nil
}
