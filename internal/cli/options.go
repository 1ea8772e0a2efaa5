package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/starscape/pkg/pipeline"
)

// optionFlags are the command-line forms of pipeline options. Flag names are
// the option keys with dashes, so a changed flag becomes a key=value override.
type optionFlags struct {
	config    string
	overrides []string
}

// fieldFlagNames are the options the density field depends on.
var fieldFlagNames = []string{"seed", "grid", "chunk", "feature", "workers", "refresh"}

// populationFlagNames are the remaining pipeline options.
var populationFlagNames = []string{"exponent", "cutoff", "radius", "stride", "count", "universe-age", "field-path"}

// registerField adds the config and density field flags.
func (o *optionFlags) registerField(fs *pflag.FlagSet) {
	fs.StringVarP(&o.config, "config", "c", "", "options file (.toml, .yaml or .yml)")
	fs.StringArrayVar(&o.overrides, "set", nil, "override an option as key=value (repeatable)")

	fs.Int64("seed", 0, "noise seed (0 picks a random seed)")
	fs.String("grid", "", "grid size as d0,d1,d2 (default 32,128,128)")
	fs.String("chunk", "", "chunk size as c0,c1,c2; must divide the grid (default 32,32,32)")
	fs.String("feature", "", "noise feature size per axis (default 64,128,128)")
	fs.Int("workers", 0, "concurrent noise tasks (default: number of CPUs)")
	fs.Bool("refresh", false, "ignore the field file and the cache")
}

// registerPopulation adds the clustering and population flags.
func (o *optionFlags) registerPopulation(fs *pflag.FlagSet) {
	fs.Float64("exponent", 0, "power applied to the field before clustering (default 2)")
	fs.Float64("cutoff", 0, "cluster density threshold in [0, 1]; 0 makes every voxel a candidate (default 0.7)")
	fs.Int("radius", 0, "cluster window half-width in voxels (default 9)")
	fs.String("stride", "", "cluster scan step as s0,s1,s2 (default 1,9,9)")
	fs.Int("count", 0, "number of stars; 0 places none (default 15000)")
	fs.Float64("universe-age", 0, "age of the universe in Gyr (default 13.8)")
	fs.String("field-path", "", "raw field file, read if present and written after generation")
}

// load builds pipeline options from the config file, base, the changed
// flags and --set overrides, in increasing precedence.
func (o *optionFlags) load(cmd *cobra.Command, base ...string) (pipeline.Options, error) {
	overrides := append([]string(nil), base...)
	for _, group := range [][]string{fieldFlagNames, populationFlagNames} {
		for _, name := range group {
			f := cmd.Flags().Lookup(name)
			if f != nil && f.Changed {
				overrides = append(overrides, name+"="+f.Value.String())
			}
		}
	}
	overrides = append(overrides, o.overrides...)
	return pipeline.LoadOptions(o.config, overrides)
}
