// Package cli implements the starscape command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/starscape/pkg/buildinfo"
	"github.com/matzehuels/starscape/pkg/cache"
	"github.com/matzehuels/starscape/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "starscape"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Starscape synthesizes procedural 3-D star fields",
		Long:         `Starscape builds a coherent-noise density field, groups its dense regions into star-forming clusters, places a stellar population and evolves every star to its age.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.fieldCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the field cache backend.
type cacheFlags struct {
	noCache   bool
	redisAddr string
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cf cacheFlags) (*pipeline.Runner, error) {
	ch, keyer, err := c.newCache(ctx, cf)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

// newCache picks redis when an address is given, the XDG file cache
// otherwise. An unreachable redis falls back to the file cache. Shared redis
// keys are scoped by release.
func (c *CLI) newCache(ctx context.Context, cf cacheFlags) (cache.Cache, cache.Keyer, error) {
	if cf.noCache {
		return cache.NewNullCache(), nil, nil
	}
	if cf.redisAddr != "" {
		rc := cache.NewRedisCache(cf.redisAddr, os.Getenv("STARSCAPE_REDIS_PASSWORD"), 0)
		err := rc.Ping(ctx)
		if err == nil {
			return rc, cache.NewScopedKeyer(nil, buildinfo.Version+":"), nil
		}
		c.Logger.Warn("redis unavailable, using file cache", "addr", cf.redisAddr, "error", err)
		rc.Close()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, nil, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/starscape/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
