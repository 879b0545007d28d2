// Package cli implements the stripweave command-line interface.
//
// This package provides the recompose command, which slices an image into
// strips and writes the original, vertical and horizontal interleavings as
// one composite, plus commands for managing the artifact cache. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
//   - recompose: Build the three-panel composite for one image
//   - cache: Inspect or clear the on-disk artifact cache
//   - completion: Generate shell completion scripts
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stripweave/pkg/buildinfo"
	"github.com/matzehuels/stripweave/pkg/cache"
	"github.com/matzehuels/stripweave/pkg/config"
	"github.com/matzehuels/stripweave/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stripweave"

	// redisConnectTimeout bounds the initial PING to a configured Redis cache.
	redisConnectTimeout = 3 * time.Second
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

// verbose reports whether debug logging is on.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stripweave recomposes images by interleaving strips",
		Long: `Stripweave slices an image into strips of a fixed size, reorders them so that
every odd strip comes before every even strip, first across columns and then
across rows, and stacks the original and both recompositions into one image.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.recomposeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the cache cc selects.
func (c *CLI) newRunner(ctx context.Context, cc config.CacheConfig) *pipeline.Runner {
	var keyer cache.Keyer
	if cc.Namespace != "" {
		keyer = cache.NewScopedKeyer(nil, cc.Namespace+":")
	}
	return pipeline.NewRunner(c.newCache(ctx, cc), keyer, c.Logger)
}

// newCache picks the cache backend: none when disabled, Redis when a URL is
// configured and reachable, otherwise the local file cache. Backend failures
// degrade to the next option since the cache never changes results.
func (c *CLI) newCache(ctx context.Context, cc config.CacheConfig) cache.Cache {
	if cc.Disabled {
		return cache.NewNullCache()
	}

	if cc.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(pingCtx, cc.RedisURL)
		if err == nil {
			c.Logger.Debug("using redis cache")
			return rc
		}
		c.Logger.Warn("redis cache unavailable, falling back to local cache", "error", err)
	}

	dir := cc.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache directory unusable, caching disabled", "dir", dir, "error", err)
		return cache.NewNullCache()
	}
	c.Logger.Debug("using file cache", "dir", dir)
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stripweave/).
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
