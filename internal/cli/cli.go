// Package cli implements the roomweaver command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roomweaver/pkg/buildinfo"
	"github.com/matzehuels/roomweaver/pkg/cache"
	"github.com/matzehuels/roomweaver/pkg/pipeline"
	"github.com/matzehuels/roomweaver/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "roomweaver"

	// cliScope and apiScope keep CLI and server entries apart in a shared
	// Redis cache.
	cliScope = "cli:"
	apiScope = "api:"
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

	out     io.Writer
	logFile string
	rotator io.Closer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Roomweaver generates multi-floor room layouts from graphs",
		Long:         `Roomweaver turns a graph of rooms and a catalogue of room shapes into a placed, collision-free 3D layout whose doors realise every edge of the graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.logFile == "" {
				return nil
			}
			c.rotator = teeLogFile(c.Logger, c.out, c.logFile)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.rotator != nil {
				return c.rotator.Close()
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "also write logs to a rotating file")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.chainsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// backendFlags selects the cache and store behind a runner.
type backendFlags struct {
	noCache bool
	redis   string
	store   string
}

func (b *backendFlags) bindCache(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&b.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&b.redis, "redis", "", "use a Redis cache at this address instead of the file cache")
}

func (b *backendFlags) bindStore(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVar(&b.store, "store", "", usage+" (dir, file://, sqlite:// or mongodb:// URL)")
}

// newRunner creates a pipeline runner for CLI use. A store is opened when
// withStore is set or a store spec was given.
func (c *CLI) newRunner(ctx context.Context, b backendFlags, scope string, withStore bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, b)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, scope), c.Logger)
	if withStore || b.store != "" {
		st, err := store.Open(ctx, b.store)
		if err != nil {
			cc.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		runner.Store = st
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, b backendFlags) (cache.Cache, error) {
	switch {
	case b.noCache:
		return cache.NewNullCache(), nil
	case b.redis != "":
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: b.redis})
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/roomweaver/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	return strings.Split(s, ",")
}
