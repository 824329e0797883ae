// Package cli implements the latentscope command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/latentscope/internal/config"
	"github.com/matzehuels/latentscope/pkg/buildinfo"
	"github.com/matzehuels/latentscope/pkg/cache"
	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/explorer"
	"github.com/matzehuels/latentscope/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "latentscope"
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
	flags  rootFlags
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
		Short:        "latentscope explores the latent space of a sentence VAE",
		Long:         `latentscope shows a training sentence next to its reconstruction from a discrete latent vector, and lets you move through the latent space one dimension at a time.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	c.flags.register(root)

	// Register all subcommands
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Source Factory
// =============================================================================

// env is what most commands need: the resolved configuration and a client
// for the data directory backed by the configured cache.
type env struct {
	cfg    config.Config
	client *source.Client
	cache  cache.Cache
}

func (e *env) Close() error { return e.cache.Close() }

// open loads the configuration, applies flag overrides and connects the
// asset cache. The caller must Close the returned env.
func (c *CLI) open(ctx context.Context, logger *log.Logger) (*env, error) {
	cfg, err := c.flags.config()
	if err != nil {
		return nil, err
	}
	if cfg.Explorer.DataDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no data directory: set [explorer] data_dir or pass --data-dir")
	}

	store, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		logger.Warn("asset cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "err", err)
		store = cache.NewNullCache()
	}
	client, err := source.New(cfg.Explorer.DataDir, source.Options{
		Cache:  store,
		Keyer:  cache.NewScopedKeyer(nil, appName+":"),
		TTL:    cfg.Cache.TTL.Duration,
		Logger: logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	logger.Debug("data source", "dir", source.Describe(client.Base()), "cache", cfg.Cache.Backend)
	return &env{cfg: cfg, client: client, cache: store}, nil
}

// settings returns validated explorer settings. An unset max_range is
// taken from the size of the defaults table.
func (e *env) settings(ctx context.Context, src source.Source) (explorer.Settings, error) {
	st := e.cfg.Explorer
	if st.MaxRange == 0 {
		d, err := src.Defaults(ctx)
		if err != nil {
			return st, errors.Wrap(errors.ErrCodeUnavailable, err, "read defaults table to size the sample range")
		}
		st.MaxRange = d.Len()
	}
	if err := st.ValidateAndSetDefaults(); err != nil {
		return st, err
	}
	return st, nil
}
