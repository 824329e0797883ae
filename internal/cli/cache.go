package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/latentscope/internal/config"
	"github.com/matzehuels/latentscope/pkg/cache"
	"github.com/matzehuels/latentscope/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the asset cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached asset",
		Long: `Delete every cached asset.

Only the file backend can be cleared from here; redis and mongo entries
expire with the configured ttl.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.flags.config()
			if err != nil {
				return err
			}
			return clearCache(cmd.Context(), cmd, cfg)
		},
	}
}

func clearCache(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	out := cmd.OutOrStdout()
	switch cfg.Cache.Backend {
	case cache.BackendNone:
		printInfo(out, "Cache is disabled")
		return nil
	case cache.BackendFile:
	default:
		return errors.New(errors.ErrCodeUnsupported, "cannot clear the %s cache backend; entries expire after %s", cfg.Cache.Backend, cfg.Cache.TTL.Duration)
	}

	if _, err := os.Stat(cfg.Cache.Dir); os.IsNotExist(err) {
		printInfo(out, "Cache is empty")
		return nil
	}
	opts := cfg.CacheOptions()
	store, err := cache.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	fc, ok := store.(*cache.FileCache)
	if !ok {
		return errors.New(errors.ErrCodeInternal, "file backend opened as %T", store)
	}
	count, err := fc.Clear()
	if err != nil {
		return err
	}
	printSuccess(out, "Cleared %d cached entries", count)
	printDetail(out, "Directory: %s", fc.Dir())
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.flags.config()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != cache.BackendFile {
				printWarning(cmd.ErrOrStderr(), "cache backend is %s", cfg.Cache.Backend)
			}
			dir := cfg.Cache.Dir
			if dir == "" {
				if dir, err = config.CacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
