package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/latentscope/internal/config"
	"github.com/matzehuels/latentscope/internal/tui"
	"github.com/matzehuels/latentscope/pkg/recon"
)

// exploreCommand creates the explore command that runs the widget in the
// terminal.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		logFile string
		noMouse bool
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the latent space in the terminal",
		Long: `Explore the latent space in the terminal.

Shows a random training sentence, its latent vector as one slider per
dimension, and the sentence decoded from the current vector. Move a slider
to walk through the latent space; the reconstruction follows.

Keys: tab/shift+tab focus, ←/→ move a slider, enter presses a button,
n loads a new sentence, z randomizes the vector, r resets it, R retries a
failed load, ? toggles help, q quits.

The terminal is taken over while running, so logs go to --log-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if logFile == "" {
				dir, err := config.CacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				logFile = filepath.Join(dir, "explore.log")
			}
			logger, closer, err := openLogFile(logFile, loggerFromContext(ctx))
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer closer.Close()

			e, err := c.open(ctx, logger)
			if err != nil {
				return err
			}
			defer e.Close()

			// The sketch reuses the defaults table read to size the range.
			shared := recon.NewShared(e.client)
			settings := e.cfg.Explorer
			err = withSpinner(ctx, cmd.ErrOrStderr(), "Loading dataset", func() error {
				settings, err = e.settings(ctx, shared)
				return err
			})
			if err != nil {
				return err
			}

			m, err := tui.New(ctx, settings, tui.Options{
				CellWidth:  e.cfg.TUI.CellWidth,
				CellHeight: e.cfg.TUI.CellHeight,
				Source:     shared,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			if err := tui.Run(ctx, m, e.cfg.TUI.Mouse && !noMouse); err != nil {
				return err
			}

			st := m.Sketch().Stats()
			defaults, trees := m.Sketch().Fetches()
			printDetail(cmd.OutOrStdout(), "%d frames, %d relayouts, %d tree fetches, %d defaults fetches", st.Frames, st.Relayouts, trees, defaults)
			printDetail(cmd.OutOrStdout(), "Log: %s", logFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "log file (default $XDG_CACHE_HOME/latentscope/explore.log)")
	cmd.Flags().BoolVar(&noMouse, "no-mouse", false, "disable mouse input")

	return cmd
}
