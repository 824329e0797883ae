package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/explorer"
	"github.com/matzehuels/latentscope/pkg/geometry"
	"github.com/matzehuels/latentscope/pkg/latent"
	"github.com/matzehuels/latentscope/pkg/recon"
)

// sampleCommand creates the sample command for one-shot lookups.
func (c *CLI) sampleCommand() *cobra.Command {
	var z string

	cmd := &cobra.Command{
		Use:   "sample [index]",
		Short: "Print a sample and its reconstruction",
		Long: `Print a sample's original text, its default latent vector and the
reconstruction decoded from a latent vector.

Without an index a random sample from the configured range is used. Without
--z the sample's default vector is decoded.`,
		Example: `  latentscope sample 42
  latentscope sample 42 --z 0,1,2,0,1
  latentscope sample --data-dir https://example.com/vae/ --max 1000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			e, err := c.open(ctx, logger)
			if err != nil {
				return err
			}
			defer e.Close()

			shared := recon.NewShared(e.client)
			settings, err := e.settings(ctx, shared)
			if err != nil {
				return err
			}
			sample, err := pickSample(args, settings, e.cfg.Explorer.Seed)
			if err != nil {
				return err
			}

			var override latent.Vector
			if z != "" {
				if override, err = latent.Parse(z); err != nil {
					return err
				}
			}

			prog := newProgress(logger)
			var res sampleResult
			err = withSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Loading sample %d", sample), func() error {
				res, err = lookupSample(ctx, shared, sample, override)
				return err
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded sample %d", sample))
			res.print(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&z, "z", "", "latent vector to decode, comma-separated (default: the sample's own)")

	return cmd
}

// pickSample returns the index from args, or a random one in range.
func pickSample(args []string, st explorer.Settings, seed uint64) (int, error) {
	if len(args) == 0 {
		if seed == 0 {
			seed = rand.Uint64()
		}
		r := rand.New(rand.NewPCG(seed, seed))
		return st.MinRange + r.IntN(st.MaxRange-st.MinRange), nil
	}
	sample, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidSample, "sample %q is not an integer", args[0])
	}
	if sample < st.MinRange || sample >= st.MaxRange {
		return 0, errors.New(errors.ErrCodeInvalidSample, "sample %d outside [%d, %d)", sample, st.MinRange, st.MaxRange)
	}
	return sample, nil
}

type sampleResult struct {
	sample         int
	original       string
	defaults       latent.Vector
	z              latent.Vector
	reconstruction string
}

func lookupSample(ctx context.Context, shared *recon.Shared, sample int, z latent.Vector) (sampleResult, error) {
	d, err := shared.Defaults(ctx)
	if err != nil {
		return sampleResult{}, err
	}
	text, v, err := d.Sample(sample)
	if err != nil {
		return sampleResult{}, err
	}
	if z == nil {
		z = v
	}
	out, err := shared.Reconstruction(ctx, sample, z)
	if err != nil {
		return sampleResult{}, err
	}
	return sampleResult{sample: sample, original: text, defaults: v, z: z, reconstruction: out}, nil
}

func (r sampleResult) print(w io.Writer) {
	printKeyValue(w, "sample", StyleNumber.Render(strconv.Itoa(r.sample)))
	printKeyValue(w, explorer.Captions[geometry.CaptionOriginal], StyleSentence.Render(r.original))
	printKeyValue(w, "default z", formatVector(r.defaults))
	if !r.z.Equal(r.defaults) {
		printKeyValue(w, "z", formatVector(r.z))
	}
	printKeyValue(w, explorer.Captions[geometry.CaptionReconstruction], StyleSentence.Render(r.reconstruction))
}
