package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/latent"
	"github.com/matzehuels/latentscope/pkg/recon"
	"github.com/matzehuels/latentscope/pkg/treeviz"
)

// Tree output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// treeCommand creates the tree command for exporting reconstruction trees.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		format    string
		output    string
		highlight string
		depth     int
	)

	cmd := &cobra.Command{
		Use:   "tree <index>",
		Short: "Export a sample's reconstruction tree",
		Long: `Export a sample's reconstruction tree as Graphviz DOT or SVG.

Every level of the tree is one latent dimension; the leaves are the
reconstructions. --highlight marks the path of a latent vector; "default"
marks the sample's own vector.`,
		Example: `  latentscope tree 42 -f svg -o 42.svg --highlight default
  latentscope tree 42 --depth 2 | dot -Tpng > 42.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			format = strings.ToLower(format)
			if format != formatDOT && format != formatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want dot or svg)", format)
			}

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
			sample, err := pickSample(args, settings, 0)
			if err != nil {
				return err
			}

			opts := treeviz.Options{MaxDepth: depth, Title: fmt.Sprintf("sample %d", sample)}
			switch highlight {
			case "":
			case "default":
				d, err := shared.Defaults(ctx)
				if err != nil {
					return err
				}
				if _, opts.Highlight, err = d.Sample(sample); err != nil {
					return err
				}
			default:
				if opts.Highlight, err = latent.Parse(highlight); err != nil {
					return err
				}
			}

			prog := newProgress(logger)
			tree, err := shared.Tree(ctx, sample)
			if err != nil {
				return err
			}
			data := []byte(treeviz.ToDOT(tree, opts))
			if format == formatSVG {
				if data, err = treeviz.RenderSVG(string(data)); err != nil {
					return err
				}
			}
			prog.done(fmt.Sprintf("Exported tree of sample %d", sample))

			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", output)
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %s tree", strings.ToUpper(format))
			printFile(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&highlight, "highlight", "", `latent vector path to highlight, or "default"`)
	cmd.Flags().IntVar(&depth, "depth", 0, "maximum depth to draw (0 draws the whole tree)")

	return cmd
}
