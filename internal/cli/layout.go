package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/latentscope/pkg/explorer"
	"github.com/matzehuels/latentscope/pkg/geometry"
	"github.com/matzehuels/latentscope/pkg/latent"
)

// layoutCommand creates the layout command for inspecting widget geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		width float64
		inset float64
		first bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the widget geometry for a viewport width",
		Long: `Print the widget geometry for a viewport width.

Shows the display mode and the position of every canvas element and widget
the explorer would use in a viewport of the given width. Positions are
relative to the widget container; --inset is the container's left offset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			consts := geometry.DefaultConstants()
			consts.Sliders = latent.Dims
			consts.LeftInset = inset
			l := geometry.Compute(consts, width, first)
			renderLayout(cmd.OutOrStdout(), width, l)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&width, "width", "w", 1024, "viewport width in pixels")
	cmd.Flags().Float64Var(&inset, "inset", 0, "left offset of the container in pixels")
	cmd.Flags().BoolVar(&first, "first", false, "lay out the first frame (always wide)")

	return cmd
}

// renderLayout prints a layout as a table of named positions.
func renderLayout(w io.Writer, width float64, l geometry.Layout) {
	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("%s layout", l.Mode))+StyleDim.Render(fmt.Sprintf("  viewport %.0fpx", width)))
	printKeyValue(w, "canvas", fmt.Sprintf("%.0f x %.0f", l.CanvasWidth, l.CanvasHeight))
	printKeyValue(w, "text box", fmt.Sprintf("%.1f", l.TextboxSize))
	printKeyValue(w, "slider", fmt.Sprintf("%.1f x %.1f", l.SliderWidth, l.SliderHeight))
	fmt.Fprintln(w)

	rows := [][]string{
		{"text", "original", coord(l.Original.X), coord(l.Original.Y)},
		{"text", "reconstruction", coord(l.Reconstruction.X), coord(l.Reconstruction.Y)},
	}
	for i, p := range l.Captions {
		rows = append(rows, []string{"caption", explorer.Captions[i], coord(p.X), coord(p.Y)})
	}
	labels := [geometry.NumButtons]string{explorer.LabelRandomSample, explorer.LabelRandomizeLatent, explorer.LabelResetLatent}
	for i, p := range l.Buttons {
		rows = append(rows, []string{"button", labels[i], coord(p.X), coord(p.Y)})
	}
	for i, p := range l.Sliders {
		rows = append(rows, []string{"slider", fmt.Sprintf("z%d", i+1), coord(p.X), coord(p.Y)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Element", "X", "Y").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorDim)
			case col >= 2:
				return base.Foreground(colorCyan).Align(lipgloss.Right)
			}
			return base
		})
	fmt.Fprintln(w, t.Render())
}

func coord(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
