package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/latentscope/pkg/explorer"
)

type cell struct {
	r     rune
	style int
}

// screen is a fixed-size character grid with one style per cell.
type screen struct {
	cols, rows int
	cells      [][]cell
	styles     []lipgloss.Style
}

func newScreen(cols, rows int) *screen {
	s := &screen{cols: cols, rows: rows, styles: []lipgloss.Style{lipgloss.NewStyle()}}
	s.cells = make([][]cell, rows)
	for r := range s.cells {
		s.cells[r] = make([]cell, cols)
		for c := range s.cells[r] {
			s.cells[r][c] = cell{r: ' '}
		}
	}
	return s
}

// style registers st and returns its index.
func (s *screen) style(st lipgloss.Style) int {
	s.styles = append(s.styles, st)
	return len(s.styles) - 1
}

// put writes text starting at (col, row), clipped to the grid.
func (s *screen) put(col, row int, text string, style int) {
	if row < 0 || row >= s.rows {
		return
	}
	c := col
	for _, r := range text {
		if c >= s.cols {
			return
		}
		if c >= 0 {
			s.cells[row][c] = cell{r: r, style: style}
		}
		c++
	}
}

// String renders the grid, grouping runs of equally styled cells.
func (s *screen) String() string {
	var b strings.Builder
	for r, line := range s.cells {
		end := len(line)
		for end > 0 && line[end-1].r == ' ' && line[end-1].style == 0 {
			end--
		}
		start := 0
		for start < end {
			j := start
			var run strings.Builder
			for j < end && line[j].style == line[start].style {
				run.WriteRune(line[j].r)
				j++
			}
			if line[start].style == 0 {
				b.WriteString(run.String())
			} else {
				b.WriteString(s.styles[line[start].style].Render(run.String()))
			}
			start = j
		}
		if r < len(s.cells)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// wrap breaks s into lines of at most width columns.
func wrap(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	out := lipgloss.NewStyle().Width(width).Render(s)
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

// colorOf maps a canvas color to a terminal color. Black captions follow
// the terminal background instead of disappearing on dark themes.
func colorOf(c explorer.Color) lipgloss.TerminalColor {
	if c == (explorer.Color{}) {
		return lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
