// Package tui hosts the explorer widget in a terminal.
//
// The [Model] is a bubbletea program that implements the widget's host
// capabilities: a [Toolkit] with a retained character canvas, slider and
// button widgets driven by keys and the mouse, and an [Executor] that runs
// fetches as bubbletea commands. Frame ticks arrive at the configured
// frame rate and window resizes are reported in pixels, one cell being
// CellWidth by CellHeight pixels.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/latentscope/pkg/explorer"
	"github.com/matzehuels/latentscope/pkg/source"
)

// headerRows is the height of the title block above the widget.
const headerRows = 2

var (
	colorCyan   = lipgloss.Color("36")
	colorYellow = lipgloss.Color("220")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleWidget  = lipgloss.NewStyle().Foreground(colorGray)
	styleFocused = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

type frameMsg time.Time

// Options configures a [Model].
type Options struct {
	// CellWidth and CellHeight give the pixel size of one terminal cell.
	CellWidth  float64
	CellHeight float64
	// Source overrides the client built from Settings.DataDir.
	Source source.Source
	Logger *log.Logger
}

// Model is the bubbletea model hosting one explorer sketch.
type Model struct {
	ctx    context.Context
	sketch *explorer.Sketch
	tk     *Toolkit
	exec   *Executor

	keys keyMap
	help help.Model

	focus  int
	width  int
	height int
}

// New builds the sketch and runs its setup. The first sample load is
// queued and starts with [Model.Init].
func New(ctx context.Context, settings explorer.Settings, opts Options) (Model, error) {
	tk := NewToolkit(opts.CellWidth, opts.CellHeight)
	exec := &Executor{}
	s, err := explorer.New(settings, explorer.Deps{
		Toolkit:  tk,
		Executor: exec,
		Source:   opts.Source,
		Logger:   opts.Logger,
	})
	if err != nil {
		return Model{}, err
	}
	if err := s.OnSetup(); err != nil {
		return Model{}, err
	}
	return Model{
		ctx:    ctx,
		sketch: s,
		tk:     tk,
		exec:   exec,
		keys:   defaultKeys(),
		help:   help.New(),
	}, nil
}

// Sketch returns the hosted widget.
func (m Model) Sketch() *explorer.Sketch { return m.sketch }

// Focus returns the index of the focused widget: sliders first, then
// buttons.
func (m Model) Focus() int { return m.focus }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.exec.Cmd(m.ctx))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.sketch.OnFrame()
		return m, tea.Batch(m.tick(), m.exec.Cmd(m.ctx))
	case eventMsg:
		m.sketch.Deliver(msg.ev)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.sketch.OnViewportResize(float64(msg.Width) * m.tk.cellW)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Next):
			m.focus = (m.focus + 1) % m.widgets()
		case key.Matches(msg, m.keys.Prev):
			m.focus = (m.focus + m.widgets() - 1) % m.widgets()
		case key.Matches(msg, m.keys.Left):
			if s := m.focusedSlider(); s != nil {
				s.Nudge(-1)
			}
		case key.Matches(msg, m.keys.Right):
			if s := m.focusedSlider(); s != nil {
				s.Nudge(1)
			}
		case key.Matches(msg, m.keys.Press):
			if b := m.focusedButton(); b != nil {
				b.Press()
			}
		case key.Matches(msg, m.keys.Sample):
			m.sketch.LoadRandomSample()
		case key.Matches(msg, m.keys.Randomize):
			m.sketch.RandomizeLatent()
		case key.Matches(msg, m.keys.Reset):
			m.sketch.ResetLatent()
		case key.Matches(msg, m.keys.Retry):
			m.sketch.Retry()
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m = m.click(msg.X, msg.Y-headerRows)
		}
	}
	return m, m.exec.Cmd(m.ctx)
}

func (m Model) View() string {
	var b strings.Builder

	settings := m.sketch.Settings()
	b.WriteString(styleTitle.Render("latentscope"))
	b.WriteString(styleDim.Render(fmt.Sprintf("  #%s  sample %d  %s", settings.ContainerID, m.sketch.Sample(), m.sketch.Mode())))
	b.WriteString("\n\n")
	b.WriteString(m.paint().String())
	b.WriteString("\n")
	if status := m.sketch.Status(); status != "" {
		b.WriteString(styleWarning.Render("! " + status))
		b.WriteString(styleDim.Render("  (R to retry)"))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) tick() tea.Cmd {
	fps := m.sketch.Settings().FrameRate
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) widgets() int {
	return len(m.tk.sliders) + len(m.tk.buttons)
}

func (m Model) focusedSlider() *Slider {
	if m.focus < len(m.tk.sliders) {
		return m.tk.sliders[m.focus]
	}
	return nil
}

func (m Model) focusedButton() *Button {
	i := m.focus - len(m.tk.sliders)
	if i >= 0 && i < len(m.tk.buttons) {
		return m.tk.buttons[i]
	}
	return nil
}

// click focuses and operates the widget under the cell (col, row).
func (m Model) click(col, row int) Model {
	for i, s := range m.tk.sliders {
		c, n := m.tk.col(s.x), m.tk.cells(s.width)
		if row != m.tk.row(s.y) || col < c || col >= c+n {
			continue
		}
		m.focus = i
		if n > 1 {
			s.SetFraction(float64(col-c) / float64(n-1))
		}
		return m
	}
	for i, b := range m.tk.buttons {
		c := m.tk.col(b.x)
		if row != m.tk.row(b.y) || col < c || col >= c+len([]rune(b.text())) {
			continue
		}
		m.focus = len(m.tk.sliders) + i
		b.Press()
		return m
	}
	return m
}

// paint draws the canvas and the widgets onto a fresh screen.
func (m Model) paint() *screen {
	origin := m.tk.Origin(m.sketch.Settings().ContainerID)
	w, h := m.sketch.Layout().Bounds()
	cols := m.tk.col(origin.X+w) + 1
	rows := m.tk.row(origin.Y+h) + 2
	if m.width > 0 && cols > m.width {
		cols = m.width
	}
	sc := newScreen(cols, rows)

	if c := m.tk.Canvas(); c != nil {
		for _, it := range c.items {
			st := lipgloss.NewStyle().Foreground(colorOf(it.color))
			if it.size < explorer.TextSize {
				st = st.Bold(true)
			}
			idx := sc.style(st)
			col, row := m.tk.col(origin.X+it.x), m.tk.row(origin.Y+it.y)
			if it.box <= 0 {
				sc.put(col, row, it.s, idx)
				continue
			}
			for i, line := range wrap(it.s, m.tk.cells(it.box)) {
				sc.put(col, row+i, line, idx)
			}
		}
	}

	widget, focused := sc.style(styleWidget), sc.style(styleFocused)
	pick := func(i int) int {
		if i == m.focus {
			return focused
		}
		return widget
	}
	for i, s := range m.tk.sliders {
		sc.put(m.tk.col(s.x), m.tk.row(s.y), track(s, m.tk.cells(s.width)), pick(i))
	}
	for i, b := range m.tk.buttons {
		sc.put(m.tk.col(b.x), m.tk.row(b.y), b.text(), pick(len(m.tk.sliders)+i))
	}
	return sc
}

// track renders a slider n cells wide.
func track(s *Slider, n int) string {
	n = max(n, 3)
	r := []rune(strings.Repeat("─", n))
	r[int(math.Round(s.fraction()*float64(n-1)))] = '●'
	return string(r)
}

// Run starts the program on the terminal and blocks until it quits.
func Run(ctx context.Context, m Model, mouse bool) error {
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
