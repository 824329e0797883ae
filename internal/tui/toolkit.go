package tui

import (
	"math"

	"github.com/matzehuels/latentscope/pkg/explorer"
	"github.com/matzehuels/latentscope/pkg/geometry"
)

// marginCols is the left margin of the widget, in cells.
const marginCols = 2

// Toolkit implements explorer.Toolkit over a character grid. Widget
// positions are kept in pixels and mapped to cells with the configured
// cell size when the screen is painted.
type Toolkit struct {
	cellW, cellH float64

	canvas  *Canvas
	sliders []*Slider
	buttons []*Button
}

// NewToolkit returns a toolkit whose cells measure cellW by cellH pixels.
func NewToolkit(cellW, cellH float64) *Toolkit {
	if cellW <= 0 {
		cellW = 8
	}
	if cellH <= 0 {
		cellH = 16
	}
	return &Toolkit{cellW: cellW, cellH: cellH}
}

// CreateCanvas implements explorer.Toolkit.
func (t *Toolkit) CreateCanvas(width, height float64) explorer.Surface {
	t.canvas = newCanvas(width, height)
	return t.canvas
}

// CreateSlider implements explorer.Toolkit.
func (t *Toolkit) CreateSlider(min, max, value, step int, onInput func()) explorer.Slider {
	if step <= 0 {
		step = 1
	}
	s := &Slider{min: min, max: max, step: step, onInput: onInput}
	s.SetValue(value)
	t.sliders = append(t.sliders, s)
	return s
}

// CreateButton implements explorer.Toolkit.
func (t *Toolkit) CreateButton(label string, onPress func()) explorer.Button {
	b := &Button{label: label, onPress: onPress}
	t.buttons = append(t.buttons, b)
	return b
}

// Origin implements explorer.Toolkit. The terminal hosts a single
// container, indented by a fixed margin.
func (t *Toolkit) Origin(string) geometry.Point {
	return geometry.Point{X: marginCols * t.cellW}
}

// Canvas returns the canvas, or nil before the sketch is set up.
func (t *Toolkit) Canvas() *Canvas { return t.canvas }

// Sliders returns the sliders in creation order.
func (t *Toolkit) Sliders() []*Slider { return t.sliders }

// Buttons returns the buttons in creation order.
func (t *Toolkit) Buttons() []*Button { return t.buttons }

// col maps a pixel x coordinate to a cell column.
func (t *Toolkit) col(x float64) int { return int(math.Floor(x / t.cellW)) }

// row maps a pixel y coordinate to a cell row.
func (t *Toolkit) row(y float64) int { return int(math.Floor(y / t.cellH)) }

// cells maps a pixel width to a cell count, never below one.
func (t *Toolkit) cells(w float64) int {
	n := int(math.Round(w / t.cellW))
	if n < 1 {
		return 1
	}
	return n
}

// =============================================================================
// Widgets
// =============================================================================

// Slider is an integer range input drawn as a track with a knob.
type Slider struct {
	min, max, step int
	value          int
	x, y, width    float64
	onInput        func()
}

// Value implements explorer.Slider.
func (s *Slider) Value() int { return s.value }

// SetValue implements explorer.Slider. Values are clamped to the range
// and the input handler is not called.
func (s *Slider) SetValue(v int) { s.value = s.clamp(v) }

// SetWidth implements explorer.Slider.
func (s *Slider) SetWidth(w float64) { s.width = w }

// Position implements explorer.Slider.
func (s *Slider) Position(x, y float64) { s.x, s.y = x, y }

// Nudge moves the knob by delta steps as a user would and reports the
// change to the input handler.
func (s *Slider) Nudge(delta int) {
	s.input(s.value + delta*s.step)
}

// SetFraction moves the knob to the step closest to f in [0, 1] as a user
// would.
func (s *Slider) SetFraction(f float64) {
	f = math.Max(0, math.Min(1, f))
	steps := (s.max - s.min) / s.step
	s.input(s.min + int(math.Round(f*float64(steps)))*s.step)
}

func (s *Slider) input(v int) {
	v = s.clamp(v)
	if v == s.value {
		return
	}
	s.value = v
	if s.onInput != nil {
		s.onInput()
	}
}

func (s *Slider) clamp(v int) int {
	return max(s.min, min(s.max, v))
}

// fraction returns the knob position in [0, 1].
func (s *Slider) fraction() float64 {
	if s.max == s.min {
		return 0
	}
	return float64(s.value-s.min) / float64(s.max-s.min)
}

// Button is a pressable label.
type Button struct {
	label   string
	x, y    float64
	onPress func()
}

// Position implements explorer.Button.
func (b *Button) Position(x, y float64) { b.x, b.y = x, y }

// Label returns the button text.
func (b *Button) Label() string { return b.label }

// Press runs the button handler.
func (b *Button) Press() {
	if b.onPress != nil {
		b.onPress()
	}
}

// text is the rendered button face.
func (b *Button) text() string { return "[ " + b.label + " ]" }

var (
	_ explorer.Toolkit = (*Toolkit)(nil)
	_ explorer.Slider  = (*Slider)(nil)
	_ explorer.Button  = (*Button)(nil)
)
