// Package geometry computes the responsive layout of the explorer widget.
//
// The widget draws on a fixed-size canvas and places a handful of elements
// on and around it: the original text box, one slider per latent dimension,
// the reconstruction text box, three buttons and three captions. [Compute]
// maps a viewport width to a complete [Layout] under one of two modes:
//
//   - [Wide]: original text, sliders and reconstruction side by side.
//   - [Narrow]: original text stacked above a grid of sliders above the
//     reconstruction, with buttons interleaved.
//
// All positions are closed-form offsets from the values in a [Constants]
// table. Compute is pure: the same inputs always yield the same layout.
package geometry

import (
	"math"

	"github.com/matzehuels/latentscope/pkg/errors"
)

// Mode selects the formula set used by [Compute].
type Mode int

const (
	Wide Mode = iota
	Narrow
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == Narrow {
		return "narrow"
	}
	return "wide"
}

// Button identifies one of the widget's buttons.
type Button int

const (
	ButtonRandomSample Button = iota
	ButtonRandomizeLatent
	ButtonResetLatent

	NumButtons = 3
)

// Caption identifies one of the widget's captions.
type Caption int

const (
	CaptionOriginal Caption = iota
	CaptionLatent
	CaptionReconstruction

	NumCaptions = 3
)

// =============================================================================
// Constants
// =============================================================================

// Constants holds every number the layout formulas use.
type Constants struct {
	// Canvas size. Independent of the viewport; only placement adapts.
	CanvasWidth  float64
	CanvasHeight float64

	// Sliders is the number of slider widgets (one per latent dimension).
	Sliders int

	// LeftInset is the horizontal offset of the container in the viewport,
	// counted on both sides when testing the available width.
	LeftInset float64

	// Mode threshold: Wide needs 2*MinBoxSize + SliderWidth + Margin.
	MinBoxSize  float64
	SliderWidth float64
	Margin      float64

	// Shared offsets.
	CaptionY     float64
	ResetOffsetX float64
	ResetOffsetY float64

	// Wide mode.
	SliderTop    float64
	SliderInsetX float64
	ButtonDrop   float64
	FileButtonX  float64
	ZButtonInset float64

	// Narrow mode.
	NarrowSliderHeight     float64
	NarrowSliderGap        float64
	NarrowSliderInsetX     float64
	GridRows               int
	GridColumns            int
	NarrowFileButtonDrop   float64
	NarrowSliderDrop       float64
	NarrowZCaptionDrop     float64
	NarrowZCaptionInset    float64
	NarrowZButtonDrop      float64
	NarrowReconCaptionDrop float64
}

// DefaultConstants returns the reference layout table.
func DefaultConstants() Constants {
	return Constants{
		CanvasWidth:  760,
		CanvasHeight: 420,
		Sliders:      5,
		LeftInset:    0,

		MinBoxSize:  320,
		SliderWidth: 100,
		Margin:      20,

		CaptionY:     35,
		ResetOffsetX: 17,
		ResetOffsetY: 25,

		SliderTop:    55,
		SliderInsetX: 7.5,
		ButtonDrop:   150,
		FileButtonX:  10,
		ZButtonInset: 10,

		NarrowSliderHeight:     25,
		NarrowSliderGap:        10,
		NarrowSliderInsetX:     5,
		GridRows:               5,
		GridColumns:            3,
		NarrowFileButtonDrop:   60,
		NarrowSliderDrop:       100,
		NarrowZCaptionDrop:     85,
		NarrowZCaptionInset:    10,
		NarrowZButtonDrop:      108,
		NarrowReconCaptionDrop: 160,
	}
}

// WideThreshold returns the minimum usable width (viewport minus both
// insets) for Wide mode.
func (c Constants) WideThreshold() float64 {
	return 2*c.MinBoxSize + c.SliderWidth + c.Margin
}

// Validate checks that the table can lay out every slider.
func (c Constants) Validate() error {
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas must have positive size, got %vx%v", c.CanvasWidth, c.CanvasHeight)
	}
	if c.Sliders <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "need at least one slider")
	}
	if c.GridRows <= 0 || c.GridColumns <= 0 || c.Sliders > c.GridRows*c.GridColumns {
		return errors.New(errors.ErrCodeInvalidConfig, "%d sliders do not fit a %dx%d grid", c.Sliders, c.GridRows, c.GridColumns)
	}
	return nil
}

// =============================================================================
// Layout
// =============================================================================

// Point is a position in canvas coordinates.
type Point struct {
	X, Y float64
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// Layout is a snapshot of every element position. Values are replaced
// wholesale, never edited.
type Layout struct {
	Mode         Mode
	CanvasWidth  float64
	CanvasHeight float64

	// TextboxSize is the wrap width of both text boxes.
	TextboxSize  float64
	SliderWidth  float64
	SliderHeight float64

	Original       Point
	Reconstruction Point
	Sliders        []Point
	Buttons        [NumButtons]Point
	Captions       [NumCaptions]Point
}

// Bounds returns the width and height needed to hold every element,
// treating text boxes as squares of TextboxSize. Narrow layouts extend
// past the canvas.
func (l Layout) Bounds() (w, h float64) {
	w, h = l.CanvasWidth, l.CanvasHeight
	grow := func(x, y float64) {
		w = math.Max(w, x)
		h = math.Max(h, y)
	}
	for _, p := range []Point{l.Original, l.Reconstruction} {
		grow(p.X+l.TextboxSize, p.Y+l.TextboxSize)
	}
	for _, p := range l.Sliders {
		grow(p.X+l.SliderWidth, p.Y+l.SliderHeight)
	}
	for _, p := range l.Buttons {
		grow(p.X, p.Y)
	}
	for _, p := range l.Captions {
		grow(p.X, p.Y)
	}
	return w, h
}

// =============================================================================
// Compute
// =============================================================================

// ModeFor picks the display mode for a viewport width. The first frame is
// always Wide since the container has not been measured yet; degenerate
// widths (non-positive, NaN or infinite) are treated the same way.
func ModeFor(c Constants, viewportWidth float64, firstFrame bool) Mode {
	if firstFrame || !(viewportWidth > 0) || math.IsInf(viewportWidth, 1) {
		return Wide
	}
	if viewportWidth-2*c.LeftInset < c.WideThreshold() {
		return Narrow
	}
	return Wide
}

// Compute returns the layout for a viewport width.
func Compute(c Constants, viewportWidth float64, firstFrame bool) Layout {
	if ModeFor(c, viewportWidth, firstFrame) == Narrow {
		return narrow(c)
	}
	return wide(c)
}

func wide(c Constants) Layout {
	l := Layout{
		Mode:         Wide,
		CanvasWidth:  c.CanvasWidth,
		CanvasHeight: c.CanvasHeight,
		SliderWidth:  c.SliderWidth,
		Sliders:      make([]Point, max(c.Sliders, 0)),
	}
	if c.Sliders > 0 {
		l.SliderHeight = c.CanvasHeight / float64(c.Sliders)
	}
	tb := c.CanvasWidth/2 - c.SliderWidth
	l.TextboxSize = tb

	l.Original = Point{0, c.CanvasHeight / 2}
	l.Reconstruction = Point{tb + c.SliderWidth + c.Margin, c.CanvasHeight / 2}

	for i := range l.Sliders {
		l.Sliders[i] = Point{tb + c.SliderInsetX, c.SliderTop + float64(i)*l.SliderHeight}
	}

	buttonY := tb + c.ButtonDrop
	l.Buttons[ButtonRandomSample] = Point{c.FileButtonX, buttonY}
	l.Buttons[ButtonRandomizeLatent] = Point{tb + c.ZButtonInset, buttonY}
	l.Buttons[ButtonResetLatent] = l.Buttons[ButtonRandomizeLatent].Add(Point{c.ResetOffsetX, c.ResetOffsetY})

	l.Captions[CaptionOriginal] = Point{tb / 3, c.CaptionY}
	l.Captions[CaptionLatent] = Point{c.SliderWidth/2 + tb, c.CaptionY}
	l.Captions[CaptionReconstruction] = Point{tb + c.SliderWidth + tb/3, c.CaptionY}
	return l
}

func narrow(c Constants) Layout {
	tb := c.MinBoxSize
	sh := c.NarrowSliderHeight
	l := Layout{
		Mode:         Narrow,
		CanvasWidth:  c.CanvasWidth,
		CanvasHeight: c.CanvasHeight,
		TextboxSize:  tb,
		SliderWidth:  tb/3 - c.NarrowSliderGap,
		SliderHeight: sh,
		Sliders:      make([]Point, max(c.Sliders, 0)),
	}
	gridHeight := sh * float64(c.GridRows)

	l.Original = Point{(c.CanvasWidth - tb) / 2, c.CanvasHeight / 2}
	l.Reconstruction = Point{(c.CanvasWidth - tb) / 2, c.CanvasHeight - tb}

	l.Buttons[ButtonRandomSample] = Point{l.Original.X + tb/4, tb + c.NarrowFileButtonDrop}
	l.Buttons[ButtonRandomizeLatent] = Point{l.Reconstruction.X + tb/3, tb + c.NarrowZButtonDrop + gridHeight}
	l.Buttons[ButtonResetLatent] = l.Buttons[ButtonRandomizeLatent].Add(Point{c.ResetOffsetX, c.ResetOffsetY})

	l.Captions[CaptionOriginal] = Point{l.Original.X, c.CaptionY}
	l.Captions[CaptionLatent] = Point{l.Original.X + c.NarrowZCaptionInset, tb + c.NarrowZCaptionDrop}
	l.Captions[CaptionReconstruction] = Point{l.Reconstruction.X, tb + c.NarrowReconCaptionDrop + gridHeight}

	// Column-major grid: fill a column of GridRows before moving right.
	rows := max(c.GridRows, 1)
	for k := range l.Sliders {
		col, row := k/rows, k%rows
		l.Sliders[k] = Point{
			X: l.Reconstruction.X + c.NarrowSliderInsetX + (l.SliderWidth+c.NarrowSliderGap)*float64(col),
			Y: tb + c.NarrowSliderDrop + float64(row)*sh,
		}
	}
	return l
}
