package explorer

import (
	"context"

	"github.com/matzehuels/latentscope/pkg/geometry"
	"github.com/matzehuels/latentscope/pkg/recon"
)

// Color is an RGB fill color.
type Color struct {
	R, G, B uint8
}

var (
	// CaptionColor fills caption text.
	CaptionColor = Color{0, 0, 0}
	// TextColor fills the original and reconstruction text.
	TextColor = Color{0, 102, 153}
)

// Text sizes.
const (
	CaptionSize = 16
	TextSize    = 20
)

// Surface is a drawing canvas. Positions are canvas coordinates.
type Surface interface {
	// Resize sets the canvas size and clears it.
	Resize(width, height float64)
	// Clear erases everything drawn.
	Clear()
	// Fill sets the color of subsequent text.
	Fill(c Color)
	// TextSize sets the font size of subsequent text.
	TextSize(size float64)
	// Text draws s at (x, y). A positive boxWidth word-wraps s to that
	// width and replaces whatever the box held before.
	Text(s string, x, y, boxWidth float64)
}

// Slider is an integer range input. Positions are page coordinates.
type Slider interface {
	Value() int
	SetValue(v int)
	SetWidth(w float64)
	Position(x, y float64)
}

// Button is a clickable label.
type Button interface {
	Position(x, y float64)
}

// Toolkit creates widgets and answers questions about the page.
type Toolkit interface {
	CreateCanvas(width, height float64) Surface
	// CreateSlider returns a slider over [min, max] with the given step.
	// onInput runs on the event loop whenever the user moves it.
	CreateSlider(min, max, value, step int, onInput func()) Slider
	// CreateButton returns a button; onPress runs on the event loop.
	CreateButton(label string, onPress func()) Button
	// Origin returns the page position of the container with the given id.
	Origin(containerID string) geometry.Point
}

// Event is the completion of a [Task]. Hosts pass it to [Sketch.Deliver]
// on the event loop.
type Event interface {
	event()
}

// Task is a unit of blocking work. It may run on any goroutine.
type Task func(ctx context.Context) Event

// Executor runs tasks off the event loop and arranges for their events
// to be delivered back to it.
type Executor interface {
	Submit(t Task)
}

type defaultsLoaded struct{ res recon.DefaultsResult }

type treeLoaded struct{ res recon.TreeResult }

func (defaultsLoaded) event() {}
func (treeLoaded) event()     {}
