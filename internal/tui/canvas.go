package tui

import (
	"github.com/matzehuels/latentscope/pkg/explorer"
)

// textItem is one retained Text call.
type textItem struct {
	s     string
	x, y  float64
	box   float64
	color explorer.Color
	size  float64
}

// Canvas is a retained-mode explorer.Surface. Every Text call is kept
// until the next Resize or Clear and painted onto the screen grid when the
// model renders.
type Canvas struct {
	width, height float64

	fill  explorer.Color
	size  float64
	items []textItem
}

func newCanvas(width, height float64) *Canvas {
	return &Canvas{width: width, height: height, size: explorer.TextSize}
}

// Resize implements explorer.Surface.
func (c *Canvas) Resize(width, height float64) {
	c.width, c.height = width, height
	c.items = nil
}

// Clear implements explorer.Surface.
func (c *Canvas) Clear() { c.items = nil }

// Fill implements explorer.Surface.
func (c *Canvas) Fill(col explorer.Color) { c.fill = col }

// TextSize implements explorer.Surface.
func (c *Canvas) TextSize(size float64) { c.size = size }

// Text implements explorer.Surface. A boxed text replaces any earlier box
// anchored at the same point.
func (c *Canvas) Text(s string, x, y, boxWidth float64) {
	item := textItem{s: s, x: x, y: y, box: boxWidth, color: c.fill, size: c.size}
	if boxWidth > 0 {
		for i, it := range c.items {
			if it.box > 0 && it.x == x && it.y == y {
				c.items[i] = item
				return
			}
		}
	}
	c.items = append(c.items, item)
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (width, height float64) { return c.width, c.height }

// Texts returns the retained strings in drawing order.
func (c *Canvas) Texts() []string {
	out := make([]string, len(c.items))
	for i, it := range c.items {
		out[i] = it.s
	}
	return out
}

var _ explorer.Surface = (*Canvas)(nil)
