package explorer

import "github.com/matzehuels/latentscope/pkg/geometry"

// OnFrame advances the frame loop. A pending full relayout runs first; the
// text boxes are redrawn afterwards when new text is waiting and a
// matching pair has loaded. The two paths do not depend on each other's outcome.
func (s *Sketch) OnFrame() {
	if s.canvas == nil {
		return
	}
	s.frame++
	s.stats.Frames++
	if s.settings.RelayoutEvery > 0 && s.frame%s.settings.RelayoutEvery == 0 {
		s.needsFullRedraw = true
	}
	if s.needsFullRedraw {
		s.relayout()
	}
	if s.hasPendingTextUpdate && s.drawn.original != "" && s.drawn.reconstruction != "" {
		s.drawTexts()
	}
}

// relayout recomputes the geometry, resizes the canvas, moves every widget
// and redraws the captions. Resizing clears the canvas, so the texts are
// queued for redrawing as well.
func (s *Sketch) relayout() {
	origin := s.tk.Origin(s.settings.ContainerID)
	c := s.consts
	c.LeftInset = origin.X
	s.layout = geometry.Compute(c, s.viewport, s.frame == 0)

	s.canvas.Resize(s.layout.CanvasWidth, s.layout.CanvasHeight)
	for i, b := range s.buttons {
		p := origin.Add(s.layout.Buttons[i])
		b.Position(p.X, p.Y)
	}
	for i, sl := range s.sliders {
		p := origin.Add(s.layout.Sliders[i])
		sl.SetWidth(s.layout.SliderWidth)
		sl.Position(p.X, p.Y)
	}

	s.canvas.Fill(CaptionColor)
	s.canvas.TextSize(CaptionSize)
	for i, label := range Captions {
		p := s.layout.Captions[i]
		s.canvas.Text(label, p.X, p.Y, 0)
	}

	s.needsFullRedraw = false
	s.hasPendingTextUpdate = true
	s.stats.Relayouts++
}

func (s *Sketch) drawTexts() {
	l := s.layout
	s.canvas.Fill(TextColor)
	s.canvas.TextSize(TextSize)
	s.canvas.Text(s.drawn.original, l.Original.X, l.Original.Y, l.TextboxSize)
	s.canvas.Text(s.drawn.reconstruction, l.Reconstruction.X, l.Reconstruction.Y, l.TextboxSize)
	s.hasPendingTextUpdate = false
	s.stats.TextDraws++
}

// NeedsRelayout reports whether the next frame will lay the widget out
// again.
func (s *Sketch) NeedsRelayout() bool { return s.needsFullRedraw }

// Mode returns the current display mode.
func (s *Sketch) Mode() geometry.Mode { return s.layout.Mode }
