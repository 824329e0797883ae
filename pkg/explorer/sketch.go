// Package explorer is the latent-space explorer widget.
//
// A [Sketch] owns the current sample and latent vector, keeps the slider
// widgets in sync with them, looks reconstructions up through a
// [recon.Store] and drives rendering from a frame loop. All methods run on
// one event loop; blocking fetches are handed to an [Executor] and come
// back as [Event] values through [Sketch.Deliver].
//
// Typical host:
//
//	s, err := explorer.New(settings, explorer.Deps{Toolkit: tk, Executor: ex})
//	if err != nil { ... }
//	s.OnSetup()
//	for each frame:        s.OnFrame()
//	on window resize:      s.OnViewportResize(width)
//	on task completion:    s.Deliver(ev)
package explorer

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/geometry"
	"github.com/matzehuels/latentscope/pkg/latent"
	"github.com/matzehuels/latentscope/pkg/recon"
	"github.com/matzehuels/latentscope/pkg/source"
)

// Button labels.
const (
	LabelRandomSample    = "Load Random Sentence"
	LabelRandomizeLatent = "Randomize z"
	LabelResetLatent     = "Reset z"
)

// Caption texts, indexed by geometry.Caption.
var Captions = [geometry.NumCaptions]string{
	geometry.CaptionOriginal:       "Train Text",
	geometry.CaptionLatent:         "z",
	geometry.CaptionReconstruction: "Reconstruction",
}

// Deps are the collaborators of a Sketch.
type Deps struct {
	Toolkit  Toolkit
	Executor Executor
	// Source provides the assets. Nil builds a client for Settings.DataDir.
	Source source.Source
	// Constants overrides geometry.DefaultConstants.
	Constants *geometry.Constants
	Logger    *log.Logger
}

// Stats counts what a Sketch has done.
type Stats struct {
	Frames    int
	Relayouts int
	TextDraws int
	// Stale counts fetch results that arrived for a sample no longer shown.
	Stale int
}

// Sketch is the explorer widget controller.
type Sketch struct {
	settings Settings
	consts   geometry.Constants
	tk       Toolkit
	exec     Executor
	store    *recon.Store
	rng      *rand.Rand
	logger   *log.Logger

	canvas  Surface
	sliders []Slider
	buttons [geometry.NumButtons]Button

	sample    int
	hasSample bool
	vector    latent.Vector

	// awaitingDefaults is set while a sample load waits for the table.
	awaitingDefaults bool

	original       string
	reconstruction string
	status         string

	// drawn is the pair on the canvas. It only changes once the current
	// sample's reconstruction has loaded, so an original is never drawn
	// next to another sample's reconstruction.
	drawn textPair

	viewport float64
	layout   geometry.Layout
	frame    int

	needsFullRedraw      bool
	hasPendingTextUpdate bool

	stats Stats
}

type textPair struct {
	original, reconstruction string
}

// New validates settings and returns a sketch ready for OnSetup.
func New(settings Settings, deps Deps) (*Sketch, error) {
	if err := settings.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if deps.Toolkit == nil || deps.Executor == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "toolkit and executor are required")
	}
	consts := geometry.DefaultConstants()
	if deps.Constants != nil {
		consts = *deps.Constants
	}
	consts.Sliders = latent.Dims
	if err := consts.Validate(); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("container", settings.ContainerID)

	src := deps.Source
	if src == nil {
		client, err := source.New(settings.DataDir, source.Options{Logger: logger})
		if err != nil {
			return nil, err
		}
		src = client
	}

	seed := settings.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &Sketch{
		settings: settings,
		consts:   consts,
		tk:       deps.Toolkit,
		exec:     deps.Executor,
		store:    recon.NewStore(src, logger),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger:   logger,
		vector:   latent.Zero(),
	}, nil
}

// OnSetup creates the canvas and widgets, lays them out and loads a first
// random sample.
func (s *Sketch) OnSetup() error {
	if s.canvas != nil {
		return errors.New(errors.ErrCodeInternal, "sketch already set up")
	}
	s.canvas = s.tk.CreateCanvas(s.consts.CanvasWidth, s.consts.CanvasHeight)
	s.buttons[geometry.ButtonRandomSample] = s.tk.CreateButton(LabelRandomSample, s.LoadRandomSample)
	s.buttons[geometry.ButtonRandomizeLatent] = s.tk.CreateButton(LabelRandomizeLatent, s.RandomizeLatent)
	s.buttons[geometry.ButtonResetLatent] = s.tk.CreateButton(LabelResetLatent, s.ResetLatent)

	s.sliders = make([]Slider, latent.Dims)
	for i := range s.sliders {
		s.sliders[i] = s.tk.CreateSlider(0, latent.Levels-1, 0, 1, s.SliderChanged)
	}

	s.relayout()
	s.LoadRandomSample()
	s.logger.Debug("sketch set up", "mode", s.layout.Mode, "frame_rate", s.settings.FrameRate)
	return nil
}

// OnViewportResize records the new viewport width and schedules a full
// relayout for the next frame.
func (s *Sketch) OnViewportResize(width float64) {
	s.viewport = width
	s.needsFullRedraw = true
}

// Deliver applies the completion of a task submitted by the sketch.
func (s *Sketch) Deliver(ev Event) {
	switch e := ev.(type) {
	case defaultsLoaded:
		s.store.ResolveDefaults(e.res)
		if s.awaitingDefaults {
			s.awaitingDefaults = false
			s.applyDefaults()
		}
	case treeLoaded:
		s.store.ResolveTree(e.res)
		if !s.hasSample || e.res.Key != s.sample {
			s.stats.Stale++
			s.logger.Debug("cached result for inactive sample", "sample", e.res.Key, "current", s.sample)
			return
		}
		s.show(s.store.Peek(s.sample, s.vector))
	default:
		s.logger.Warn("unknown event", "type", fmt.Sprintf("%T", ev))
	}
}

// =============================================================================
// Operations
// =============================================================================

// LoadRandomSample picks a sample uniformly from the configured range and
// shows its original text and default vector. A sample that previously
// failed to load is fetched again.
func (s *Sketch) LoadRandomSample() {
	sample := s.settings.MinRange + s.rng.IntN(s.settings.MaxRange-s.settings.MinRange)
	s.sample, s.hasSample = sample, true
	s.reconstruction = ""
	s.status = ""
	s.needsFullRedraw = true
	if s.store.Retry(sample) {
		s.logger.Info("retrying sample", "sample", sample)
	}
	s.logger.Debug("load sample", "sample", sample)
	s.loadDefaults()
}

// RandomizeLatent draws a fresh vector for the current sample.
func (s *Sketch) RandomizeLatent() {
	s.vector = latent.Random(s.rng)
	s.pushSliders()
	s.requestReconstruction()
}

// ResetLatent restores the current sample's default vector.
func (s *Sketch) ResetLatent() {
	if !s.hasSample {
		return
	}
	s.loadDefaults()
}

// SliderChanged reads the vector back from the sliders. The sliders are
// not written to, so a drag is never fed back into itself.
func (s *Sketch) SliderChanged() {
	v := make(latent.Vector, latent.Dims)
	for i, sl := range s.sliders {
		v[i] = latent.Clamp(sl.Value())
	}
	s.vector = v
	s.requestReconstruction()
}

// Retry forgets a failure for the current sample and loads it again.
func (s *Sketch) Retry() {
	if !s.hasSample {
		return
	}
	s.store.Retry(s.sample)
	s.status = ""
	s.loadDefaults()
}

func (s *Sketch) loadDefaults() {
	l, job := s.store.Defaults()
	if job != nil {
		s.exec.Submit(func(ctx context.Context) Event { return defaultsLoaded{job.Run(ctx)} })
	}
	if l.Status == recon.StatusPending {
		s.awaitingDefaults = true
		return
	}
	s.applyDefaults()
}

func (s *Sketch) applyDefaults() {
	text, v, l := s.store.Sample(s.sample)
	if !l.Ready() {
		s.fail(l.Err)
		return
	}
	s.original = text
	s.vector = v
	s.pushSliders()
	s.requestReconstruction()
}

func (s *Sketch) requestReconstruction() {
	if !s.hasSample {
		return
	}
	l, job := s.store.Reconstruction(s.sample, s.vector)
	if job != nil {
		s.exec.Submit(func(ctx context.Context) Event { return treeLoaded{job.Run(ctx)} })
	}
	s.show(l)
}

func (s *Sketch) show(l recon.Lookup[string]) {
	switch l.Status {
	case recon.StatusLoaded:
		s.reconstruction = l.Value
		s.status = ""
		s.drawn = textPair{s.original, s.reconstruction}
		s.hasPendingTextUpdate = true
	case recon.StatusUnavailable:
		s.fail(l.Err)
	}
}

func (s *Sketch) fail(err error) {
	s.status = fmt.Sprintf("failed to load sample %d", s.sample)
	s.hasPendingTextUpdate = true
	s.logger.Warn("sample unavailable", "sample", s.sample, "err", err)
}

func (s *Sketch) pushSliders() {
	for i, sl := range s.sliders {
		sl.SetValue(s.vector[i])
	}
}

// =============================================================================
// Accessors
// =============================================================================

// Settings returns the validated settings.
func (s *Sketch) Settings() Settings { return s.settings }

// Sample returns the current sample index.
func (s *Sketch) Sample() int { return s.sample }

// Vector returns a copy of the current latent vector.
func (s *Sketch) Vector() latent.Vector { return s.vector.Clone() }

// Original returns the normalized original text of the current sample.
func (s *Sketch) Original() string { return s.original }

// Reconstruction returns the current sample's reconstruction, or "" while
// it is loading or unavailable.
func (s *Sketch) Reconstruction() string { return s.reconstruction }

// Drawn returns the original and reconstruction texts on the canvas.
func (s *Sketch) Drawn() (original, reconstruction string) {
	return s.drawn.original, s.drawn.reconstruction
}

// Status returns a failure message, or "" when everything loaded.
func (s *Sketch) Status() string { return s.status }

// Layout returns the current layout.
func (s *Sketch) Layout() geometry.Layout { return s.layout }

// Stats returns activity counters.
func (s *Sketch) Stats() Stats { return s.stats }

// Fetches returns how many defaults and tree fetches were issued.
func (s *Sketch) Fetches() (defaults, trees int) { return s.store.Fetches() }
