package explorer

import (
	"strings"

	"github.com/matzehuels/latentscope/pkg/errors"
)

// Default values applied by [Settings.ValidateAndSetDefaults].
const (
	DefaultContainerID   = "vae-demo"
	DefaultFrameRate     = 30
	DefaultRelayoutEvery = 30
)

// Settings configures a [Sketch].
type Settings struct {
	// ContainerID names the element the widget is mounted in. Hosts use it
	// to report the container origin.
	ContainerID string `toml:"container_id" json:"container_id"`

	// MinRange and MaxRange bound the sample index: [MinRange, MaxRange).
	MinRange int `toml:"min_range" json:"min_range"`
	MaxRange int `toml:"max_range" json:"max_range"`

	// DataDir is the base path or URL of the JSON assets. Ignored when a
	// Source is injected through Deps.
	DataDir string `toml:"data_dir" json:"data_dir"`

	// FrameRate is the number of frame ticks per second a host should drive.
	FrameRate int `toml:"frame_rate" json:"frame_rate"`

	// RelayoutEvery forces a full relayout every this many frames.
	RelayoutEvery int `toml:"relayout_every" json:"relayout_every"`

	// Seed makes sample and vector draws reproducible. Zero picks a random
	// seed.
	Seed uint64 `toml:"seed" json:"seed"`

	validated bool
}

// ValidateAndSetDefaults checks the sample range and fills in defaults.
// Calling it more than once is harmless.
func (s *Settings) ValidateAndSetDefaults() error {
	if s.validated {
		return nil
	}
	if err := errors.ValidateRange(s.MinRange, s.MaxRange); err != nil {
		return err
	}
	if s.FrameRate < 0 || s.RelayoutEvery < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "frame_rate and relayout_every must be non-negative")
	}
	s.ContainerID = strings.TrimSpace(s.ContainerID)
	if s.ContainerID == "" {
		s.ContainerID = DefaultContainerID
	}
	if s.FrameRate == 0 {
		s.FrameRate = DefaultFrameRate
	}
	if s.RelayoutEvery == 0 {
		s.RelayoutEvery = DefaultRelayoutEvery
	}
	s.validated = true
	return nil
}
