package renderer

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/vulkan-cube/stage"
)

type Config struct {
	Title  string
	Width  int
	Height int

	EnableValidationLayers bool
	Variant                stage.Variant
	MaxFramesInFlight      int

	// ReportInterval is how often frame timing is logged. Zero disables it.
	ReportInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Title:                  "Cube",
		Width:                  800,
		Height:                 600,
		EnableValidationLayers: true,
		Variant:                stage.Colored,
		MaxFramesInFlight:      2,
		ReportInterval:         5 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Newf("window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.MaxFramesInFlight < 1 {
		return errors.Newf("max frames in flight must be at least 1, got %d", c.MaxFramesInFlight)
	}
	if c.ReportInterval < 0 {
		return errors.Newf("negative report interval %s", c.ReportInterval)
	}
	return nil
}
