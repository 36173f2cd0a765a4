package renderer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Duration
}

func (c *fakeClock) now() time.Duration {
	return c.t
}

func TestFrameTimerReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{}
	var reports []FrameStats
	timer := newFrameTimer(time.Second, clock.now, func(s FrameStats) {
		reports = append(reports, s)
	})

	for i := 0; i < 9; i++ {
		clock.t += 100 * time.Millisecond
		timer.Tick()
	}
	assert.Empty(t, reports)

	clock.t += 100 * time.Millisecond
	timer.Tick()
	require.Len(t, reports, 1)
	assert.Equal(t, 10, reports[0].Frames)
	assert.Equal(t, 100*time.Millisecond, reports[0].Average)
	assert.InDelta(t, 10.0, reports[0].FPS, 1e-9)

	clock.t += 500 * time.Millisecond
	timer.Tick()
	assert.Len(t, reports, 1)
}

func TestFrameTimerReset(t *testing.T) {
	clock := &fakeClock{}
	var reports []FrameStats
	timer := newFrameTimer(time.Second, clock.now, func(s FrameStats) {
		reports = append(reports, s)
	})

	clock.t = 900 * time.Millisecond
	timer.Tick()
	timer.Reset()

	clock.t = 1800 * time.Millisecond
	timer.Tick()
	assert.Empty(t, reports)

	clock.t = 1900 * time.Millisecond
	timer.Tick()
	require.Len(t, reports, 1)
	assert.Equal(t, 2, reports[0].Frames)
}

func TestFrameTimerDisabled(t *testing.T) {
	clock := &fakeClock{}
	called := false
	timer := newFrameTimer(0, clock.now, func(FrameStats) { called = true })

	clock.t = time.Hour
	timer.Tick()
	assert.False(t, called)
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, 2, cfg.MaxFramesInFlight)

	cfg.Height = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxFramesInFlight = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ReportInterval = -time.Second
	assert.Error(t, cfg.Validate())
}
