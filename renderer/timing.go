package renderer

import (
	"log"
	"time"

	"github.com/loov/hrtime"
)

type FrameStats struct {
	Frames  int
	Average time.Duration
	FPS     float64
}

// FrameTimer accumulates frame durations and reports them once per interval.
type FrameTimer struct {
	interval time.Duration
	now      func() time.Duration
	report   func(FrameStats)

	windowStart time.Duration
	frames      int
}

func NewFrameTimer(interval time.Duration) *FrameTimer {
	return newFrameTimer(interval, hrtime.Now, logFrameStats)
}

func newFrameTimer(interval time.Duration, now func() time.Duration, report func(FrameStats)) *FrameTimer {
	return &FrameTimer{
		interval:    interval,
		now:         now,
		report:      report,
		windowStart: now(),
	}
}

// Tick marks the end of a frame.
func (t *FrameTimer) Tick() {
	if t.interval <= 0 {
		return
	}

	t.frames++
	elapsed := t.now() - t.windowStart
	if elapsed < t.interval {
		return
	}

	t.report(FrameStats{
		Frames:  t.frames,
		Average: elapsed / time.Duration(t.frames),
		FPS:     float64(t.frames) / elapsed.Seconds(),
	})
	t.Reset()
}

// Reset starts a new window, e.g. after rendering was paused.
func (t *FrameTimer) Reset() {
	t.windowStart = t.now()
	t.frames = 0
}

func logFrameStats(stats FrameStats) {
	log.Printf("%d frames, %s avg, %.1f fps", stats.Frames, stats.Average, stats.FPS)
}
