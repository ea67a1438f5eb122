package profiler

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfiler(interval time.Duration) (*Profiler, *time.Time) {
	clock := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	p := NewProfiler(
		WithInterval(interval),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	p.now = func() time.Time { return clock }
	p.intervalStart = clock
	p.lastFrame = clock
	return p, &clock
}

func TestTickAggregatesFramePacingOverTheInterval(t *testing.T) {
	assert := assert.New(t)

	p, clock := testProfiler(time.Second)

	// 99 frames at 10ms stay inside the window, the 100th closes it.
	var stats Stats
	closed := false
	for i := 0; i < 100; i++ {
		*clock = clock.Add(10 * time.Millisecond)
		stats, closed = p.Tick()
		if i < 99 {
			require.False(t, closed)
		}
	}
	require.True(t, closed)

	assert.InDelta(100.0, stats.FPS, 0.1)
	assert.Equal(10*time.Millisecond, stats.FrameAvg)
	assert.Equal(10*time.Millisecond, stats.FrameMin)
	assert.Equal(10*time.Millisecond, stats.FrameMax)
	assert.Greater(stats.SysMB, 0.0)
}

func TestTickCapturesTheWorstFrameOfTheInterval(t *testing.T) {
	assert := assert.New(t)

	p, clock := testProfiler(time.Second)

	for i := 0; i < 50; i++ {
		*clock = clock.Add(10 * time.Millisecond)
		p.Tick()
	}
	// One hitch in an otherwise steady run.
	*clock = clock.Add(120 * time.Millisecond)
	p.Tick()
	for {
		*clock = clock.Add(10 * time.Millisecond)
		if stats, closed := p.Tick(); closed {
			assert.Equal(120*time.Millisecond, stats.FrameMax)
			assert.Equal(10*time.Millisecond, stats.FrameMin)
			return
		}
	}
}

func TestIntervalResetsAfterClosing(t *testing.T) {
	assert := assert.New(t)

	p, clock := testProfiler(100 * time.Millisecond)

	*clock = clock.Add(200 * time.Millisecond)
	stats, closed := p.Tick()
	require.True(t, closed)
	assert.InDelta(5.0, stats.FPS, 0.1)

	// The next window starts fresh: pacing extremes do not leak across.
	*clock = clock.Add(50 * time.Millisecond)
	_, closed = p.Tick()
	require.False(t, closed)
	*clock = clock.Add(50 * time.Millisecond)
	stats, closed = p.Tick()
	require.True(t, closed)
	assert.Equal(50*time.Millisecond, stats.FrameMax)
}
