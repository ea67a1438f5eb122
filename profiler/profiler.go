package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Profiler aggregates frame pacing and Go runtime memory statistics over a
// fixed interval, emitting one structured log record per elapsed interval.
// Drive it with one Tick per presented frame.
type Profiler struct {
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	intervalStart time.Time
	lastFrame     time.Time
	frameCount    int
	frameMin      time.Duration
	frameMax      time.Duration

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// Stats is one interval's aggregate snapshot.
type Stats struct {
	// FPS is the frame rate averaged over the interval.
	FPS float64
	// FrameAvg, FrameMin and FrameMax describe per-frame pacing inside the
	// interval. A FrameMax far above FrameAvg flags a hitch the average hides.
	FrameAvg time.Duration
	FrameMin time.Duration
	FrameMax time.Duration

	// HeapMB is live heap memory; SysMB the process footprint from the OS.
	HeapMB float64
	SysMB  float64
	// AllocRateMBs is heap churn in MB per second over the interval.
	AllocRateMBs float64

	// GCCount is the cumulative collection count; the pause fields cover the
	// interval's last and worst stop-the-world pauses.
	GCCount     uint32
	GCLastPause time.Duration
	GCMaxPause  time.Duration
}

// NewProfiler creates a new Profiler with the specified options.
// The logging interval defaults to 1 second and output goes to the default
// structured logger.
//
// Parameters:
//   - options: optional configuration to be applied to the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:   slog.Default(),
		interval: time.Second,
		now:      time.Now,
	}
	for _, option := range options {
		option(p)
	}
	p.intervalStart = p.now()
	p.lastFrame = p.intervalStart
	return p
}

// Tick records one presented frame. When the interval has elapsed it computes
// the aggregate Stats, logs them, resets the window and returns them with true;
// otherwise it returns a zero Stats and false.
//
// Returns:
//   - Stats: the interval aggregate, meaningful only when the bool is true
//   - bool: true if the interval closed on this tick
func (p *Profiler) Tick() (Stats, bool) {
	current := p.now()

	frameTime := current.Sub(p.lastFrame)
	p.lastFrame = current
	p.frameCount++
	if p.frameMin == 0 || frameTime < p.frameMin {
		p.frameMin = frameTime
	}
	if frameTime > p.frameMax {
		p.frameMax = frameTime
	}

	elapsed := current.Sub(p.intervalStart)
	if elapsed < p.interval {
		return Stats{}, false
	}

	stats := Stats{
		FPS:      float64(p.frameCount) / elapsed.Seconds(),
		FrameAvg: elapsed / time.Duration(p.frameCount),
		FrameMin: p.frameMin,
		FrameMax: p.frameMax,
	}

	runtime.ReadMemStats(&p.memStats)
	stats.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	stats.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	stats.AllocRateMBs = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	stats.GCCount = p.memStats.NumGC
	if stats.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 collection pauses.
		stats.GCLastPause = time.Duration(p.memStats.PauseNs[(stats.GCCount-1)%256])
		start := p.lastGCCount
		if stats.GCCount-start > 256 {
			start = stats.GCCount - 256
		}
		for i := start; i < stats.GCCount; i++ {
			pause := time.Duration(p.memStats.PauseNs[i%256])
			if pause > stats.GCMaxPause {
				stats.GCMaxPause = pause
			}
		}
	}

	p.logger.Info("frame stats",
		"fps", stats.FPS,
		"frameAvgMs", float64(stats.FrameAvg.Microseconds())/1000,
		"frameMaxMs", float64(stats.FrameMax.Microseconds())/1000,
		"heapMB", stats.HeapMB,
		"allocRateMBs", stats.AllocRateMBs,
		"gcCount", stats.GCCount,
		"gcLastPauseUs", stats.GCLastPause.Microseconds(),
		"gcMaxPauseUs", stats.GCMaxPause.Microseconds(),
		"sysMB", stats.SysMB)

	p.frameCount = 0
	p.frameMin = 0
	p.frameMax = 0
	p.intervalStart = current
	p.lastGCCount = stats.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return stats, true
}
