package profiler

import (
	"log/slog"
	"time"
)

// ProfilerOption is a function that modifies the properties of a Profiler.
type ProfilerOption func(p *Profiler)

// WithInterval sets how often the profiler closes an interval and logs stats.
//
// Parameters:
//   - interval: the aggregation window, must be positive
//
// Returns:
//   - ProfilerOption: the option to be applied via NewProfiler
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithLogger sets the structured logger the profiler emits records to.
//
// Parameters:
//   - logger: the destination logger
//
// Returns:
//   - ProfilerOption: the option to be applied via NewProfiler
func WithLogger(logger *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}
