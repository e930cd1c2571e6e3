package core

import (
	"context"
	"log/slog"
	"time"

	"trailgo/pkg/clock"
)

// CleanupJob prunes old backtrack points and pressure readings.
// It runs on the first tick after startup and then every interval.
type CleanupJob struct {
	*TimeJob
	paths   PathCleaner
	weather ReadingPruner
	clock   clock.Clock
}

// NewCleanupJob creates the maintenance job. Either dependency may be nil;
// a nil clock means the system clock.
func NewCleanupJob(interval time.Duration, paths PathCleaner, weather ReadingPruner, clk clock.Clock) *CleanupJob {
	if clk == nil {
		clk = clock.System{}
	}
	j := &CleanupJob{paths: paths, weather: weather, clock: clk}
	j.TimeJob = NewTimeJob("Cleanup", interval, j.clean)
	return j
}

func (j *CleanupJob) clean(ctx context.Context) {
	start := j.clock.Now()

	if j.paths != nil {
		if err := j.paths.Clean(ctx); err != nil {
			slog.Error("Cleanup: failed to clean backtrack paths", "error", err)
		}
	}

	var pruned int64
	if j.weather != nil {
		n, err := j.weather.Prune(ctx)
		if err != nil {
			slog.Error("Cleanup: failed to prune pressure readings", "error", err)
		}
		pruned = n
	}

	slog.Debug("Cleanup: done", "readings_pruned", pruned, "duration", j.clock.Now().Sub(start))
}
