package core

import (
	"context"
	"log/slog"
	"time"
)

// ImportJob polls the import directory for new or changed track files.
type ImportJob struct {
	*TimeJob
	importer TrackImporter
}

// NewImportJob creates the job.
func NewImportJob(interval time.Duration, importer TrackImporter) *ImportJob {
	j := &ImportJob{importer: importer}
	j.TimeJob = NewTimeJob("TrackImport", interval, j.poll)
	return j
}

func (j *ImportJob) poll(ctx context.Context) {
	n, err := j.importer.Import(ctx)
	if err != nil {
		slog.Error("TrackImport: failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("TrackImport: new tracks imported", "count", n)
	}
}
