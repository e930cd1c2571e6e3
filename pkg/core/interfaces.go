package core

import (
	"context"
)

// PathCleaner prunes expired backtrack history. Implemented by paths.Service.
type PathCleaner interface {
	Clean(ctx context.Context) error
}

// ReadingPruner drops pressure readings outside the history window. Implemented by weather.Service.
type ReadingPruner interface {
	Prune(ctx context.Context) (int64, error)
}

// TrackImporter picks up new track files. Implemented by maintenance.Importer.
type TrackImporter interface {
	Import(ctx context.Context) (int, error)
}
