package store

import (
	"context"
	"time"

	"trailgo/pkg/model"
)

// PathStore handles path record persistence.
type PathStore interface {
	// SavePath inserts the path when its ID is 0, otherwise updates the stored record.
	// Updating a path that no longer exists is a no-op. It returns the path ID.
	SavePath(ctx context.Context, p *model.Path) (int64, error)
	// GetPath returns nil, nil when the path does not exist.
	GetPath(ctx context.Context, id int64) (*model.Path, error)
	GetAllPaths(ctx context.Context) ([]*model.Path, error)
	DeletePath(ctx context.Context, id int64) error
}

// PointStore handles path point persistence.
type PointStore interface {
	AddPoint(ctx context.Context, p *model.PathPoint) (int64, error)
	// AddPoints writes all points in one transaction. Points with ID 0 get a new ID,
	// others replace the stored point with the same ID.
	AddPoints(ctx context.Context, points []model.PathPoint) error
	DeletePoint(ctx context.Context, id int64) error
	DeletePoints(ctx context.Context, ids []int64) error
	DeletePointsInPath(ctx context.Context, pathID int64) error
	DeletePointsOlderInPath(ctx context.Context, pathID int64, before time.Time) error
	DeletePointsOlderThan(ctx context.Context, before time.Time) (int64, error)
	// GetPointsInPaths returns the points of the given paths ordered by ID.
	GetPointsInPaths(ctx context.Context, pathIDs []int64) ([]model.PathPoint, error)
	// GetPointsByID returns the stored points with the given IDs ordered by ID.
	// Unknown IDs are left out.
	GetPointsByID(ctx context.Context, ids []int64) ([]model.PathPoint, error)
	GetPointsSince(ctx context.Context, since time.Time) ([]model.PathPoint, error)
}

// PressureStore handles barometer history.
type PressureStore interface {
	AddReading(ctx context.Context, r *model.PressureAltitudeReading) (int64, error)
	// GetReadingsSince returns readings at or after since, ordered by time ascending.
	GetReadingsSince(ctx context.Context, since time.Time) ([]model.PressureAltitudeReading, error)
	DeleteReadingsOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}
