package paths

import (
	"context"
	"fmt"
	"log/slog"

	"trailgo/pkg/geo"
	"trailgo/pkg/model"
)

// ComputeMetadata derives the summary of a point set. Points must be ordered by ID.
func ComputeMetadata(points []model.PathPoint) model.PathMetadata {
	if len(points) == 0 {
		return model.EmptyMetadata
	}

	coords := coordinates(points)
	md := model.PathMetadata{
		Distance:   geo.PathDistance(coords),
		PointCount: len(points),
		Bounds:     geo.Bounds(coords),
	}

	first, last := points[0], points[len(points)-1]
	if first.Time != nil && last.Time != nil {
		md.Duration = &model.TimeRange{Start: *first.Time, End: *last.Time}
	}
	return md
}

func coordinates(points []model.PathPoint) []geo.Point {
	out := make([]geo.Point, len(points))
	for i := range points {
		out[i] = points[i].Coordinate
	}
	return out
}

// updateMetadata re-reads the full point set of a path and stores fresh metadata.
// With deleteIfEmpty an emptied path is removed instead. Missing paths are ignored.
func (s *Service) updateMetadata(ctx context.Context, pathID int64, deleteIfEmpty bool) error {
	p, err := s.paths.GetPath(ctx, pathID)
	if err != nil {
		return fmt.Errorf("failed to load path %d: %w", pathID, err)
	}
	if p == nil {
		return nil
	}

	points, err := s.points.GetPointsInPaths(ctx, []int64{pathID})
	if err != nil {
		return fmt.Errorf("failed to load points of path %d: %w", pathID, err)
	}

	if len(points) == 0 && deleteIfEmpty {
		slog.Debug("Removing emptied path", "path_id", pathID)
		return s.DeletePath(ctx, pathID)
	}

	p.Metadata = ComputeMetadata(points)
	if _, err := s.paths.SavePath(ctx, p); err != nil {
		return fmt.Errorf("failed to save metadata of path %d: %w", pathID, err)
	}

	s.events.publish(Event{Type: EventPathUpdated, PathID: pathID})
	return nil
}
