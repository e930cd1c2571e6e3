package paths

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"trailgo/pkg/geo"
	"trailgo/pkg/logging"
	"trailgo/pkg/model"
)

// backtrackID reads the pointer. Callers hold backtrackMu.
func (s *Service) backtrackID(ctx context.Context) (int64, bool) {
	val, ok := s.state.GetState(ctx, BacktrackKey)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func (s *Service) setBacktrackID(ctx context.Context, id int64) error {
	if err := s.state.SetState(ctx, BacktrackKey, strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("failed to store backtrack pointer: %w", err)
	}
	return nil
}

// BacktrackPathID returns the active backtrack path, if any.
func (s *Service) BacktrackPathID(ctx context.Context) (int64, bool) {
	s.backtrackMu.Lock()
	defer s.backtrackMu.Unlock()
	return s.backtrackID(ctx)
}

// AddBacktrackPoint records a point on the active backtrack path, creating a new
// temporary path when none is active or the referenced one is gone. The stored
// point is returned with its ID and PathID set.
func (s *Service) AddBacktrackPoint(ctx context.Context, point model.PathPoint) (model.PathPoint, error) {
	if !point.Coordinate.Valid() {
		return model.PathPoint{}, geo.ErrInvalidCoordinate
	}

	s.backtrackMu.Lock()
	defer s.backtrackMu.Unlock()

	pathID, ok := s.backtrackID(ctx)
	if ok {
		p, err := s.paths.GetPath(ctx, pathID)
		if err != nil {
			return model.PathPoint{}, err
		}
		ok = p != nil
	}

	if !ok {
		np := &model.Path{Style: s.prefs.DefaultPathStyle(ctx), Temporary: true}
		id, err := s.paths.SavePath(ctx, np)
		if err != nil {
			return model.PathPoint{}, fmt.Errorf("failed to create backtrack path: %w", err)
		}
		if err := s.setBacktrackID(ctx, id); err != nil {
			return model.PathPoint{}, err
		}
		slog.Info("Started backtrack path", "path_id", id)
		pathID = id
	}

	point.PathID = pathID
	id, err := s.AddPoint(ctx, point)
	if err != nil {
		return model.PathPoint{}, err
	}
	point.ID = id
	logging.TraceDefault("Backtrack point added", "path_id", pathID, "point_id", id, "lat", point.Coordinate.Lat, "lon", point.Coordinate.Lon)
	return point, nil
}

// EndBacktrackPath clears the pointer. The path and its points are kept.
func (s *Service) EndBacktrackPath(ctx context.Context) error {
	s.backtrackMu.Lock()
	defer s.backtrackMu.Unlock()
	return s.state.DeleteState(ctx, BacktrackKey)
}

// PruneOldBacktrackPoints deletes points older than now - retention from every
// temporary path. Paths left empty are deleted.
func (s *Service) PruneOldBacktrackPoints(ctx context.Context, retention time.Duration) error {
	all, err := s.paths.GetAllPaths(ctx)
	if err != nil {
		return err
	}

	cutoff := s.clock.Now().Add(-retention)
	for _, p := range all {
		if !p.Temporary {
			continue
		}
		if err := s.points.DeletePointsOlderInPath(ctx, p.ID, cutoff); err != nil {
			return fmt.Errorf("failed to prune path %d: %w", p.ID, err)
		}
		if err := s.updateMetadata(ctx, p.ID, true); err != nil {
			return err
		}
	}
	return nil
}

// Clean prunes temporary paths using the configured backtrack history.
func (s *Service) Clean(ctx context.Context) error {
	return s.PruneOldBacktrackPoints(ctx, s.prefs.BacktrackHistory(ctx))
}
