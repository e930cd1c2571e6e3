// Package paths manages recorded paths, their points and derived metadata.
package paths

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"trailgo/pkg/clock"
	"trailgo/pkg/geo"
	"trailgo/pkg/logging"
	"trailgo/pkg/model"
	"trailgo/pkg/simplify"
	"trailgo/pkg/store"
)

// BacktrackKey is the state key holding the active backtrack path ID.
const BacktrackKey = "last_backtrack_path_id"

// ErrPointNotFound is returned when a referenced point ID is not stored.
var ErrPointNotFound = errors.New("point not found")

// Preferences supplies user settings the service reads at call time.
type Preferences interface {
	BacktrackHistory(ctx context.Context) time.Duration
	DefaultPathStyle(ctx context.Context) model.PathStyle
}

// Service is the path aggregate manager. It keeps path metadata consistent with
// the stored point set and owns the backtrack pointer.
type Service struct {
	paths  store.PathStore
	points store.PointStore
	state  store.StateStore
	prefs  Preferences
	clock  clock.Clock

	// backtrackMu guards read-modify-write of the backtrack pointer.
	backtrackMu sync.Mutex
	events      *broadcaster
}

// NewService creates a path service.
func NewService(paths store.PathStore, points store.PointStore, state store.StateStore, prefs Preferences, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		paths:  paths,
		points: points,
		state:  state,
		prefs:  prefs,
		clock:  clk,
		events: newBroadcaster(),
	}
}

// Subscribe returns a channel of change events and a function to stop receiving them.
func (s *Service) Subscribe(buffer int) (<-chan Event, func()) {
	return s.events.subscribe(buffer)
}

// --- Paths ---

// AddPath stores a new path with empty metadata and returns its ID.
// A zero style is replaced by the configured default style.
func (s *Service) AddPath(ctx context.Context, p *model.Path) (int64, error) {
	np := *p
	np.ID = 0
	np.Metadata = model.EmptyMetadata
	if np.Style == (model.PathStyle{}) {
		np.Style = s.prefs.DefaultPathStyle(ctx)
	}

	id, err := s.paths.SavePath(ctx, &np)
	if err != nil {
		return 0, fmt.Errorf("failed to add path: %w", err)
	}
	s.events.publish(Event{Type: EventPathUpdated, PathID: id})
	return id, nil
}

// UpdatePath changes the name, style and temporary flag of an existing path.
// Metadata is left untouched. It returns false if the path does not exist.
func (s *Service) UpdatePath(ctx context.Context, p *model.Path) (bool, error) {
	existing, err := s.paths.GetPath(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	existing.Name = p.Name
	existing.Style = p.Style
	existing.Temporary = p.Temporary
	if _, err := s.paths.SavePath(ctx, existing); err != nil {
		return false, fmt.Errorf("failed to update path %d: %w", p.ID, err)
	}
	s.events.publish(Event{Type: EventPathUpdated, PathID: p.ID})
	return true, nil
}

// GetPath returns nil, nil when the path does not exist.
func (s *Service) GetPath(ctx context.Context, id int64) (*model.Path, error) {
	return s.paths.GetPath(ctx, id)
}

func (s *Service) GetPaths(ctx context.Context) ([]*model.Path, error) {
	return s.paths.GetAllPaths(ctx)
}

// GetPoints returns the points of one path ordered by ID.
func (s *Service) GetPoints(ctx context.Context, pathID int64) ([]model.PathPoint, error) {
	return s.points.GetPointsInPaths(ctx, []int64{pathID})
}

// GetPointsInPaths returns the points of the given paths grouped by path ID.
func (s *Service) GetPointsInPaths(ctx context.Context, pathIDs []int64) (map[int64][]model.PathPoint, error) {
	out := make(map[int64][]model.PathPoint, len(pathIDs))
	if len(pathIDs) == 0 {
		return out, nil
	}
	points, err := s.points.GetPointsInPaths(ctx, pathIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		out[p.PathID] = append(out[p.PathID], p)
	}
	return out, nil
}

// DeletePath removes a path and all of its points, clearing the backtrack pointer
// first if it referenced the path.
func (s *Service) DeletePath(ctx context.Context, id int64) error {
	s.backtrackMu.Lock()
	current, ok := s.backtrackID(ctx)
	if ok && current == id {
		if err := s.state.DeleteState(ctx, BacktrackKey); err != nil {
			s.backtrackMu.Unlock()
			return fmt.Errorf("failed to clear backtrack pointer: %w", err)
		}
	}
	s.backtrackMu.Unlock()

	if err := s.points.DeletePointsInPath(ctx, id); err != nil {
		return fmt.Errorf("failed to delete points of path %d: %w", id, err)
	}
	if err := s.paths.DeletePath(ctx, id); err != nil {
		return fmt.Errorf("failed to delete path %d: %w", id, err)
	}

	slog.Debug("Path deleted", "path_id", id)
	s.events.publish(Event{Type: EventPathDeleted, PathID: id})
	return nil
}

// MergePaths creates a new path holding the points of a followed by those of b,
// then deletes both. It returns 0 if either path is missing or a == b.
func (s *Service) MergePaths(ctx context.Context, a, b int64) (int64, error) {
	if a == b {
		return 0, nil
	}
	start, err := s.paths.GetPath(ctx, a)
	if err != nil {
		return 0, err
	}
	end, err := s.paths.GetPath(ctx, b)
	if err != nil {
		return 0, err
	}
	if start == nil || end == nil {
		return 0, nil
	}

	startPoints, err := s.GetPoints(ctx, a)
	if err != nil {
		return 0, err
	}
	endPoints, err := s.GetPoints(ctx, b)
	if err != nil {
		return 0, err
	}

	newID, err := s.AddPath(ctx, &model.Path{Name: start.Name, Style: start.Style})
	if err != nil {
		return 0, err
	}

	all := make([]model.PathPoint, 0, len(startPoints)+len(endPoints))
	for _, p := range append(startPoints, endPoints...) {
		p.ID = 0
		all = append(all, p)
	}
	if err := s.AddPoints(ctx, all, newID); err != nil {
		return 0, err
	}

	if err := s.repointBacktrack(ctx, newID, a, b); err != nil {
		return 0, err
	}

	if err := s.DeletePath(ctx, a); err != nil {
		return 0, err
	}
	if err := s.DeletePath(ctx, b); err != nil {
		return 0, err
	}

	slog.Info("Paths merged", "from", []int64{a, b}, "into", newID, "points", len(all))
	return newID, nil
}

// repointBacktrack moves the pointer to newID if it currently names one of from.
// Check and write happen under one lock so a concurrent backtrack insert cannot
// start a path that is then overwritten.
func (s *Service) repointBacktrack(ctx context.Context, newID int64, from ...int64) error {
	s.backtrackMu.Lock()
	defer s.backtrackMu.Unlock()

	cur, ok := s.backtrackID(ctx)
	if !ok || !slices.Contains(from, cur) {
		return nil
	}
	return s.setBacktrackID(ctx, newID)
}

// Simplify drops points that deviate less than the quality tolerance from the
// simplified line and returns how many were deleted. Points are processed in ID order.
func (s *Service) Simplify(ctx context.Context, pathID int64, quality simplify.Quality) (int, error) {
	p, err := s.paths.GetPath(ctx, pathID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, nil
	}

	points, err := s.GetPoints(ctx, pathID)
	if err != nil {
		return 0, err
	}

	kept := simplify.Simplify(points, quality.Epsilon(), crossTrack)
	keep := make(map[int64]bool, len(kept))
	for _, k := range kept {
		keep[k.ID] = true
	}

	var drop []int64
	for _, pt := range points {
		if !keep[pt.ID] {
			logging.TraceDefault("Simplify dropping point", "path_id", pathID, "point_id", pt.ID)
			drop = append(drop, pt.ID)
		}
	}

	if err := s.points.DeletePoints(ctx, drop); err != nil {
		return 0, fmt.Errorf("failed to delete simplified points: %w", err)
	}
	if err := s.updateMetadata(ctx, pathID, false); err != nil {
		return 0, err
	}

	slog.Debug("Path simplified", "path_id", pathID, "quality", quality, "deleted", len(drop))
	return len(drop), nil
}

func crossTrack(p, start, end model.PathPoint) float64 {
	d := geo.CrossTrackDistance(p.Coordinate, start.Coordinate, end.Coordinate)
	if d < 0 {
		return -d
	}
	return d
}

// --- Points ---

// AddPoint appends a point to its path and returns the new point ID,
// or 0 if the path does not exist.
func (s *Service) AddPoint(ctx context.Context, point model.PathPoint) (int64, error) {
	if !point.Coordinate.Valid() {
		return 0, geo.ErrInvalidCoordinate
	}
	p, err := s.paths.GetPath(ctx, point.PathID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, nil
	}

	point.ID = 0
	id, err := s.points.AddPoint(ctx, &point)
	if err != nil {
		return 0, fmt.Errorf("failed to add point: %w", err)
	}
	if err := s.updateMetadata(ctx, point.PathID, false); err != nil {
		return 0, err
	}
	return id, nil
}

// AddPoints assigns all points to the target path, writes them in one batch and
// recomputes the target metadata once. Points keep their IDs; ID 0 gets a new one.
func (s *Service) AddPoints(ctx context.Context, points []model.PathPoint, targetPathID int64) error {
	for _, pt := range points {
		if !pt.Coordinate.Valid() {
			return geo.ErrInvalidCoordinate
		}
	}
	p, err := s.paths.GetPath(ctx, targetPathID)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	batch := make([]model.PathPoint, len(points))
	for i, pt := range points {
		pt.PathID = targetPathID
		batch[i] = pt
	}
	if err := s.points.AddPoints(ctx, batch); err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}
	return s.updateMetadata(ctx, targetPathID, false)
}

// MovePoints reassigns stored points to the target path and refreshes the metadata
// of the target and of every path the points came from. Coordinates and source
// paths are taken from the store; unknown IDs fail with ErrPointNotFound.
func (s *Service) MovePoints(ctx context.Context, pointIDs []int64, targetPathID int64) error {
	ids := slices.Clone(pointIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	points, err := s.points.GetPointsByID(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load points: %w", err)
	}
	if len(points) != len(ids) {
		found := make(map[int64]bool, len(points))
		for _, pt := range points {
			found[pt.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return fmt.Errorf("%w: %d", ErrPointNotFound, id)
			}
		}
	}

	var oldPaths []int64
	seen := make(map[int64]bool)
	for _, pt := range points {
		if pt.PathID == targetPathID || seen[pt.PathID] {
			continue
		}
		seen[pt.PathID] = true
		oldPaths = append(oldPaths, pt.PathID)
	}

	if err := s.AddPoints(ctx, points, targetPathID); err != nil {
		return err
	}
	for _, old := range oldPaths {
		if err := s.updateMetadata(ctx, old, false); err != nil {
			return err
		}
	}
	return nil
}

// DeletePoint removes a point and recomputes its path metadata.
func (s *Service) DeletePoint(ctx context.Context, point model.PathPoint) error {
	if err := s.points.DeletePoint(ctx, point.ID); err != nil {
		return fmt.Errorf("failed to delete point %d: %w", point.ID, err)
	}
	return s.updateMetadata(ctx, point.PathID, false)
}

// RecentAltitudes returns the elevations of timed points recorded since the given time.
func (s *Service) RecentAltitudes(ctx context.Context, since time.Time) ([]model.AltitudeReading, error) {
	points, err := s.points.GetPointsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	readings := make([]model.AltitudeReading, 0, len(points))
	for _, p := range points {
		if p.Elevation == nil || p.Time == nil {
			continue
		}
		readings = append(readings, model.AltitudeReading{Value: *p.Elevation, Time: *p.Time})
	}
	return readings, nil
}
