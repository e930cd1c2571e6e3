package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"trailgo/pkg/db"
	"trailgo/pkg/geo"
	"trailgo/pkg/model"
)

// Store defines the repository interface.
// It composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	PathStore
	PointStore
	PressureStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Times are stored as unix milliseconds; NULL means "no timestamp".

func toMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// --- Paths ---

const pathColumns = `id, name, line_style, point_style, color, visible, temporary,
	distance, num_points, start_time, end_time, north, east, south, west`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPath(row rowScanner) (*model.Path, error) {
	var p model.Path
	var name, line, point sql.NullString
	var start, end sql.NullInt64
	var north, east, south, west sql.NullFloat64

	err := row.Scan(
		&p.ID, &name, &line, &point, &p.Style.Color, &p.Style.Visible, &p.Temporary,
		&p.Metadata.Distance, &p.Metadata.PointCount, &start, &end,
		&north, &east, &south, &west,
	)
	if err != nil {
		return nil, err
	}

	p.Name = name.String
	p.Style.Line = model.LineStyle(line.String)
	p.Style.Point = model.PointColoring(point.String)

	if s, e := fromMillis(start), fromMillis(end); s != nil && e != nil {
		p.Metadata.Duration = &model.TimeRange{Start: *s, End: *e}
	}
	if north.Valid && east.Valid && south.Valid && west.Valid {
		p.Metadata.Bounds = &geo.BoundingBox{
			North: north.Float64,
			East:  east.Float64,
			South: south.Float64,
			West:  west.Float64,
		}
	}
	return &p, nil
}

func (s *SQLiteStore) SavePath(ctx context.Context, p *model.Path) (int64, error) {
	var start, end sql.NullInt64
	if p.Metadata.Duration != nil {
		start = toMillis(&p.Metadata.Duration.Start)
		end = toMillis(&p.Metadata.Duration.End)
	}
	var north, east, south, west sql.NullFloat64
	if b := p.Metadata.Bounds; b != nil {
		north = sql.NullFloat64{Float64: b.North, Valid: true}
		east = sql.NullFloat64{Float64: b.East, Valid: true}
		south = sql.NullFloat64{Float64: b.South, Valid: true}
		west = sql.NullFloat64{Float64: b.West, Valid: true}
	}

	args := []any{
		p.Name, string(p.Style.Line), string(p.Style.Point), p.Style.Color, p.Style.Visible, p.Temporary,
		p.Metadata.Distance, p.Metadata.PointCount, start, end, north, east, south, west,
	}

	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx, `INSERT INTO paths (
			name, line_style, point_style, color, visible, temporary,
			distance, num_points, start_time, end_time, north, east, south, west
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	_, err := s.db.ExecContext(ctx, `UPDATE paths SET
		name = ?, line_style = ?, point_style = ?, color = ?, visible = ?, temporary = ?,
		distance = ?, num_points = ?, start_time = ?, end_time = ?, north = ?, east = ?, south = ?, west = ?
		WHERE id = ?`, append(args, p.ID)...)
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (s *SQLiteStore) GetPath(ctx context.Context, id int64) (*model.Path, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pathColumns+` FROM paths WHERE id = ?`, id)
	p, err := scanPath(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return p, nil
}

func (s *SQLiteStore) GetAllPaths(ctx context.Context) ([]*model.Path, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pathColumns+` FROM paths ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*model.Path
	for rows.Next() {
		p, err := scanPath(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) DeletePath(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM paths WHERE id = ?", id)
	return err
}

// --- Points ---

func scanPoint(row rowScanner) (model.PathPoint, error) {
	var p model.PathPoint
	var elevation sql.NullFloat64
	var ts sql.NullInt64
	err := row.Scan(&p.ID, &p.PathID, &p.Coordinate.Lat, &p.Coordinate.Lon, &elevation, &ts)
	if err != nil {
		return p, err
	}
	if elevation.Valid {
		e := elevation.Float64
		p.Elevation = &e
	}
	p.Time = fromMillis(ts)
	return p, nil
}

func elevationArg(e *float64) sql.NullFloat64 {
	if e == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *e, Valid: true}
}

func (s *SQLiteStore) AddPoint(ctx context.Context, p *model.PathPoint) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO path_points (path_id, latitude, longitude, elevation, time) VALUES (?, ?, ?, ?, ?)`,
		p.PathID, p.Coordinate.Lat, p.Coordinate.Lon, elevationArg(p.Elevation), toMillis(p.Time))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

func (s *SQLiteStore) AddPoints(ctx context.Context, points []model.PathPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO path_points (path_id, latitude, longitude, elevation, time) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insert.Close()

	upsert, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO path_points (id, path_id, latitude, longitude, elevation, time) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer upsert.Close()

	for i := range points {
		p := &points[i]
		if p.ID == 0 {
			_, err = insert.ExecContext(ctx, p.PathID, p.Coordinate.Lat, p.Coordinate.Lon, elevationArg(p.Elevation), toMillis(p.Time))
		} else {
			_, err = upsert.ExecContext(ctx, p.ID, p.PathID, p.Coordinate.Lat, p.Coordinate.Lon, elevationArg(p.Elevation), toMillis(p.Time))
		}
		if err != nil {
			return fmt.Errorf("failed to write point %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) DeletePoint(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM path_points WHERE id = ?", id)
	return err
}

func (s *SQLiteStore) DeletePoints(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM path_points WHERE id IN ("+placeholders(len(ids))+")", args...)
	return err
}

func (s *SQLiteStore) DeletePointsInPath(ctx context.Context, pathID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM path_points WHERE path_id = ?", pathID)
	return err
}

func (s *SQLiteStore) DeletePointsOlderInPath(ctx context.Context, pathID int64, before time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM path_points WHERE path_id = ? AND time IS NOT NULL AND time < ?", pathID, before.UnixMilli())
	return err
}

func (s *SQLiteStore) DeletePointsOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM path_points WHERE time IS NOT NULL AND time < ?", before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) queryPoints(ctx context.Context, query string, args ...any) ([]model.PathPoint, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.PathPoint
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) GetPointsInPaths(ctx context.Context, pathIDs []int64) ([]model.PathPoint, error) {
	if len(pathIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(pathIDs))
	for i, id := range pathIDs {
		args[i] = id
	}
	return s.queryPoints(ctx,
		`SELECT id, path_id, latitude, longitude, elevation, time FROM path_points
		 WHERE path_id IN (`+placeholders(len(pathIDs))+`) ORDER BY id`, args...)
}

func (s *SQLiteStore) GetPointsByID(ctx context.Context, ids []int64) ([]model.PathPoint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.queryPoints(ctx,
		`SELECT id, path_id, latitude, longitude, elevation, time FROM path_points
		 WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id`, args...)
}

func (s *SQLiteStore) GetPointsSince(ctx context.Context, since time.Time) ([]model.PathPoint, error) {
	return s.queryPoints(ctx,
		`SELECT id, path_id, latitude, longitude, elevation, time FROM path_points
		 WHERE time IS NOT NULL AND time >= ? ORDER BY time, id`, since.UnixMilli())
}

// --- Pressure ---

func (s *SQLiteStore) AddReading(ctx context.Context, r *model.PressureAltitudeReading) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pressures (pressure, altitude, temperature, time) VALUES (?, ?, ?, ?)`,
		r.Pressure, r.Altitude, r.Temperature, r.Time.UnixMilli())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	r.ID = id
	return id, nil
}

func (s *SQLiteStore) GetReadingsSince(ctx context.Context, since time.Time) ([]model.PressureAltitudeReading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pressure, altitude, temperature, time FROM pressures WHERE time >= ? ORDER BY time, id`,
		since.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.PressureAltitudeReading
	for rows.Next() {
		var r model.PressureAltitudeReading
		var ts int64
		if err := rows.Scan(&r.ID, &r.Pressure, &r.Altitude, &r.Temperature, &ts); err != nil {
			return nil, err
		}
		r.Time = time.UnixMilli(ts)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) DeleteReadingsOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM pressures WHERE time < ?", before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
