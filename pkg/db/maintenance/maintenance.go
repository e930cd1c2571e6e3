package maintenance

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"trailgo/pkg/db"
	"trailgo/pkg/geo"
	"trailgo/pkg/logging"
	"trailgo/pkg/model"
	"trailgo/pkg/store"
)

const importStatePrefix = "track_import_mtime:"

// TrackSink receives imported tracks. paths.Service satisfies it.
type TrackSink interface {
	AddPath(ctx context.Context, p *model.Path) (int64, error)
	AddPoints(ctx context.Context, points []model.PathPoint, targetPathID int64) error
}

// Run executes all maintenance tasks: track import and database optimization.
// It blocks until completion. Failures are logged, not returned, so startup continues.
func Run(ctx context.Context, sink TrackSink, state store.StateStore, d *db.DB, importDir string) error {
	slog.Info("Starting database maintenance...")

	if n, err := ImportTracks(ctx, sink, state, importDir); err != nil {
		slog.Error("Track import failed", "error", err)
	} else {
		slog.Info("Track import check completed", "imported", n)
	}

	if _, err := d.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		slog.Error("Database optimize failed", "error", err)
	}

	return nil
}

// Importer binds ImportTracks to a sink and directory for periodic polling.
type Importer struct {
	Sink  TrackSink
	State store.StateStore
	Dir   string
}

// Import runs ImportTracks over the configured directory.
func (i *Importer) Import(ctx context.Context) (int, error) {
	return ImportTracks(ctx, i.Sink, i.State, i.Dir)
}

// ImportTracks imports every *.csv file in dir as a new path. A file is imported
// again only when its modification time changes. It returns the number of paths created.
func ImportTracks(ctx context.Context, sink TrackSink, state store.StateStore, dir string) (int, error) {
	if dir == "" {
		return 0, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return 0, fmt.Errorf("failed to list import dir: %w", err)
	}
	sort.Strings(files)

	imported := 0
	for _, f := range files {
		ok, err := importFile(ctx, sink, state, f)
		if err != nil {
			slog.Warn("Skipping track file", "path", f, "error", err)
			continue
		}
		if ok {
			imported++
		}
	}
	return imported, nil
}

func importFile(ctx context.Context, sink TrackSink, state store.StateStore, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat csv: %w", err)
	}

	fileMTime := info.ModTime().UTC().Format(time.RFC3339Nano)
	key := importStatePrefix + filepath.Base(path)
	if stored, found := state.GetState(ctx, key); found && stored == fileMTime {
		return false, nil // Up to date
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	points, err := ReadTrack(f)
	if err != nil {
		return false, err
	}

	if len(points) > 0 {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		id, err := sink.AddPath(ctx, &model.Path{Name: name})
		if err != nil {
			return false, err
		}
		if err := sink.AddPoints(ctx, points, id); err != nil {
			return false, err
		}
		slog.Info("Imported track", "path", path, "path_id", id, "points", len(points))
	}

	if err := state.SetState(ctx, key, fileMTime); err != nil {
		return false, fmt.Errorf("failed to update state: %w", err)
	}
	return len(points) > 0, nil
}

// ReadTrack parses a track CSV with the headers Latitude, Longitude and optionally
// Elevation and Time (RFC 3339). Header names are case-insensitive. Rows with
// invalid coordinates are skipped.
func ReadTrack(r io.Reader) ([]model.PathPoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Handle potential BOM (Byte Order Mark) at start of file
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\xef\xbb\xbf")
	}

	idxMap := make(map[string]int)
	for i, h := range headers {
		idxMap[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idxMap["latitude"]; !ok {
		return nil, fmt.Errorf("missing Latitude column")
	}
	if _, ok := idxMap["longitude"]; !ok {
		return nil, fmt.Errorf("missing Longitude column")
	}

	return processRows(reader, idxMap)
}

func processRows(reader *csv.Reader, idxMap map[string]int) ([]model.PathPoint, error) {
	get := func(row []string, col string) string {
		if i, ok := idxMap[col]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var points []model.PathPoint
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv read error: %w", err)
		}

		lat, errLat := strconv.ParseFloat(get(record, "latitude"), 64)
		lon, errLon := strconv.ParseFloat(get(record, "longitude"), 64)
		c := geo.Point{Lat: lat, Lon: lon}
		if errLat != nil || errLon != nil || !c.Valid() {
			logging.Trace(slog.Default(), "Skipping track row", "line", line)
			continue
		}

		pt := model.PathPoint{Coordinate: c}
		if elev, err := strconv.ParseFloat(get(record, "elevation"), 64); err == nil {
			pt.Elevation = &elev
		}
		if ts, err := time.Parse(time.RFC3339, get(record, "time")); err == nil {
			pt.Time = &ts
		}
		points = append(points, pt)
	}
	return points, nil
}
