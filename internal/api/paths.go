package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"trailgo/pkg/geo"
	"trailgo/pkg/model"
	"trailgo/pkg/paths"
	"trailgo/pkg/simplify"
)

// QualitySource supplies the default simplification quality.
type QualitySource interface {
	SimplificationQuality(ctx context.Context) simplify.Quality
}

// PathHandler serves path, point and backtrack endpoints.
type PathHandler struct {
	svc   *paths.Service
	prefs QualitySource
	now   func() time.Time
}

// NewPathHandler creates a new PathHandler.
func NewPathHandler(svc *paths.Service, prefs QualitySource) *PathHandler {
	return &PathHandler{svc: svc, prefs: prefs, now: time.Now}
}

// PointRequest is a point as submitted by clients.
type PointRequest struct {
	Lat       float64    `json:"lat"`
	Lon       float64    `json:"lon"`
	Elevation *float64   `json:"elevation,omitempty"`
	Time      *time.Time `json:"time,omitempty"`
}

func (p PointRequest) toPoint(pathID int64) (model.PathPoint, error) {
	c := geo.Point{Lat: p.Lat, Lon: p.Lon}
	if !c.Valid() {
		return model.PathPoint{}, geo.ErrInvalidCoordinate
	}
	return model.PathPoint{PathID: pathID, Coordinate: c, Elevation: p.Elevation, Time: p.Time}, nil
}

// PathRequest creates or updates a path. Nil fields are left unchanged on update.
type PathRequest struct {
	Name      *string          `json:"name,omitempty"`
	Style     *model.PathStyle `json:"style,omitempty"`
	Temporary *bool            `json:"temporary,omitempty"`
}

func (req *PathRequest) apply(p *model.Path) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Style != nil {
		p.Style = *req.Style
	}
	if req.Temporary != nil {
		p.Temporary = *req.Temporary
	}
}

// HandleList returns all paths ordered by ?sort= (longest, shortest, recent, name, closest).
func (h *PathHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var ref *geo.Point
	if q.Get("lat") != "" || q.Get("lon") != "" {
		lat, err := queryFloat(r, "lat")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		lon, err := queryFloat(r, "lon")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ref = &geo.Point{Lat: lat, Lon: lon}
	}

	strategy, err := paths.StrategyFor(q.Get("sort"), ref)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	all, err := h.svc.GetPaths(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	sorted := strategy.Sort(all)
	if sorted == nil {
		sorted = []*model.Path{}
	}
	writeJSON(w, http.StatusOK, sorted)
}

func (h *PathHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var p model.Path
	req.apply(&p)

	id, err := h.svc.AddPath(r.Context(), &p)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	h.writePath(w, r, http.StatusCreated, id)
}

func (h *PathHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writePath(w, r, http.StatusOK, id)
}

func (h *PathHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req PathRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.svc.GetPath(r.Context(), id)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, errPathNotFound.Error())
		return
	}
	req.apply(existing)

	ok, err := h.svc.UpdatePath(r.Context(), existing)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errPathNotFound.Error())
		return
	}
	h.writePath(w, r, http.StatusOK, id)
}

func (h *PathHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeletePath(r.Context(), id); err != nil {
		writeInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PathHandler) HandleGetPoints(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	points, err := h.svc.GetPoints(r.Context(), p.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if points == nil {
		points = []model.PathPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

// HandleAddPoints appends a batch of new points and returns the updated path.
func (h *PathHandler) HandleAddPoints(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}

	var req []PointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	points := make([]model.PathPoint, 0, len(req))
	for _, pr := range req {
		pt, err := pr.toPoint(p.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		points = append(points, pt)
	}

	if err := h.svc.AddPoints(r.Context(), points, p.ID); err != nil {
		writeInternal(w, r, err)
		return
	}
	h.writePath(w, r, http.StatusCreated, p.ID)
}

// MoveRequest lists stored points to reassign.
type MoveRequest struct {
	PointIDs []int64 `json:"point_ids"`
}

// HandleMovePoints reassigns stored points to this path. Only IDs are taken from
// the client; coordinates and source paths come from the store.
func (h *PathHandler) HandleMovePoints(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}

	var req MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.PointIDs) == 0 {
		writeError(w, http.StatusBadRequest, "point_ids is required")
		return
	}
	for _, id := range req.PointIDs {
		if id <= 0 {
			writeError(w, http.StatusBadRequest, "point ids must be positive")
			return
		}
	}

	if err := h.svc.MovePoints(r.Context(), req.PointIDs, p.ID); err != nil {
		if errors.Is(err, paths.ErrPointNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeInternal(w, r, err)
		return
	}
	h.writePath(w, r, http.StatusOK, p.ID)
}

func (h *PathHandler) HandleDeletePoint(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	pointID, err := pathInt64(r, "pointID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := h.svc.GetPoints(r.Context(), p.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	idx := slices.IndexFunc(points, func(pt model.PathPoint) bool { return pt.ID == pointID })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "point not found")
		return
	}

	if err := h.svc.DeletePoint(r.Context(), points[idx]); err != nil {
		writeInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PathHandler) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	points, err := h.svc.GetPoints(r.Context(), p.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	data, err := PathGeoJSON(p, points, h.now()).MarshalJSON()
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

// HandleSimplify runs Douglas-Peucker on a path. ?quality= overrides the configured quality.
func (h *PathHandler) HandleSimplify(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}

	quality := h.prefs.SimplificationQuality(r.Context())
	if raw := r.URL.Query().Get("quality"); raw != "" {
		q, err := simplify.ParseQuality(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		quality = q
	}

	deleted, err := h.svc.Simplify(r.Context(), p.ID, quality)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	updated, err := h.svc.GetPath(r.Context(), p.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quality": quality,
		"deleted": deleted,
		"path":    updated,
	})
}

// MergeRequest names the two paths to merge, in order.
type MergeRequest struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

func (h *PathHandler) HandleMerge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.A == req.B {
		writeError(w, http.StatusBadRequest, "cannot merge a path with itself")
		return
	}

	id, err := h.svc.MergePaths(r.Context(), req.A, req.B)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if id == 0 {
		writeError(w, http.StatusNotFound, errPathNotFound.Error())
		return
	}
	h.writePath(w, r, http.StatusCreated, id)
}

// BacktrackResponse describes the active backtrack path, if any.
type BacktrackResponse struct {
	Active bool        `json:"active"`
	Path   *model.Path `json:"path,omitempty"`
}

func (h *PathHandler) HandleBacktrack(w http.ResponseWriter, r *http.Request) {
	var resp BacktrackResponse
	if id, ok := h.svc.BacktrackPathID(r.Context()); ok {
		p, err := h.svc.GetPath(r.Context(), id)
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		resp.Active = p != nil
		resp.Path = p
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PathHandler) HandleBacktrackPoint(w http.ResponseWriter, r *http.Request) {
	var req PointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pt, err := req.toPoint(0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := h.svc.AddBacktrackPoint(r.Context(), pt)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{
		"path_id":  added.PathID,
		"point_id": added.ID,
	})
}

func (h *PathHandler) HandleBacktrackEnd(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EndBacktrackPath(r.Context()); err != nil {
		writeInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAltitudes returns elevations recorded since ?since= (RFC3339, default 24h ago).
func (h *PathHandler) HandleAltitudes(w http.ResponseWriter, r *http.Request) {
	since := h.now().Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since, expected RFC3339")
			return
		}
		since = t
	}

	readings, err := h.svc.RecentAltitudes(r.Context(), since)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// --- Helpers ---

var errPathNotFound = errors.New("path not found")

// requirePath resolves {id} and writes 400/404/500 itself when it returns false.
func (h *PathHandler) requirePath(w http.ResponseWriter, r *http.Request) (*model.Path, bool) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	p, err := h.svc.GetPath(r.Context(), id)
	if err != nil {
		writeInternal(w, r, err)
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, errPathNotFound.Error())
		return nil, false
	}
	return p, true
}

func (h *PathHandler) writePath(w http.ResponseWriter, r *http.Request, status int, id int64) {
	p, err := h.svc.GetPath(r.Context(), id)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, errPathNotFound.Error())
		return
	}
	writeJSON(w, status, p)
}
