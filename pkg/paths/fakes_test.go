package paths

import (
	"context"
	"sort"
	"sync"
	"time"

	"trailgo/pkg/model"
)

// memStore is an in-memory PathStore, PointStore and StateStore.
type memStore struct {
	mu        sync.Mutex
	paths     map[int64]model.Path
	points    map[int64]model.PathPoint
	state     map[string]string
	nextPath  int64
	nextPoint int64
	saves     int
}

func newMemStore() *memStore {
	return &memStore{
		paths:  make(map[int64]model.Path),
		points: make(map[int64]model.PathPoint),
		state:  make(map[string]string),
	}
}

func (m *memStore) SavePath(_ context.Context, p *model.Path) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	cp := *p
	if cp.ID == 0 {
		m.nextPath++
		cp.ID = m.nextPath
	} else if _, ok := m.paths[cp.ID]; !ok {
		return cp.ID, nil
	}
	m.paths[cp.ID] = cp
	return cp.ID, nil
}

func (m *memStore) GetPath(_ context.Context, id int64) (*model.Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.paths[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) GetAllPaths(_ context.Context) ([]*model.Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Path
	for _, p := range m.paths {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DeletePath(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.paths, id)
	return nil
}

func (m *memStore) AddPoint(_ context.Context, p *model.PathPoint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPoint++
	p.ID = m.nextPoint
	m.points[p.ID] = *p
	return p.ID, nil
}

func (m *memStore) AddPoints(_ context.Context, points []model.PathPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		if p.ID == 0 {
			m.nextPoint++
			p.ID = m.nextPoint
		}
		m.points[p.ID] = p
	}
	return nil
}

func (m *memStore) DeletePoint(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.points, id)
	return nil
}

func (m *memStore) DeletePoints(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.points, id)
	}
	return nil
}

func (m *memStore) DeletePointsInPath(_ context.Context, pathID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.points {
		if p.PathID == pathID {
			delete(m.points, id)
		}
	}
	return nil
}

func (m *memStore) DeletePointsOlderInPath(_ context.Context, pathID int64, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.points {
		if p.PathID == pathID && p.Time != nil && p.Time.Before(before) {
			delete(m.points, id)
		}
	}
	return nil
}

func (m *memStore) DeletePointsOlderThan(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, p := range m.points {
		if p.Time != nil && p.Time.Before(before) {
			delete(m.points, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) sortedPoints(keep func(model.PathPoint) bool) []model.PathPoint {
	var out []model.PathPoint
	for _, p := range m.points {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) GetPointsInPaths(_ context.Context, pathIDs []int64) ([]model.PathPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[int64]bool, len(pathIDs))
	for _, id := range pathIDs {
		want[id] = true
	}
	return m.sortedPoints(func(p model.PathPoint) bool { return want[p.PathID] }), nil
}

func (m *memStore) GetPointsByID(_ context.Context, ids []int64) ([]model.PathPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.sortedPoints(func(p model.PathPoint) bool { return want[p.ID] }), nil
}

func (m *memStore) GetPointsSince(_ context.Context, since time.Time) ([]model.PathPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedPoints(func(p model.PathPoint) bool { return p.Time != nil && !p.Time.Before(since) }), nil
}

func (m *memStore) GetState(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.state[key]
	return v, ok
}

func (m *memStore) SetState(_ context.Context, key, val string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[key] = val
	return nil
}

func (m *memStore) DeleteState(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state, key)
	return nil
}

func (m *memStore) pointCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.points)
}

type fakePrefs struct {
	history time.Duration
	style   model.PathStyle
}

func (f fakePrefs) BacktrackHistory(context.Context) time.Duration { return f.history }
func (f fakePrefs) DefaultPathStyle(context.Context) model.PathStyle { return f.style }
