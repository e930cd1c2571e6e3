package simplify

import (
	"math"
	"math/rand"
	"testing"

	"trailgo/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type xy struct {
	id   int
	x, y float64
}

// lineDistance is the perpendicular distance from p to the infinite line through a and b.
func lineDistance(p, a, b xy) float64 {
	dx, dy := b.x-a.x, b.y-a.y
	mag := math.Hypot(dx, dy)
	if mag == 0 {
		return math.Hypot(p.x-a.x, p.y-a.y)
	}
	return math.Abs(dy*p.x-dx*p.y+b.x*a.y-b.y*a.x) / mag
}

func crossTrack(p, a, b geo.Point) float64 {
	return math.Abs(geo.CrossTrackDistance(p, a, b))
}

func ids(points []xy) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.id
	}
	return out
}

func TestSimplify_Table(t *testing.T) {
	tests := []struct {
		name    string
		points  []xy
		epsilon float64
		wantIDs []int
	}{
		{
			name:    "Empty",
			points:  nil,
			epsilon: 1,
			wantIDs: []int{},
		},
		{
			name:    "TwoPoints",
			points:  []xy{{1, 0, 0}, {2, 5, 5}},
			epsilon: 1,
			wantIDs: []int{1, 2},
		},
		{
			name:    "Collinear",
			points:  []xy{{1, 0, 0}, {2, 1, 1}, {3, 2, 2}, {4, 3, 3}},
			epsilon: 0.001,
			wantIDs: []int{1, 4},
		},
		{
			name:    "SingleSpikeKept",
			points:  []xy{{1, 0, 0}, {2, 1, 0.1}, {3, 2, 5}, {4, 3, 0.1}, {5, 4, 0}},
			epsilon: 1,
			wantIDs: []int{1, 3, 5},
		},
		{
			name:    "SmallNoiseDropped",
			points:  []xy{{1, 0, 0}, {2, 1, 0.2}, {3, 2, -0.3}, {4, 3, 0.1}, {5, 4, 0}},
			epsilon: 0.5,
			wantIDs: []int{1, 5},
		},
		{
			name:    "DuplicatePoints",
			points:  []xy{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 1, 0}},
			epsilon: 0.1,
			wantIDs: []int{1, 4},
		},
		{
			name:    "ZeroEpsilonKeepsEverything",
			points:  []xy{{1, 0, 0}, {2, 1, 1}, {3, 2, 2}, {4, 3, 3}},
			epsilon: 0,
			wantIDs: []int{1, 2, 3, 4},
		},
		{
			name:    "RecursesIntoBothHalves",
			points:  []xy{{1, 0, 0}, {2, 1, 2}, {3, 2, 0}, {4, 3, 10}, {5, 4, 0}, {6, 5, 2}, {7, 6, 0}},
			epsilon: 1,
			wantIDs: []int{1, 2, 3, 4, 5, 6, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.points, tt.epsilon, lineDistance)
			assert.Equal(t, tt.wantIDs, ids(got))
		})
	}
}

func TestSimplify_DoesNotAliasInput(t *testing.T) {
	in := []xy{{1, 0, 0}, {2, 1, 1}}
	out := Simplify(in, 1, lineDistance)
	out[0].id = 99
	assert.Equal(t, 1, in[0].id)
}

func TestSimplify_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(60)
		points := make([]geo.Point, n)
		lat, lon := 46.0, 7.0
		for i := range points {
			lat += (rng.Float64() - 0.5) * 0.0005
			lon += rng.Float64() * 0.0005
			points[i] = geo.Point{Lat: lat, Lon: lon}
		}

		// Zero tolerance removes nothing.
		require.Equal(t, points, Simplify(points, 0, crossTrack))
		if n == 0 {
			continue
		}

		for _, eps := range []float64{1, 2, 4, 8, 16, 64} {
			kept := Simplify(points, eps, crossTrack)

			require.NotEmpty(t, kept)
			assert.Equal(t, points[0], kept[0], "first point kept")
			assert.Equal(t, points[n-1], kept[len(kept)-1], "last point kept")
			assertOrderedSubset(t, points, kept)

			// The kept polyline never grows longer than the original.
			assert.LessOrEqual(t, geo.PathDistance(kept), geo.PathDistance(points)+1e-6)
		}
	}
}

func TestSimplify_CollinearGeo(t *testing.T) {
	var points []geo.Point
	for i := 0; i < 20; i++ {
		points = append(points, geo.Point{Lat: 0, Lon: float64(i) * 0.001})
	}

	for _, eps := range []float64{0.001, Low.Epsilon(), Medium.Epsilon(), High.Epsilon()} {
		got := Simplify(points, eps, crossTrack)
		assert.Equal(t, []geo.Point{points[0], points[len(points)-1]}, got, "eps=%v", eps)
	}
}

func assertOrderedSubset(t *testing.T, all, subset []geo.Point) {
	t.Helper()
	j := 0
	for _, p := range all {
		if j < len(subset) && subset[j] == p {
			j++
		}
	}
	assert.Equal(t, len(subset), j, "result must be an ordered subset of the input")
}

func TestQuality(t *testing.T) {
	assert.Greater(t, Low.Epsilon(), Medium.Epsilon())
	assert.Greater(t, Medium.Epsilon(), High.Epsilon())

	tests := []struct {
		in      string
		want    Quality
		wantErr bool
	}{
		{"low", Low, false},
		{"HIGH", High, false},
		{" Medium ", Medium, false},
		{"", Medium, false},
		{"ultra", Medium, true},
	}
	for _, tt := range tests {
		got, err := ParseQuality(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownQuality)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	var q Quality
	require.NoError(t, q.UnmarshalText([]byte("high")))
	assert.Equal(t, High, q)
	b, err := Low.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "low", string(b))
}
