package paths

import (
	"testing"
	"time"

	"trailgo/pkg/geo"
	"trailgo/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(paths []*model.Path) []int64 {
	out := make([]int64, len(paths))
	for i, p := range paths {
		out[i] = p.ID
	}
	return out
}

func TestSortStrategies(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	input := []*model.Path{
		{ID: 1, Name: "bravo", Metadata: model.PathMetadata{
			Distance: 500,
			Duration: &model.TimeRange{Start: t0, End: t0.Add(time.Hour)},
			Bounds:   &geo.BoundingBox{North: 10, East: 10, South: 10, West: 10},
		}},
		{ID: 2, Name: "Alpha", Metadata: model.PathMetadata{
			Distance: 1500,
			Duration: &model.TimeRange{Start: t0, End: t0.Add(3 * time.Hour)},
			Bounds:   &geo.BoundingBox{North: 1, East: 1, South: 1, West: 1},
		}},
		{ID: 3, Metadata: model.PathMetadata{Distance: 100}},
	}

	tests := []struct {
		name     string
		strategy string
		ref      *geo.Point
		want     []int64
	}{
		{"default is longest", "", nil, []int64{2, 1, 3}},
		{"longest", "longest", nil, []int64{2, 1, 3}},
		{"shortest", "shortest", nil, []int64{3, 1, 2}},
		{"recent", "recent", nil, []int64{2, 1, 3}},
		{"name", "NAME", nil, []int64{2, 1, 3}},
		{"closest", "closest", &geo.Point{Lat: 9, Lon: 9}, []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := StrategyFor(tt.strategy, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(s.Sort(input)))
		})
	}

	// Input order untouched
	assert.Equal(t, []int64{1, 2, 3}, ids(input))
}

func TestStrategyFor_Errors(t *testing.T) {
	_, err := StrategyFor("closest", nil)
	assert.Error(t, err)
	_, err = StrategyFor("random", nil)
	assert.Error(t, err)
}

func TestComputeMetadata_Empty(t *testing.T) {
	assert.Equal(t, model.EmptyMetadata, ComputeMetadata(nil))
}
