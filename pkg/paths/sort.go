package paths

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"trailgo/pkg/geo"
	"trailgo/pkg/model"
)

// SortStrategy orders a list of paths.
type SortStrategy interface {
	Sort(paths []*model.Path) []*model.Path
}

// SortFunc adapts a less function to SortStrategy. Sorting is stable and returns a new slice.
type SortFunc func(a, b *model.Path) bool

func (f SortFunc) Sort(paths []*model.Path) []*model.Path {
	out := make([]*model.Path, len(paths))
	copy(out, paths)
	sort.SliceStable(out, func(i, j int) bool { return f(out[i], out[j]) })
	return out
}

var (
	Longest  = SortFunc(func(a, b *model.Path) bool { return a.Metadata.Distance > b.Metadata.Distance })
	Shortest = SortFunc(func(a, b *model.Path) bool { return a.Metadata.Distance < b.Metadata.Distance })
	// Recent puts paths with the latest end time first; untimed paths go last.
	Recent = SortFunc(func(a, b *model.Path) bool { return endTime(a).After(endTime(b)) })
	// Name sorts case-insensitively; unnamed paths go last.
	Name = SortFunc(func(a, b *model.Path) bool {
		if a.Name == "" || b.Name == "" {
			return a.Name != ""
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
)

func endTime(p *model.Path) time.Time {
	if p.Metadata.Duration == nil {
		return time.Time{}
	}
	return p.Metadata.Duration.End
}

// Closest orders paths by the distance from ref to the centre of their bounds.
// Paths without bounds go last.
func Closest(ref geo.Point) SortStrategy {
	return SortFunc(func(a, b *model.Path) bool {
		return centreDistance(ref, a) < centreDistance(ref, b)
	})
}

func centreDistance(ref geo.Point, p *model.Path) float64 {
	if p.Metadata.Bounds == nil {
		return 1e18
	}
	return geo.Distance(ref, p.Metadata.Bounds.Center())
}

// StrategyFor resolves a strategy name. ref is only used by "closest".
func StrategyFor(name string, ref *geo.Point) (SortStrategy, error) {
	switch strings.ToLower(name) {
	case "", "longest":
		return Longest, nil
	case "shortest":
		return Shortest, nil
	case "recent":
		return Recent, nil
	case "name":
		return Name, nil
	case "closest":
		if ref == nil {
			return nil, fmt.Errorf("closest sort needs a reference point")
		}
		return Closest(*ref), nil
	default:
		return nil, fmt.Errorf("unknown sort strategy %q", name)
	}
}
