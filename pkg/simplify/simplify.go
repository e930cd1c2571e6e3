// Package simplify implements Ramer-Douglas-Peucker point reduction over any point type.
package simplify

// Metric returns the distance of point from the segment formed by start and end.
// Implementations must return a non-negative value.
type Metric[T any] func(point, start, end T) float64

// Simplify reduces points with the Ramer-Douglas-Peucker algorithm and returns the kept
// points in their original order. The first and last points are always kept.
//
// An epsilon of zero (or less) disables reduction, as do inputs with fewer than three points;
// in both cases a copy of the input is returned.
func Simplify[T any](points []T, epsilon float64, metric Metric[T]) []T {
	if len(points) < 3 || epsilon <= 0 {
		out := make([]T, len(points))
		copy(out, points)
		return out
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	reduce(points, 0, len(points)-1, epsilon, metric, keep)

	out := make([]T, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

// reduce marks the points to keep between the inclusive indices first and last.
// The endpoints are already marked by the caller.
func reduce[T any](points []T, first, last int, epsilon float64, metric Metric[T], keep []bool) {
	if last-first < 2 {
		return
	}

	idx, maxDist := first, -1.0
	for i := first + 1; i < last; i++ {
		if d := metric(points[i], points[first], points[last]); d > maxDist {
			maxDist = d
			idx = i
		}
	}

	if maxDist > epsilon {
		keep[idx] = true
		reduce(points, first, idx, epsilon, metric, keep)
		reduce(points, idx, last, epsilon, metric, keep)
	}
}
