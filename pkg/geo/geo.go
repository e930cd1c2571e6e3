package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// EarthRadius is the mean Earth radius in meters used by all spherical calculations.
const EarthRadius = 6371000.0

// ErrInvalidCoordinate is returned when a latitude or longitude is out of range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within the standard latitude/longitude ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// BoundingBox is the smallest lat/lon rectangle containing a set of points.
type BoundingBox struct {
	North float64 `json:"north"`
	East  float64 `json:"east"`
	South float64 `json:"south"`
	West  float64 `json:"west"`
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Point {
	return Point{Lat: (b.North + b.South) / 2, Lon: (b.East + b.West) / 2}
}

func toRad(deg float64) float64 { return deg * (math.Pi / 180.0) }

func toDeg(rad float64) float64 { return rad * (180.0 / math.Pi) }

// Distance calculates the Haversine distance between two points in meters.
func Distance(p1, p2 Point) float64 {
	dLat := toRad(p2.Lat - p1.Lat)
	dLon := toRad(p2.Lon - p1.Lon)
	lat1 := toRad(p1.Lat)
	lat2 := toRad(p2.Lat)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	// Rounding can push a marginally above 1 for antipodal points.
	a = math.Min(1, a)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// DestinationPoint calculates the destination point from a start point, given distance (in meters) and bearing (in degrees).
func DestinationPoint(start Point, distMeters, bearing float64) Point {
	lat1 := toRad(start.Lat)
	lon1 := toRad(start.Lon)
	brng := toRad(bearing)
	ang := distMeters / EarthRadius

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ang) +
		math.Cos(lat1)*math.Sin(ang)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(ang)*math.Cos(lat1),
		math.Cos(ang)-math.Sin(lat1)*math.Sin(lat2))

	return Point{
		Lat: toDeg(lat2),
		Lon: NormalizeAngle(toDeg(lon2)),
	}
}

// Bearing calculates the initial bearing (forward azimuth) from p1 to p2 in degrees, in [0, 360).
func Bearing(p1, p2 Point) float64 {
	lat1 := toRad(p1.Lat)
	lat2 := toRad(p2.Lat)
	dLon := toRad(p2.Lon - p1.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Mod(toDeg(math.Atan2(y, x))+360.0, 360.0)
	if brng >= 360 {
		brng = 0
	}
	return brng
}

// CrossTrackDistance returns the signed distance in meters from p to the great circle
// passing through start and end. Positive values lie to the right of the start->end direction.
// A zero-length segment degrades to the plain distance from start to p.
func CrossTrackDistance(p, start, end Point) float64 {
	if start == end {
		return Distance(start, p)
	}
	d13 := Distance(start, p) / EarthRadius
	theta13 := toRad(Bearing(start, p))
	theta12 := toRad(Bearing(start, end))

	return math.Asin(math.Sin(d13)*math.Sin(theta13-theta12)) * EarthRadius
}

// PathDistance sums the distances between consecutive points.
func PathDistance(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// Bounds returns the bounding box of the points, or nil if there are none.
func Bounds(points []Point) *BoundingBox {
	if len(points) == 0 {
		return nil
	}
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = ToOrb(p)
	}
	b := mp.Bound()
	return &BoundingBox{
		North: b.Top(),
		East:  b.Right(),
		South: b.Bottom(),
		West:  b.Left(),
	}
}

// ToOrb converts a Point to an orb.Point (lon, lat order).
func ToOrb(p Point) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// LineString converts an ordered set of points into an orb.LineString.
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = ToOrb(p)
	}
	return ls
}

// NormalizeAngle normalizes an angle difference to the range [-180, 180].
func NormalizeAngle(angleDeg float64) float64 {
	for angleDeg > 180 {
		angleDeg -= 360
	}
	for angleDeg < -180 {
		angleDeg += 360
	}
	return angleDeg
}
