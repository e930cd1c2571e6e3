package api

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"trailgo/pkg/geo"
	"trailgo/pkg/model"
)

// PathGeoJSON renders a path as a feature collection holding one LineString
// (or Point, for single point paths). now dates the magnetic model when the
// path has no timestamps.
func PathGeoJSON(p *model.Path, points []model.PathPoint, now time.Time) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(points) == 0 {
		return fc
	}

	coords := make([]geo.Point, len(points))
	for i, pt := range points {
		coords[i] = pt.Coordinate
	}

	var geometry orb.Geometry
	if len(coords) == 1 {
		geometry = geo.ToOrb(coords[0])
	} else {
		geometry = geo.LineString(coords)
	}

	f := geojson.NewFeature(geometry)
	f.ID = p.ID
	f.Properties["name"] = p.Name
	f.Properties["temporary"] = p.Temporary
	f.Properties["line"] = string(p.Style.Line)
	f.Properties["point_coloring"] = string(p.Style.Point)
	f.Properties["color"] = argbToHex(p.Style.Color)
	f.Properties["visible"] = p.Style.Visible
	f.Properties["distance"] = p.Metadata.Distance
	f.Properties["point_count"] = p.Metadata.PointCount

	date := now
	if d := p.Metadata.Duration; d != nil {
		f.Properties["start"] = d.Start.UTC().Format(time.RFC3339)
		f.Properties["end"] = d.End.UTC().Format(time.RFC3339)
		date = d.Start
	}

	first, last := coords[0], coords[len(coords)-1]
	var alt float64
	if points[0].Elevation != nil {
		alt = *points[0].Elevation
	}
	f.Properties["declination"] = round(geo.Declination(first, alt, date), 2)
	if len(coords) > 1 {
		f.Properties["bearing"] = round(geo.Bearing(first, last), 1)
		f.Properties["magnetic_bearing"] = round(geo.MagneticBearing(first, last, date), 1)
	}

	fc.Append(f)
	return fc
}

// argbToHex formats an ARGB color as #AARRGGBB.
func argbToHex(c int64) string {
	return fmt.Sprintf("#%08X", uint32(c))
}

func round(v float64, places int) float64 {
	m := math.Pow(10, float64(places))
	return math.Round(v*m) / m
}
