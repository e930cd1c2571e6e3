package model

import (
	"time"

	"trailgo/pkg/geo"
)

// LineStyle controls how a path is drawn.
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDotted LineStyle = "dotted"
	LineArrow  LineStyle = "arrow"
)

// PointColoring selects how individual path points are tinted.
type PointColoring string

const (
	ColoringNone     PointColoring = "none"
	ColoringAltitude PointColoring = "altitude"
	ColoringTime     PointColoring = "time"
)

// PathStyle is the display descriptor stored with a path.
type PathStyle struct {
	Line    LineStyle     `json:"line" yaml:"line"`
	Point   PointColoring `json:"point" yaml:"point"`
	Color   int64         `json:"color" yaml:"color"` // ARGB
	Visible bool          `json:"visible" yaml:"visible"`
}

// TimeRange is an inclusive start/end pair.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PathMetadata is derived from the point set of a path and never edited directly.
type PathMetadata struct {
	Distance   float64          `json:"distance"` // meters
	PointCount int              `json:"point_count"`
	Duration   *TimeRange       `json:"duration,omitempty"`
	Bounds     *geo.BoundingBox `json:"bounds,omitempty"`
}

// EmptyMetadata is the metadata of a path without points.
var EmptyMetadata = PathMetadata{}

// Path is a named, styled collection of points.
type Path struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name,omitempty"`
	Style     PathStyle    `json:"style"`
	Metadata  PathMetadata `json:"metadata"`
	Temporary bool         `json:"temporary"` // auto-recorded backtrack path
}

// PathPoint is a single recorded location belonging to one path.
type PathPoint struct {
	ID         int64      `json:"id"` // insertion order
	PathID     int64      `json:"path_id"`
	Coordinate geo.Point  `json:"coordinate"`
	Elevation  *float64   `json:"elevation,omitempty"`
	Time       *time.Time `json:"time,omitempty"`
}

// AltitudeReading is an elevation sample taken at a point in time.
type AltitudeReading struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}
