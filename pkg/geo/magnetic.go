package geo

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// Declination returns the magnetic declination in degrees (+East, -West) at the given
// position, altitude (meters) and date, using the World Magnetic Model.
// Returns 0 when the model cannot be evaluated (e.g. date outside the model epoch).
func Declination(p Point, altitudeM float64, date time.Time) float64 {
	loc := egm96.NewLocationGeodetic(p.Lat, p.Lon, altitudeM)

	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		return 0
	}

	d := mag.D()
	if math.IsNaN(d) {
		return 0
	}
	return d
}

// MagneticBearing converts the true bearing from p1 to p2 into a magnetic bearing in [0, 360).
func MagneticBearing(p1, p2 Point, date time.Time) float64 {
	return ToMagnetic(Bearing(p1, p2), Declination(p1, 0, date))
}

// ToMagnetic applies a declination to a true bearing, returning a value in [0, 360).
func ToMagnetic(trueBearing, declination float64) float64 {
	b := math.Mod(trueBearing-declination+360, 360)
	if b < 0 {
		b += 360
	}
	return b
}
