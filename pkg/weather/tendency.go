// Package weather derives pressure tendencies and forecasts from barometer history.
package weather

import (
	"math"
	"time"

	"trailgo/pkg/model"
)

// TendencyWindow is the reference period of a tendency.
const TendencyWindow = 3 * time.Hour

// Tendency classifies the pressure change between the reading closest to
// now - 3h and the last reading. readings must be in ascending time order.
// threshold is the change in hPa over 3 hours that counts as rising or falling.
// The returned amount is the signed change scaled to 3 hours.
func Tendency(readings []model.PressureReading, now time.Time, threshold float64) model.Tendency {
	steady := model.Tendency{Characteristic: model.Steady}
	if len(readings) == 0 {
		return steady
	}

	target := now.Add(-TendencyWindow)
	recent := readings[0]
	best := absDuration(recent.Time.Sub(target))
	for _, r := range readings[1:] {
		if d := absDuration(r.Time.Sub(target)); d < best {
			recent, best = r, d
		}
	}
	current := readings[len(readings)-1]

	hours := current.Time.Sub(recent.Time).Hours()
	if hours <= 0 {
		return steady
	}

	rate := (current.Value - recent.Value) / hours
	t := model.Tendency{Characteristic: model.Steady, Amount: rate * 3}
	switch {
	case math.Abs(rate) < threshold/3:
	case rate > 0:
		t.Characteristic = model.Rising
	default:
		t.Characteristic = model.Falling
	}
	return t
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// HourlyForecast maps a tendency to a short-term outlook. A fall of at least
// stormThreshold hPa per 3 hours signals a storm.
func HourlyForecast(t model.Tendency, stormThreshold float64) model.Forecast {
	if t.Characteristic == model.Falling && t.Amount <= -stormThreshold {
		return model.StormIncoming
	}
	switch t.Characteristic {
	case model.Falling:
		return model.Worsening
	case model.Rising:
		return model.Improving
	default:
		return model.NoChange
	}
}
