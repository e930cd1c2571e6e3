package weather

import (
	"sort"
	"time"

	"trailgo/pkg/model"
)

// DailyForecaster compares average pressure between the two most recent
// calendar days present in the history.
type DailyForecaster struct {
	// Threshold is the day-over-day change in hPa required for a trend.
	Threshold float64
	// Location defines day boundaries. Nil means UTC.
	Location *time.Location
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func (f DailyForecaster) Forecast(readings []model.PressureReading) model.Forecast {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}

	type bucket struct {
		sum   float64
		count int
		start time.Time
	}
	buckets := make(map[dayKey]*bucket)
	for _, r := range readings {
		t := r.Time.In(loc)
		k := dayKey{t.Year(), t.Month(), t.Day()}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{start: time.Date(k.year, k.month, k.day, 0, 0, 0, 0, loc)}
			buckets[k] = b
		}
		b.sum += r.Value
		b.count++
	}

	if len(buckets) < 2 {
		return model.NoChange
	}

	days := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, b)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].start.Before(days[j].start) })

	prev, last := days[len(days)-2], days[len(days)-1]
	delta := last.sum/float64(last.count) - prev.sum/float64(prev.count)

	switch {
	case delta > f.Threshold:
		return model.Improving
	case delta < -f.Threshold:
		return model.Worsening
	default:
		return model.NoChange
	}
}
