package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support extended units (d, w) in YAML.
type Duration time.Duration

// Common durations.
const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ParseDuration parses a duration string, supporting d and w.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	// time.ParseDuration rejects d and w, so composites containing them
	// ("1d12h") go through the extended scanner.
	if strings.ContainsAny(s, "dw") {
		return parseExtendedDuration(s)
	}

	return time.ParseDuration(s)
}

var unitMap = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"µs": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  Day,
	"w":  Week,
}

var durationPart = regexp.MustCompile(`([0-9.]+)([a-zµ]+)`)

func parseExtendedDuration(s string) (time.Duration, error) {
	var total time.Duration

	matches := durationPart.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	for _, match := range matches {
		valStr := match[1]
		unitStr := match[2]

		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in duration: %s", valStr)
		}

		base, ok := unitMap[unitStr]
		if !ok {
			return 0, fmt.Errorf("unknown unit: %s", unitStr)
		}

		total += time.Duration(val * float64(base))
	}

	return total, nil
}

// Pressure represents a pressure or pressure change in hPa.
type Pressure float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Pressure) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		// Plain number means hPa
		var f float64
		if errNum := value.Decode(&f); errNum == nil {
			*p = Pressure(f)
			return nil
		}
		return err
	}

	hpa, err := ParsePressure(s)
	if err != nil {
		return err
	}
	*p = Pressure(hpa)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p Pressure) MarshalYAML() (interface{}, error) {
	return strconv.FormatFloat(float64(p), 'f', -1, 64) + "hPa", nil
}

// Conversion factors to hPa
const (
	HPaPerInHg = 33.8639
	HPaPerMmHg = 1.33322
)

// ParsePressure parses a pressure with an optional unit (hPa, mbar, inHg, mmHg).
// Unitless values are hPa.
func ParsePressure(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	lower := strings.ToLower(s)
	mult := 1.0
	numStr := s

	switch {
	case strings.HasSuffix(lower, "hpa"):
		numStr = s[:len(s)-3]
	case strings.HasSuffix(lower, "mbar"):
		numStr = s[:len(s)-4]
	case strings.HasSuffix(lower, "inhg"):
		mult = HPaPerInHg
		numStr = s[:len(s)-4]
	case strings.HasSuffix(lower, "mmhg"):
		mult = HPaPerMmHg
		numStr = s[:len(s)-4]
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pressure number: %w", err)
	}

	return val * mult, nil
}
