package config

import (
	"fmt"
	"strconv"

	"trailgo/pkg/simplify"
	"trailgo/pkg/weather"
)

// Persistent state keys (Registry)
const (
	KeyBacktrackHistory      = "backtrack_history"
	KeySimplificationQuality = "simplification_quality"
	KeyStormThreshold        = "storm_threshold"
	KeyHourlyThreshold       = "hourly_change_threshold"
	KeyDailyThreshold        = "daily_change_threshold"
	KeySeaLevelCalibrator    = "sea_level_calibrator"
	KeyUseTemperature        = "sea_level_use_temperature"
)

// RuntimeKeys validates values for every key that can be changed at runtime.
var RuntimeKeys = map[string]func(string) error{
	KeyBacktrackHistory: func(v string) error {
		d, err := ParseDuration(v)
		if err != nil {
			return err
		}
		if d <= 0 {
			return fmt.Errorf("backtrack history must be positive")
		}
		return nil
	},
	KeySimplificationQuality: func(v string) error {
		_, err := simplify.ParseQuality(v)
		return err
	},
	KeyStormThreshold:  validatePressure,
	KeyHourlyThreshold: validatePressure,
	KeyDailyThreshold:  validatePressure,
	KeySeaLevelCalibrator: func(v string) error {
		_, err := weather.CalibratorFor(v, false)
		return err
	},
	KeyUseTemperature: func(v string) error {
		_, err := strconv.ParseBool(v)
		return err
	},
}

func validatePressure(v string) error {
	p, err := ParsePressure(v)
	if err != nil {
		return err
	}
	if p < 0 {
		return fmt.Errorf("threshold must not be negative")
	}
	return nil
}

// UnknownKeyError is returned when setting a key that is not a runtime setting.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown setting %q", e.Key)
}

// InvalidValueError is returned when a runtime setting fails validation.
type InvalidValueError struct {
	Key string
	Err error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.Key, e.Err)
}

func (e *InvalidValueError) Unwrap() error { return e.Err }
