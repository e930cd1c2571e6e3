package weather

import (
	"fmt"
	"math"
	"strings"

	"trailgo/pkg/model"
)

// ISA constants
const (
	T0          = 288.15  // Standard Sea Level Temperature (K)
	L           = 0.0065  // Temperature Lapse Rate (K/m) in Troposphere
	G           = 9.80665 // Gravity (m/s^2)
	R           = 287.058 // Specific gas constant for dry air (J/(kg·K))
	ZeroCelsius = 273.15  // 0°C in Kelvin
)

// barometricExponent is g / (R * L).
var barometricExponent = G / (R * L)

// SeaLevelPressure reduces a station pressure in hPa to sea level. Without
// temperature the ISA standard atmosphere is assumed.
func SeaLevelPressure(pressure, altitude, tempC float64, useTemperature bool) float64 {
	var base float64
	if useTemperature {
		base = 1 - (L*altitude)/(tempC+L*altitude+ZeroCelsius)
	} else {
		base = 1 - (L*altitude)/T0
	}
	if base <= 0 || math.IsNaN(base) {
		return pressure
	}
	return pressure * math.Pow(base, -barometricExponent)
}

// Calibrator converts raw barometer samples into pressure readings.
type Calibrator interface {
	Calibrate(readings []model.PressureAltitudeReading) []model.PressureReading
}

// NoCalibration passes station pressure through.
type NoCalibration struct{}

func (NoCalibration) Calibrate(readings []model.PressureAltitudeReading) []model.PressureReading {
	out := make([]model.PressureReading, len(readings))
	for i, r := range readings {
		out[i] = model.PressureReading{Value: r.Pressure, Time: r.Time}
	}
	return out
}

// BarometricCalibrator reduces each sample to sea level using its recorded altitude.
type BarometricCalibrator struct {
	UseTemperature bool
}

func (c BarometricCalibrator) Calibrate(readings []model.PressureAltitudeReading) []model.PressureReading {
	out := make([]model.PressureReading, len(readings))
	for i, r := range readings {
		out[i] = model.PressureReading{
			Value: SeaLevelPressure(r.Pressure, r.Altitude, r.Temperature, c.UseTemperature),
			Time:  r.Time,
		}
	}
	return out
}

// CalibratorFor resolves a calibrator by name ("none" or "barometric").
func CalibratorFor(name string, useTemperature bool) (Calibrator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return NoCalibration{}, nil
	case "barometric":
		return BarometricCalibrator{UseTemperature: useTemperature}, nil
	default:
		return nil, fmt.Errorf("unknown sea level calibrator %q", name)
	}
}
