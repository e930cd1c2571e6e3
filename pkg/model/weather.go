package model

import (
	"math"
	"time"
)

// PressureReading is a barometric pressure sample in hPa.
type PressureReading struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// PressureAltitudeReading is a raw barometer sample as recorded by the device.
type PressureAltitudeReading struct {
	ID          int64     `json:"id,omitempty"`
	Pressure    float64   `json:"pressure"`    // hPa, station level
	Altitude    float64   `json:"altitude"`    // meters
	Temperature float64   `json:"temperature"` // Celsius
	Time        time.Time `json:"time"`
}

// PressureCharacteristic is the direction of a pressure change.
type PressureCharacteristic string

const (
	Rising  PressureCharacteristic = "rising"
	Falling PressureCharacteristic = "falling"
	Steady  PressureCharacteristic = "steady"
)

// Tendency is the direction and signed amount of pressure change, in hPa per 3 hours.
type Tendency struct {
	Characteristic PressureCharacteristic `json:"characteristic"`
	Amount         float64                `json:"amount"`
}

// Magnitude returns the absolute change.
func (t Tendency) Magnitude() float64 {
	return math.Abs(t.Amount)
}

// Forecast is a coarse weather outlook.
type Forecast string

const (
	StormIncoming Forecast = "storm"
	Improving     Forecast = "improving"
	Worsening     Forecast = "worsening"
	NoChange      Forecast = "steady"
)

// HeatAlert classifies a heat index into comfort bands.
type HeatAlert string

const (
	FrostbiteDanger  HeatAlert = "frostbite_danger"
	FrostbiteWarning HeatAlert = "frostbite_warning"
	FrostbiteCaution HeatAlert = "frostbite_caution"
	HeatNormal       HeatAlert = "normal"
	HeatCaution      HeatAlert = "heat_caution"
	HeatWarning      HeatAlert = "heat_warning"
	HeatAlertLevel   HeatAlert = "heat_alert"
	HeatDanger       HeatAlert = "heat_danger"
)
