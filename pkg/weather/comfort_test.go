package weather

import (
	"math"
	"testing"
	"time"

	"trailgo/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrateTemperature(t *testing.T) {
	c := TemperatureCalibration{MinActual: -10, MinRaw: -5, MaxActual: 40, MaxRaw: 45}

	assert.InDelta(t, -10, CalibrateTemperature(-5, c), 1e-9)
	assert.InDelta(t, 40, CalibrateTemperature(45, c), 1e-9)
	assert.InDelta(t, 15, CalibrateTemperature(20, c), 1e-9)

	// Degenerate references
	assert.Equal(t, 21.5, CalibrateTemperature(21.5, TemperatureCalibration{}))
}

func TestHeatIndex(t *testing.T) {
	tests := []struct {
		name     string
		temp, rh float64
		want     float64
		delta    float64
	}{
		{"cool air unchanged", 20, 80, 20, 0},
		{"freezing unchanged", -20, 50, -20, 0},
		{"hot and humid", 32, 70, 40.6, 1},    // NWS table: 90°F/70% -> 105°F
		{"very hot and dry", 40, 10, 37.5, 1.5}, // 104°F/10% -> ~99°F
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, HeatIndex(tt.temp, tt.rh), tt.delta+1e-9)
		})
	}

	// Total for odd input
	for _, rh := range []float64{-10, 0, 150} {
		assert.False(t, math.IsNaN(HeatIndex(35, rh)), "rh=%v", rh)
	}
}

func TestHeatAlertFor(t *testing.T) {
	tests := []struct {
		hi   float64
		want model.HeatAlert
	}{
		{-30, model.FrostbiteDanger},
		{-25, model.FrostbiteDanger},
		{-20, model.FrostbiteWarning},
		{0, model.FrostbiteCaution},
		{20, model.HeatNormal},
		{27, model.HeatCaution},
		{35, model.HeatWarning},
		{45, model.HeatAlertLevel},
		{55, model.HeatDanger},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HeatAlertFor(tt.hi), "hi=%v", tt.hi)
	}
}

func TestDewPoint(t *testing.T) {
	assert.InDelta(t, 20, DewPoint(20, 100), 1e-9)
	assert.InDelta(t, 9.3, DewPoint(20, 50), 0.2)
	assert.False(t, math.IsNaN(DewPoint(20, 0)))
	assert.False(t, math.IsInf(DewPoint(20, 0), 0))
}

func TestSeaLevelPressure(t *testing.T) {
	// At sea level nothing changes
	assert.InDelta(t, 1000, SeaLevelPressure(1000, 0, 15, false), 1e-9)
	assert.InDelta(t, 1000, SeaLevelPressure(1000, 0, 15, true), 1e-9)

	// ISA: 898.76 hPa at 1000 m reduces to ~1013.25
	assert.InDelta(t, 1013.25, SeaLevelPressure(898.76, 1000, 0, false), 0.5)

	// Colder air is denser, so the correction is larger
	cold := SeaLevelPressure(900, 1000, -10, true)
	warm := SeaLevelPressure(900, 1000, 30, true)
	assert.Greater(t, cold, warm)

	// Degenerate altitude falls back to station pressure
	assert.Equal(t, 900.0, SeaLevelPressure(900, 1e6, 0, false))
}

func TestCalibratorFor(t *testing.T) {
	now := time.Now()
	raw := []model.PressureAltitudeReading{{Pressure: 898.76, Altitude: 1000, Temperature: 15, Time: now}}

	c, err := CalibratorFor("none", false)
	require.NoError(t, err)
	assert.Equal(t, []model.PressureReading{{Value: 898.76, Time: now}}, c.Calibrate(raw))

	c, err = CalibratorFor("Barometric", false)
	require.NoError(t, err)
	got := c.Calibrate(raw)
	require.Len(t, got, 1)
	assert.InDelta(t, 1013.25, got[0].Value, 0.5)

	_, err = CalibratorFor("gps", false)
	assert.Error(t, err)
}
