package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailgo/pkg/model"
	"trailgo/pkg/weather"
)

func TestWeatherHandler_Forecast(t *testing.T) {
	env := newTestEnv(t)

	samples := []struct {
		p   float64
		ago time.Duration
	}{
		{1020, 30 * time.Hour}, // previous day
		{1012, 3 * time.Hour},
		{1004, 0},
	}
	for _, s := range samples {
		var resp map[string]int64
		status := env.do(t, "POST", "/api/weather/readings", model.PressureAltitudeReading{
			Pressure: s.p,
			Time:     testNow.Add(-s.ago),
		}, &resp)
		require.Equal(t, http.StatusCreated, status)
		assert.NotZero(t, resp["id"])
	}

	var readings []model.PressureReading
	require.Equal(t, http.StatusOK, env.do(t, "GET", "/api/weather/readings", nil, &readings))
	require.Len(t, readings, 3)
	assert.Equal(t, 1020.0, readings[0].Value, "uncalibrated and ordered by time")

	var tend model.Tendency
	require.Equal(t, http.StatusOK, env.do(t, "GET", "/api/weather/tendency", nil, &tend))
	assert.Equal(t, model.Falling, tend.Characteristic)
	assert.InDelta(t, -8, tend.Amount, 1e-9)

	var forecast ForecastResponse
	require.Equal(t, http.StatusOK, env.do(t, "GET", "/api/weather/forecast", nil, &forecast))
	assert.Equal(t, model.StormIncoming, forecast.Hourly)
	assert.Equal(t, model.Worsening, forecast.Daily)
	assert.Equal(t, tend, forecast.Tendency)
}

func TestWeatherHandler_EmptyHistory(t *testing.T) {
	env := newTestEnv(t)

	var readings []model.PressureReading
	require.Equal(t, http.StatusOK, env.do(t, "GET", "/api/weather/readings", nil, &readings))
	assert.NotNil(t, readings)
	assert.Empty(t, readings)

	var forecast ForecastResponse
	require.Equal(t, http.StatusOK, env.do(t, "GET", "/api/weather/forecast", nil, &forecast))
	assert.Equal(t, model.Steady, forecast.Tendency.Characteristic)
	assert.Equal(t, model.NoChange, forecast.Hourly)
	assert.Equal(t, model.NoChange, forecast.Daily)
}

func TestWeatherHandler_Comfort(t *testing.T) {
	env := newTestEnv(t)

	var c weather.Comfort
	require.Equal(t, http.StatusOK, env.do(t, "GET", "/api/weather/comfort?temp=20&humidity=50", nil, &c))
	assert.Equal(t, 20.0, c.Temperature)
	assert.Equal(t, 20.0, c.HeatIndex)
	assert.Equal(t, model.HeatNormal, c.Alert)
	assert.InDelta(t, 9.26, c.DewPoint, 0.05)

	require.Equal(t, http.StatusOK, env.do(t, "GET", "/api/weather/comfort?temp=35&humidity=60", nil, &c))
	assert.Greater(t, c.HeatIndex, 35.0)
	assert.NotEqual(t, model.HeatNormal, c.Alert)
}

func TestWeatherHandler_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"Zero pressure", "POST", "/api/weather/readings", model.PressureAltitudeReading{Pressure: 0}, http.StatusBadRequest},
		{"Negative pressure", "POST", "/api/weather/readings", model.PressureAltitudeReading{Pressure: -3}, http.StatusBadRequest},
		{"Invalid JSON", "POST", "/api/weather/readings", "nope", http.StatusBadRequest},
		{"Missing temp", "GET", "/api/weather/comfort?humidity=50", nil, http.StatusBadRequest},
		{"Missing humidity", "GET", "/api/weather/comfort?temp=20", nil, http.StatusBadRequest},
		{"Bad temp", "GET", "/api/weather/comfort?temp=warm&humidity=50", nil, http.StatusBadRequest},
		{"Humidity out of range", "GET", "/api/weather/comfort?temp=20&humidity=120", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.do(t, tt.method, tt.path, tt.body, nil))
		})
	}
}
