package api

import (
	"errors"
	"net/http"

	"trailgo/pkg/model"
	"trailgo/pkg/weather"
)

// WeatherHandler serves barometer and comfort endpoints.
type WeatherHandler struct {
	svc *weather.Service
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(svc *weather.Service) *WeatherHandler {
	return &WeatherHandler{svc: svc}
}

// ForecastResponse combines both forecast horizons with the tendency they derive from.
type ForecastResponse struct {
	Tendency model.Tendency `json:"tendency"`
	Hourly   model.Forecast `json:"hourly"`
	Daily    model.Forecast `json:"daily"`
}

// HandleRecord stores one raw barometer sample.
func (h *WeatherHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	var req model.PressureAltitudeReading
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.svc.RecordReading(r.Context(), req)
	if errors.Is(err, weather.ErrInvalidReading) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// HandleReadings returns the calibrated history.
func (h *WeatherHandler) HandleReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := h.svc.Readings(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if readings == nil {
		readings = []model.PressureReading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

func (h *WeatherHandler) HandleTendency(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Tendency(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *WeatherHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t, err := h.svc.Tendency(ctx)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	hourly, err := h.svc.HourlyForecast(ctx)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	daily, err := h.svc.DailyForecast(ctx)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ForecastResponse{Tendency: t, Hourly: hourly, Daily: daily})
}

// HandleComfort derives heat index, alert and dew point from ?temp= (raw sensor
// Celsius, calibrated here) and ?humidity= (percent).
func (h *WeatherHandler) HandleComfort(w http.ResponseWriter, r *http.Request) {
	raw, err := queryFloat(r, "temp")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	humidity, err := queryFloat(r, "humidity")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if humidity < 0 || humidity > 100 {
		writeError(w, http.StatusBadRequest, "humidity must be within 0..100")
		return
	}

	temp := h.svc.CalibrateTemperature(r.Context(), raw)
	writeJSON(w, http.StatusOK, h.svc.Comfort(temp, humidity))
}
