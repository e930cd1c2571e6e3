package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"trailgo/pkg/clock"
	"trailgo/pkg/model"
	"trailgo/pkg/store"
)

// ErrInvalidReading is returned for samples that cannot be stored.
var ErrInvalidReading = errors.New("invalid pressure reading")

// Settings are the weather thresholds and calibration in effect for a call.
type Settings struct {
	StormThreshold        float64 // hPa per 3h
	HourlyChangeThreshold float64 // hPa per 3h
	DailyChangeThreshold  float64 // hPa per day
	History               time.Duration
	Calibrator            string
	UseTemperature        bool
	Temperature           TemperatureCalibration
	Location              *time.Location
}

// SettingsProvider returns the current settings.
type SettingsProvider interface {
	WeatherSettings(ctx context.Context) Settings
}

// Comfort bundles the derived comfort values for one temperature/humidity pair.
type Comfort struct {
	Temperature float64         `json:"temperature"`
	Humidity    float64         `json:"humidity"`
	HeatIndex   float64         `json:"heat_index"`
	Alert       model.HeatAlert `json:"alert"`
	DewPoint    float64         `json:"dew_point"`
}

// Service records barometer samples and derives forecasts from them.
type Service struct {
	readings store.PressureStore
	settings SettingsProvider
	clock    clock.Clock
	logger   *slog.Logger
}

// NewService creates a weather service.
func NewService(readings store.PressureStore, settings SettingsProvider, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		readings: readings,
		settings: settings,
		clock:    clk,
		logger:   slog.With("component", "weather"),
	}
}

// RecordReading stores a raw sample. A zero time is replaced with the current time.
func (s *Service) RecordReading(ctx context.Context, r model.PressureAltitudeReading) (int64, error) {
	if r.Pressure <= 0 || math.IsNaN(r.Pressure) || math.IsNaN(r.Altitude) || math.IsNaN(r.Temperature) {
		return 0, fmt.Errorf("%w: pressure %v", ErrInvalidReading, r.Pressure)
	}
	if r.Time.IsZero() {
		r.Time = s.clock.Now()
	}
	id, err := s.readings.AddReading(ctx, &r)
	if err != nil {
		return 0, fmt.Errorf("failed to store reading: %w", err)
	}
	return id, nil
}

// Calibrate converts raw samples using the configured sea level calibrator.
// An unknown calibrator name falls back to no calibration.
func (s *Service) Calibrate(ctx context.Context, raw []model.PressureAltitudeReading) []model.PressureReading {
	return s.calibrate(raw, s.settings.WeatherSettings(ctx))
}

func (s *Service) calibrate(raw []model.PressureAltitudeReading, cfg Settings) []model.PressureReading {
	c, err := CalibratorFor(cfg.Calibrator, cfg.UseTemperature)
	if err != nil {
		s.logger.Warn("Falling back to uncalibrated pressure", "error", err)
		c = NoCalibration{}
	}
	return c.Calibrate(raw)
}

// Readings returns the calibrated history within the configured window.
func (s *Service) Readings(ctx context.Context) ([]model.PressureReading, error) {
	return s.readingsAt(ctx, s.settings.WeatherSettings(ctx), s.clock.Now())
}

// readingsAt loads and calibrates the history window ending at now with one settings snapshot.
func (s *Service) readingsAt(ctx context.Context, cfg Settings, now time.Time) ([]model.PressureReading, error) {
	raw, err := s.readings.GetReadingsSince(ctx, now.Add(-cfg.History))
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}
	return s.calibrate(raw, cfg), nil
}

// Tendency returns the current 3 hour pressure tendency.
func (s *Service) Tendency(ctx context.Context) (model.Tendency, error) {
	return s.tendency(ctx, s.settings.WeatherSettings(ctx))
}

func (s *Service) tendency(ctx context.Context, cfg Settings) (model.Tendency, error) {
	now := s.clock.Now()
	readings, err := s.readingsAt(ctx, cfg, now)
	if err != nil {
		return model.Tendency{}, err
	}
	return Tendency(readings, now, cfg.HourlyChangeThreshold), nil
}

// HourlyForecast returns the short-term outlook.
func (s *Service) HourlyForecast(ctx context.Context) (model.Forecast, error) {
	cfg := s.settings.WeatherSettings(ctx)
	t, err := s.tendency(ctx, cfg)
	if err != nil {
		return "", err
	}
	return HourlyForecast(t, cfg.StormThreshold), nil
}

// DailyForecast returns the day-over-day outlook.
func (s *Service) DailyForecast(ctx context.Context) (model.Forecast, error) {
	cfg := s.settings.WeatherSettings(ctx)
	readings, err := s.readingsAt(ctx, cfg, s.clock.Now())
	if err != nil {
		return "", err
	}
	f := DailyForecaster{Threshold: cfg.DailyChangeThreshold, Location: cfg.Location}
	return f.Forecast(readings), nil
}

// CalibrateTemperature applies the configured two-point temperature calibration.
func (s *Service) CalibrateTemperature(ctx context.Context, temp float64) float64 {
	return CalibrateTemperature(temp, s.settings.WeatherSettings(ctx).Temperature)
}

func (s *Service) HeatIndex(tempC, humidity float64) float64 { return HeatIndex(tempC, humidity) }

func (s *Service) HeatAlert(heatIndex float64) model.HeatAlert { return HeatAlertFor(heatIndex) }

func (s *Service) DewPoint(tempC, humidity float64) float64 { return DewPoint(tempC, humidity) }

// Comfort derives heat index, alert level and dew point in one call.
func (s *Service) Comfort(tempC, humidity float64) Comfort {
	hi := HeatIndex(tempC, humidity)
	return Comfort{
		Temperature: tempC,
		Humidity:    humidity,
		HeatIndex:   hi,
		Alert:       HeatAlertFor(hi),
		DewPoint:    DewPoint(tempC, humidity),
	}
}

// Prune deletes samples older than the configured history and returns how many were removed.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	cfg := s.settings.WeatherSettings(ctx)
	n, err := s.readings.DeleteReadingsOlderThan(ctx, s.clock.Now().Add(-cfg.History))
	if err != nil {
		return 0, fmt.Errorf("failed to prune readings: %w", err)
	}
	if n > 0 {
		s.logger.Debug("Pruned pressure readings", "count", n)
	}
	return n, nil
}
