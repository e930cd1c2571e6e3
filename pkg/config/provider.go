package config

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"trailgo/pkg/model"
	"trailgo/pkg/simplify"
	"trailgo/pkg/store"
	"trailgo/pkg/weather"
)

// Provider defines the interface for accessing unified configuration.
type Provider interface {
	// Paths
	BacktrackHistory(ctx context.Context) time.Duration
	SimplificationQuality(ctx context.Context) simplify.Quality
	DefaultPathStyle(ctx context.Context) model.PathStyle

	// Weather
	WeatherSettings(ctx context.Context) weather.Settings

	// Maintenance
	CleanupInterval() time.Duration

	// Runtime overrides
	Settings(ctx context.Context) map[string]string
	Set(ctx context.Context, key, value string) error

	// Raw access (for components that need deep access)
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

// --- Implementations ---

func (p *UnifiedProvider) BacktrackHistory(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeyBacktrackHistory, time.Duration(p.base.Paths.BacktrackHistory))
}

func (p *UnifiedProvider) SimplificationQuality(ctx context.Context) simplify.Quality {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, KeySimplificationQuality); ok && val != "" {
			if q, err := simplify.ParseQuality(val); err == nil {
				return q
			}
		}
	}
	return p.base.Paths.SimplificationQuality
}

func (p *UnifiedProvider) DefaultPathStyle(ctx context.Context) model.PathStyle {
	return p.base.Paths.DefaultStyle
}

func (p *UnifiedProvider) WeatherSettings(ctx context.Context) weather.Settings {
	w := p.base.Weather
	loc, err := w.Location()
	if err != nil {
		slog.Warn("Invalid weather timezone, using UTC", "timezone", w.Timezone, "error", err)
		loc = time.UTC
	}
	return weather.Settings{
		StormThreshold:        p.getPressure(ctx, KeyStormThreshold, float64(w.StormThreshold)),
		HourlyChangeThreshold: p.getPressure(ctx, KeyHourlyThreshold, float64(w.HourlyChangeThreshold)),
		DailyChangeThreshold:  p.getPressure(ctx, KeyDailyThreshold, float64(w.DailyChangeThreshold)),
		History:               time.Duration(w.PressureHistory),
		Calibrator:            p.getString(ctx, KeySeaLevelCalibrator, w.SeaLevel.Calibrator),
		UseTemperature:        p.getBool(ctx, KeyUseTemperature, w.SeaLevel.UseTemperature),
		Temperature:           w.Temperature,
		Location:              loc,
	}
}

func (p *UnifiedProvider) CleanupInterval() time.Duration {
	return time.Duration(p.base.Maintenance.CleanupInterval)
}

// Settings returns the effective value of every runtime key.
func (p *UnifiedProvider) Settings(ctx context.Context) map[string]string {
	w := p.WeatherSettings(ctx)
	return map[string]string{
		KeyBacktrackHistory:      p.BacktrackHistory(ctx).String(),
		KeySimplificationQuality: p.SimplificationQuality(ctx).String(),
		KeyStormThreshold:        formatFloat(w.StormThreshold),
		KeyHourlyThreshold:       formatFloat(w.HourlyChangeThreshold),
		KeyDailyThreshold:        formatFloat(w.DailyChangeThreshold),
		KeySeaLevelCalibrator:    w.Calibrator,
		KeyUseTemperature:        strconv.FormatBool(w.UseTemperature),
	}
}

// Set validates and persists a runtime override.
func (p *UnifiedProvider) Set(ctx context.Context, key, value string) error {
	validate, ok := RuntimeKeys[key]
	if !ok {
		return &UnknownKeyError{Key: key}
	}
	if err := validate(value); err != nil {
		return &InvalidValueError{Key: key, Err: err}
	}
	return p.store.SetState(ctx, key, value)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// --- Helpers ---

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getPressure(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := ParsePressure(val); err == nil {
				return f
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getBool(ctx context.Context, key string, fallback bool) bool {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return b
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getDuration(ctx context.Context, key string, fallback time.Duration) time.Duration {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if dur, err := ParseDuration(val); err == nil {
				return dur
			}
		}
	}
	return fallback
}
