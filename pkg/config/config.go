package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"trailgo/pkg/model"
	"trailgo/pkg/simplify"
	"trailgo/pkg/weather"
)

// Environment overrides, usually set through .env.
const (
	EnvDBPath        = "TRAILGO_DB_PATH"
	EnvServerAddress = "TRAILGO_SERVER_ADDRESS"
)

// Config holds the application configuration.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	DB          DBConfig          `yaml:"db"`
	Server      ServerConfig      `yaml:"server"`
	Paths       PathsConfig       `yaml:"paths"`
	Weather     WeatherConfig     `yaml:"weather"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// PathsConfig holds path recording and simplification settings.
type PathsConfig struct {
	SimplificationQuality simplify.Quality `yaml:"simplification_quality"`
	BacktrackHistory      Duration         `yaml:"backtrack_history"`
	DefaultStyle          model.PathStyle  `yaml:"default_style"`
}

// WeatherConfig holds barometer thresholds and calibration.
type WeatherConfig struct {
	StormThreshold        Pressure                       `yaml:"storm_threshold"`         // per 3h
	HourlyChangeThreshold Pressure                       `yaml:"hourly_change_threshold"` // per 3h
	DailyChangeThreshold  Pressure                       `yaml:"daily_change_threshold"`  // per day
	PressureHistory       Duration                       `yaml:"pressure_history"`
	SeaLevel              SeaLevelConfig                 `yaml:"sea_level"`
	Temperature           weather.TemperatureCalibration `yaml:"temperature"`
	Timezone              string                         `yaml:"timezone"`
}

// SeaLevelConfig selects how station pressure is reduced to sea level.
type SeaLevelConfig struct {
	Calibrator     string `yaml:"calibrator"` // "none", "barometric"
	UseTemperature bool   `yaml:"use_temperature"`
}

// MaintenanceConfig holds background job settings.
type MaintenanceConfig struct {
	CleanupInterval Duration `yaml:"cleanup_interval"`
	Tick            Duration `yaml:"tick"`
	ImportDir       string   `yaml:"import_dir"` // *.csv tracks imported at startup
	ImportInterval  Duration `yaml:"import_interval"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/trailgo.db",
		},
		Server: ServerConfig{
			Address: "localhost:1921",
		},
		Paths: PathsConfig{
			SimplificationQuality: simplify.Medium,
			BacktrackHistory:      Duration(2 * Day),
			DefaultStyle: model.PathStyle{
				Line:    model.LineDotted,
				Point:   model.ColoringNone,
				Color:   0xFF1E88E5,
				Visible: true,
			},
		},
		Weather: WeatherConfig{
			StormThreshold:        Pressure(6),
			HourlyChangeThreshold: Pressure(1.5),
			DailyChangeThreshold:  Pressure(0.5),
			PressureHistory:       Duration(2 * Day),
			SeaLevel: SeaLevelConfig{
				Calibrator:     "barometric",
				UseTemperature: false,
			},
			Temperature: weather.TemperatureCalibration{
				MinActual: -40, MinRaw: -40,
				MaxActual: 60, MaxRaw: 60,
			},
			Timezone: "Local",
		},
		Maintenance: MaintenanceConfig{
			CleanupInterval: Duration(1 * time.Hour),
			Tick:            Duration(10 * time.Second),
			ImportDir:       "./data/import",
			ImportInterval:  Duration(time.Minute),
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	// Env wins over the file but is never written back
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv(EnvServerAddress); v != "" {
		cfg.Server.Address = v
	}

	if _, err := cfg.Weather.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location resolves the configured timezone used for day boundaries.
func (w WeatherConfig) Location() (*time.Location, error) {
	switch w.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid weather timezone '%s': %w", w.Timezone, err)
	}
	return loc, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# TrailGo Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Pressure: hPa, mbar, inHg, mmHg

`)
	data = append(header, data...)

	// Inject comments for enum fields
	reQuality := regexp.MustCompile(`(?m)^(\s+)simplification_quality:`)
	data = reQuality.ReplaceAll(data, []byte("${1}# Options: low, medium, high\n${1}simplification_quality:"))

	reLine := regexp.MustCompile(`(?m)^(\s+)line:`)
	data = reLine.ReplaceAll(data, []byte("${1}# Options: solid, dotted, arrow\n${1}line:"))

	rePoint := regexp.MustCompile(`(?m)^(\s+)point:`)
	data = rePoint.ReplaceAll(data, []byte("${1}# Options: none, altitude, time\n${1}point:"))

	reCalibrator := regexp.MustCompile(`(?m)^(\s+)calibrator:`)
	data = reCalibrator.ReplaceAll(data, []byte("${1}# Options: none, barometric\n${1}calibrator:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
