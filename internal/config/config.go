package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"reactorviz/domain/reactor"
	"reactorviz/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Server   ServerConfig
	Output   OutputConfig
	Database DatabaseConfig
	Log      LogConfig

	// Window overrides the preset timeline window when set via YEAR_START
	// and YEAR_END.
	Window *reactor.YearWindow

	// Now pins the reference date for operational ages. Zero means the
	// system clock.
	Now time.Time
}

// DataConfig holds source spreadsheet settings
type DataConfig struct {
	File        string
	Sheet       string
	PresetsFile string
	CacheTTL    time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// OutputConfig holds render settings
type OutputConfig struct {
	Dir         string
	ImageFormat string
}

// DatabaseConfig holds the optional publication database
type DatabaseConfig struct {
	URL string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

var imageFormats = map[string]bool{"png": true, "svg": true, "pdf": true, "jpg": true}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			File:        getEnvOrDefault("DATA_FILE", "data/nuclear_power_plants.xlsx"),
			Sheet:       getEnvOrDefault("DATA_SHEET", ""),
			PresetsFile: getEnvOrDefault("PRESETS_FILE", ""),
			CacheTTL:    getEnvDurationOrDefault("CACHE_TTL", 5*time.Minute),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8050"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Output: OutputConfig{
			Dir:         getEnvOrDefault("OUTPUT_DIR", "out"),
			ImageFormat: strings.ToLower(getEnvOrDefault("IMAGE_FORMAT", "png")),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
	}

	window, err := loadWindow()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load year window")
	}
	config.Window = window

	if now := os.Getenv("NOW"); now != "" {
		t, err := time.Parse("2006-01-02", now)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("NOW must be YYYY-MM-DD, got %q", now))
		}
		config.Now = t
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadWindow() (*reactor.YearWindow, error) {
	start, end := os.Getenv("YEAR_START"), os.Getenv("YEAR_END")
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, errors.ConfigInvalid("YEAR_START and YEAR_END must be set together")
	}
	s, err := strconv.Atoi(start)
	if err != nil {
		return nil, errors.ConfigInvalid("YEAR_START must be an integer")
	}
	e, err := strconv.Atoi(end)
	if err != nil {
		return nil, errors.ConfigInvalid("YEAR_END must be an integer")
	}
	w := reactor.YearWindow{Start: s, End: e}
	if err := w.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return &w, nil
}

func validateConfig(config *Config) error {
	if config.Data.File == "" {
		return errors.ConfigInvalid("data file is required")
	}
	if !imageFormats[config.Output.ImageFormat] {
		return errors.ConfigInvalid(fmt.Sprintf("unsupported image format %q", config.Output.ImageFormat))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
