// Package config loads server configuration from an optional YAML file,
// applies environment overrides, and validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration for the analysis server and the TUI.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Layout LayoutConfig `yaml:"layout"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"gt=0"`
}

// LayoutConfig controls the force simulation canvas and step cap.
type LayoutConfig struct {
	Width    float64 `yaml:"width" validate:"gt=0"`
	Height   float64 `yaml:"height" validate:"gt=0"`
	MaxSteps int     `yaml:"max_steps" validate:"gt=0,lte=10000"`
	Seed     int64   `yaml:"seed"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    16 << 20,
		},
		Layout: LayoutConfig{
			Width:    1200,
			Height:   800,
			MaxSteps: 300,
			Seed:     1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path (empty path means defaults only),
// applies ATLAS_* environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv layers environment variables over the file values. Unset or
// malformed values leave the existing setting untouched.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ATLAS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ATLAS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ATLAS_LAYOUT_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Layout.Seed = seed
		}
	}
	if v := os.Getenv("ATLAS_LAYOUT_MAX_STEPS"); v != "" {
		if steps, err := strconv.Atoi(v); err == nil {
			cfg.Layout.MaxSteps = steps
		}
	}
}
