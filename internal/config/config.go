// Package config loads worker configuration from an optional YAML file and
// environment variables. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all worker configuration.
type Config struct {
	// WorkerDir is the worker's storage root. voices/, output/ and
	// results/ live under it.
	WorkerDir string

	// Backend is the synthesis backend to run jobs with.
	Backend string

	// Chatterbox settings
	ChatterboxPath     string
	ChatterboxModelDir string

	// Device overrides compute device auto-detection (cpu, cuda, mps).
	// Empty means auto-detect.
	Device string

	// Logging settings
	LogLevel  string
	LogFormat string
}

// fileConfig mirrors Config for the optional YAML config file. Pointer
// fields distinguish absent keys from explicit zero values.
type fileConfig struct {
	WorkerDir          *string `yaml:"worker_dir"`
	Backend            *string `yaml:"backend"`
	ChatterboxPath     *string `yaml:"chatterbox_path"`
	ChatterboxModelDir *string `yaml:"chatterbox_model_dir"`
	Device             *string `yaml:"device"`
	LogLevel           *string `yaml:"log_level"`
	LogFormat          *string `yaml:"log_format"`
}

// VoicesDir is where externally populated voice references live.
func (c *Config) VoicesDir() string {
	return filepath.Join(c.WorkerDir, "voices")
}

// OutputDir is where synthesized audio artifacts are written.
func (c *Config) OutputDir() string {
	return filepath.Join(c.WorkerDir, "output")
}

// ResultsDir is where result artifacts are written, one per job.
func (c *Config) ResultsDir() string {
	return filepath.Join(c.WorkerDir, "results")
}

// Load builds configuration from defaults, the optional config file named by
// WORKER_CONFIG, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		WorkerDir:      defaultWorkerDir(),
		Backend:        "chatterbox",
		ChatterboxPath: "chatterbox",
		LogLevel:       "info",
		LogFormat:      "text",
	}

	if path := os.Getenv("WORKER_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.WorkerDir = getEnvString("WORKER_DIR", cfg.WorkerDir)
	cfg.Backend = getEnvString("TTS_BACKEND", cfg.Backend)
	cfg.ChatterboxPath = getEnvString("CHATTERBOX_PATH", cfg.ChatterboxPath)
	cfg.ChatterboxModelDir = getEnvString("CHATTERBOX_MODEL_DIR", cfg.ChatterboxModelDir)
	cfg.Device = getEnvString("WORKER_DEVICE", cfg.Device)
	cfg.LogLevel = getEnvString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvString("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFile overlays values from a YAML config file.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.WorkerDir != nil {
		c.WorkerDir = *fc.WorkerDir
	}
	if fc.Backend != nil {
		c.Backend = *fc.Backend
	}
	if fc.ChatterboxPath != nil {
		c.ChatterboxPath = *fc.ChatterboxPath
	}
	if fc.ChatterboxModelDir != nil {
		c.ChatterboxModelDir = *fc.ChatterboxModelDir
	}
	if fc.Device != nil {
		c.Device = *fc.Device
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		c.LogFormat = *fc.LogFormat
	}

	return nil
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.WorkerDir == "" {
		return errors.New("worker dir must not be empty")
	}

	if c.Backend == "" {
		return errors.New("backend must not be empty")
	}

	validDevices := map[string]bool{"": true, "cpu": true, "cuda": true, "mps": true}
	if !validDevices[c.Device] {
		return errors.New("WORKER_DEVICE must be one of: cpu, cuda, mps")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.LogFormat] {
		return errors.New("LOG_FORMAT must be one of: text, json")
	}

	return nil
}

// defaultWorkerDir returns ~/.gen-audio/worker, or a relative fallback when
// the home directory cannot be determined.
func defaultWorkerDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gen-audio/worker"
	}
	return filepath.Join(home, ".gen-audio", "worker")
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
