// Package config loads img2pdf settings from defaults, an optional YAML file,
// a .env file, the environment and command line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"img2pdf/contracts"
	"img2pdf/geometry"
)

const envPrefix = "IMG2PDF_"

type Config struct {
	DPI           float64     `yaml:"dpi"`
	Title         string      `yaml:"title"`
	DPIFromSource bool        `yaml:"dpi_from_source"`
	Encoder       string      `yaml:"encoder"` // native or fpdf
	Parallel      bool        `yaml:"parallel"`
	Workers       int         `yaml:"workers"`  // 0 picks from the CPU count
	Progress      string      `yaml:"progress"` // bars, simple or none
	Log           LogConfig   `yaml:"log"`
	Fetch         FetchConfig `yaml:"fetch"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

type FetchConfig struct {
	Retries int           `yaml:"retries"`
	Timeout time.Duration `yaml:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		DPI:      300,
		Encoder:  "native",
		Parallel: true,
		Progress: "bars",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Fetch: FetchConfig{
			Retries: 3,
			Timeout: 30 * time.Second,
		},
	}
}

// Load builds the configuration without flags. An empty path skips the
// YAML file; a missing .env file is ignored.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := env("DPI"); v != "" {
		dpi, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("DPI", v, err)
		}
		cfg.DPI = dpi
	}
	if v := env("TITLE"); v != "" {
		cfg.Title = v
	}
	if v := env("DPI_FROM_SOURCE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("DPI_FROM_SOURCE", v, err)
		}
		cfg.DPIFromSource = b
	}
	if v := env("ENCODER"); v != "" {
		cfg.Encoder = v
	}
	if v := env("PARALLEL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("PARALLEL", v, err)
		}
		cfg.Parallel = b
	}
	if v := env("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("WORKERS", v, err)
		}
		cfg.Workers = n
	}
	if v := env("PROGRESS"); v != "" {
		cfg.Progress = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := env("FETCH_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("FETCH_RETRIES", v, err)
		}
		cfg.Fetch.Retries = n
	}
	if v := env("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("FETCH_TIMEOUT", v, err)
		}
		cfg.Fetch.Timeout = d
	}
	return nil
}

func env(name string) string {
	return os.Getenv(envPrefix + name)
}

func envError(name, value string, err error) error {
	return fmt.Errorf("%w: %s%s=%q: %w", contracts.ErrConfiguration, envPrefix, name, value, err)
}

// ApplyFlags copies every flag the user set explicitly. changed reports
// whether a flag by that name was given, as pflag's FlagSet.Changed does.
func (c *Config) ApplyFlags(in contracts.InputFlags, changed func(name string) bool) {
	if changed("dpi") {
		c.DPI = in.DPI
	}
	if changed("title") {
		c.Title = in.Title
	}
	if changed("dpi-from-source") {
		c.DPIFromSource = in.DPIFromSource
	}
	if changed("encoder") {
		c.Encoder = in.Encoder
	}
	if changed("parallel") {
		c.Parallel = in.Parallel
	}
	if changed("workers") {
		c.Workers = in.Workers
	}
	if changed("progress") {
		c.Progress = in.Progress
	}
	if changed("log-level") {
		c.Log.Level = in.LogLevel
	}
	if changed("log-format") {
		c.Log.Format = in.LogFormat
	}
	if changed("fetch-retries") {
		c.Fetch.Retries = in.FetchRetries
	}
	if changed("fetch-timeout") {
		c.Fetch.Timeout = in.FetchTimeout
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := geometry.ValidateDPI(c.DPI); err != nil {
		return err
	}
	switch c.Encoder {
	case "native", "fpdf":
	default:
		return fmt.Errorf("%w: invalid encoder: %q", contracts.ErrConfiguration, c.Encoder)
	}
	switch c.Progress {
	case "bars", "simple", "none":
	default:
		return fmt.Errorf("%w: invalid progress mode: %q", contracts.ErrConfiguration, c.Progress)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: invalid log format: %q", contracts.ErrConfiguration, c.Log.Format)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", contracts.ErrConfiguration)
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("%w: fetch retries must not be negative", contracts.ErrConfiguration)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("%w: fetch timeout must be positive", contracts.ErrConfiguration)
	}
	return nil
}
