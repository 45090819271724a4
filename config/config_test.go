package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2pdf/contracts"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img2pdf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
dpi: 150
title: Archive
encoder: fpdf
parallel: false
workers: 2
progress: simple
log:
  level: debug
  format: json
fetch:
  retries: 5
  timeout: 2s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 150.0, cfg.DPI)
	assert.Equal(t, "Archive", cfg.Title)
	assert.Equal(t, "fpdf", cfg.Encoder)
	assert.False(t, cfg.Parallel)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "simple", cfg.Progress)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, FetchConfig{Retries: 5, Timeout: 2 * time.Second}, cfg.Fetch)
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "dpi: [1, 2"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("IMG2PDF_DPI", "96")
	t.Setenv("IMG2PDF_ENCODER", "fpdf")
	t.Setenv("IMG2PDF_PARALLEL", "false")
	t.Setenv("IMG2PDF_FETCH_TIMEOUT", "1m")

	cfg, err := Load(writeConfig(t, "dpi: 150\n"))
	require.NoError(t, err)
	assert.Equal(t, 96.0, cfg.DPI)
	assert.Equal(t, "fpdf", cfg.Encoder)
	assert.False(t, cfg.Parallel)
	assert.Equal(t, time.Minute, cfg.Fetch.Timeout)
}

func TestBadEnvValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("IMG2PDF_WORKERS", "many")
	_, err := Load("")
	assert.True(t, errors.Is(err, contracts.ErrConfiguration))
	assert.Contains(t, err.Error(), "IMG2PDF_WORKERS")
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("IMG2PDF_TITLE=From dotenv\n"), 0o644))
	t.Chdir(dir)
	// registers a cleanup for the value godotenv is about to set
	t.Setenv("IMG2PDF_TITLE", "")
	os.Unsetenv("IMG2PDF_TITLE")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "From dotenv", cfg.Title)
}

func TestApplyFlags(t *testing.T) {
	cfg := DefaultConfig()
	set := map[string]bool{"dpi": true, "workers": true, "log-level": true}
	cfg.ApplyFlags(contracts.InputFlags{
		DPI:      600,
		Workers:  4,
		LogLevel: "error",
		Encoder:  "fpdf",
	}, func(name string) bool { return set[name] })

	assert.Equal(t, 600.0, cfg.DPI)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "native", cfg.Encoder)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
		dpi    bool
	}{
		{"zero dpi", func(c *Config) { c.DPI = 0 }, true},
		{"negative dpi", func(c *Config) { c.DPI = -5 }, true},
		{"encoder", func(c *Config) { c.Encoder = "pdfium" }, false},
		{"progress", func(c *Config) { c.Progress = "fancy" }, false},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"workers", func(c *Config) { c.Workers = -1 }, false},
		{"retries", func(c *Config) { c.Fetch.Retries = -1 }, false},
		{"timeout", func(c *Config) { c.Fetch.Timeout = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, contracts.ErrConfiguration))
			assert.Equal(t, tc.dpi, errors.Is(err, contracts.ErrInvalidDPI))
		})
	}
}
