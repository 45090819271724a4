package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(LogConfig{Level: "warn", Format: "json", Output: &buf})

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Str("url", "http://x").Msg("retrying")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "retrying", entry["message"])
	assert.Equal(t, "img2pdf", entry["service"])
	assert.Equal(t, "http://x", entry["url"])
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(LogConfig{Level: "debug", Format: "console", Output: &buf, NoColor: true})
	log.Debug().Msg("fetched")
	assert.Contains(t, buf.String(), "DBG")
	assert.Contains(t, buf.String(), "fetched")
}
