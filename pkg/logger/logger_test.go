package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"DEBUG":    zerolog.DebugLevel,
		" warn ":   zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"trace":    zerolog.TraceLevel,
		"disabled": zerolog.Disabled,
		"off":      zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"verbose":  zerolog.InfoLevel,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, ParseLevel(in), "level %q", in)
	}
}

func TestJSONLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Service: "phishguard-api", Level: "info", Format: "json", Output: &buf})

	log.WithComponent("analysis-service").WithAnalysisID("a-1").Info().Msg("analysis completed")
	log.Debug().Msg("dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "phishguard-api", entry["service"])
	assert.Equal(t, "analysis-service", entry["component"])
	assert.Equal(t, "a-1", entry["analysis_id"])
	assert.Equal(t, "analysis completed", entry["message"])
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestDefaultServiceName(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: "json", Output: &buf}).WithRequestID("r-1").Warn().Msg("slow")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, DefaultService, entry["service"])
	assert.Equal(t, "r-1", entry["request_id"])
}

func TestNopDiscards(t *testing.T) {
	log := NewNop()
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
