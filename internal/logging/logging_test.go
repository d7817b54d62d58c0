package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/jroosing/bindzone/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restoreDefault puts back the slog default replaced by Configure.
func restoreDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

// =============================================================================
// Level parsing
// =============================================================================

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"debug":   slog.LevelDebug,
		"DeBuG":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelInfo,
		"INVALID": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

// =============================================================================
// Logger Configuration Tests
// =============================================================================

func TestConfigure_SetsDefault(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	logger := logging.Configure(logging.Config{Level: "INFO", Output: &buf})
	require.NotNil(t, logger)
	assert.Same(t, logger, slog.Default())

	slog.Info("zone created", "zone", "example.com")
	assert.Contains(t, buf.String(), "zone=example.com")
}

func TestConfigure_LevelFilters(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	logger := logging.Configure(logging.Config{Level: "WARN", Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConfigure_StructuredJSON(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	logger := logging.Configure(logging.Config{
		Level:            "DEBUG",
		Structured:       true,
		StructuredFormat: "JSON",
		IncludePID:       true,
		ExtraFields:      map[string]string{"app": "bindzone"},
		Output:           &buf,
	})
	logger.Debug("record added", "zone", "example.com")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "record added", entry["msg"])
	assert.Equal(t, "bindzone", entry["app"])
	assert.Equal(t, float64(os.Getpid()), entry["pid"])
}

func TestConfigure_StructuredTextFallback(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	logger := logging.Configure(logging.Config{Structured: true, StructuredFormat: "keyvalue", Output: &buf})
	logger.Info("hello", "k", "v")

	assert.True(t, strings.Contains(buf.String(), "k=v"))
}

func TestConfigure_RedactsSecrets(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	logger := logging.Configure(logging.Config{Output: &buf})
	logger.Info("server added", "password", "hunter2", "API_KEY", "abc", "host", "ns1")

	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "abc")
	assert.Contains(t, out, "password="+logging.Redacted)
	assert.Contains(t, out, "host=ns1")
}
