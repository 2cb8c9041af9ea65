package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	config "github.com/mwantia/codingrules/internal/config/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", Debug},
		{"INFO", Info},
		{" Warn ", Warn},
		{"warning", Warn},
		{"error", Error},
		{"fatal", Fatal},
		{"", Info},
		{"verbose", Info},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.in), "input %q", tt.in)
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("test", config.LogServerConfig{Level: "warn"}, &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown %d", 1)
	logger.Error("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 1")
	assert.Contains(t, out, "shown 2")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestLoggerNamedAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("codingrules", config.LogServerConfig{Level: "debug"}, &buf)

	logger.Named("api").With("request_id", "abc").With("status", 200).Info("served")

	out := buf.String()
	assert.Contains(t, out, "[codingrules/api]")
	assert.Contains(t, out, "served request_id=abc status=200")
}

func TestLoggerWithDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLoggerServiceWithWriter("", config.LogServerConfig{Level: "info"}, &buf)

	_ = parent.With("key", "value")
	parent.Info("plain")

	assert.NotContains(t, buf.String(), "key=value")
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("store", config.LogServerConfig{Level: "info", JSON: true}, &buf)

	logger.With("rules", 3).Info("imported %s", "catalog")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "store", entry.Service)
	assert.Equal(t, "imported catalog", entry.Message)
	assert.Equal(t, float64(3), entry.Fields["rules"])
}
