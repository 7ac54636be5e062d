package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-list/internal/config"
)

func TestDebugEnabled(t *testing.T) {
	t.Setenv("TODO_DEBUG", "")
	assert.False(t, DebugEnabled())

	t.Setenv("TODO_DEBUG", "1")
	assert.True(t, DebugEnabled())
}

func TestNew_JSONFormat(t *testing.T) {
	t.Setenv("TODO_DEBUG", "")
	var buf bytes.Buffer

	logger := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("dropped")
	logger.WithField("owner", "u1").Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "u1", entry["owner"])
	assert.Contains(t, entry, "ts")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("TODO_DEBUG", "")
	logger := New(config.LoggingConfig{Level: "loud", Format: "text"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNew_DebugOverride(t *testing.T) {
	t.Setenv("TODO_DEBUG", "1")
	logger := New(config.LoggingConfig{Level: "error", Format: "json"}, &bytes.Buffer{})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	WithRequestID(logger, "req-1").Info("hello")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)

	assert.Equal(t, logrus.FieldLogger(logger), WithRequestID(logger, ""))
}
