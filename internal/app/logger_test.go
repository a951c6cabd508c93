package app

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLogLevel("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verbose")
}

func TestParseLogFormat(t *testing.T) {
	format, err := ParseLogFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, LogFormatJSON, format)

	_, err = ParseLogFormat("yaml")
	require.Error(t, err)
}

func TestNewLoggerRespectsConfig(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(&Config{LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, `"msg":"loud"`)
}
