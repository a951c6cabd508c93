package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Log output formats accepted by Config.LogFormat.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ParseLogLevel maps a Config.LogLevel string onto its slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", s)
}

// ParseLogFormat normalizes a Config.LogFormat string.
func ParseLogFormat(s string) (string, error) {
	switch f := strings.ToLower(s); f {
	case LogFormatText, LogFormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", s)
}

// newLogger builds the app's isolated logger; the slog default is never
// touched. Config strings that slipped past cli validation fall back to
// info level and text output rather than failing app construction.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	level, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if format, _ := ParseLogFormat(cfg.LogFormat); format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
