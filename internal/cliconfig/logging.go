package cliconfig

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger returns the bootstrap console logger used before the full
// configuration is assembled.
func Logger() zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger()
}

// BuildLogger constructs the configured logger. Format is "console" or
// "json"; level is any zerolog level name. The writer is normally
// os.Stderr, or io.Discard when the terminal is owned by the monitor UI.
func BuildLogger(level, format string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log-level: %w", err)
	}

	switch format {
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Logger{}, fmt.Errorf("log-format must be console or json, got %q", format)
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(lvl), nil
}

// MonitorLogger builds a console logger writing plain, uncolored lines
// into the monitor's log pane. Color codes and long timestamps would
// tear the pane's layout.
func MonitorLogger(level string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log-level: %w", err)
	}

	w := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: true}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl), nil
}
