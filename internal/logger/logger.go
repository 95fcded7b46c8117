// Package logger provides the structured slog logger for the daemon. All
// logs are written in JSON format.
//
// Log files are organized as:
//
//	<logDir>/zephyr.log — application-level events, size-rotated
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewSystemLogger creates a JSON slog.Logger that writes to
// <logDir>/zephyr.log through a size-rotated writer. When teeStderr is set,
// log lines are also mirrored to stderr for foreground runs.
// The directory is created if it does not exist.
func NewSystemLogger(logDir string, level slog.Level, teeStderr bool) (*slog.Logger, error) {
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	var w io.Writer = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "zephyr.log"),
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
	}
	if teeStderr {
		w = io.MultiWriter(w, os.Stderr)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}
