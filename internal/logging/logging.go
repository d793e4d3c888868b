// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tides/internal/config"
)

// Logger wraps a zerolog.Logger together with the file it may own.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New returns a logger for cfg. With cfg.File set it writes JSON lines to
// that file, otherwise a human-readable console format to console.
func New(cfg config.LogConfig, console io.Writer) (*Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	if cfg.File == "" {
		w := zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}
		return &Logger{Logger: zerolog.New(w).Level(level).With().Timestamp().Logger()}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Logger{
		Logger: zerolog.New(f).Level(level).With().Timestamp().Logger(),
		file:   f,
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
