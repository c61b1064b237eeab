// Package logging builds the application's zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger at level writing to path, creating parent
// directories as needed. An empty path logs to stderr. The returned writer is
// the logger's sink, for other components that write access logs; closing it
// releases the file.
func New(path string, level zerolog.Level) (zerolog.Logger, io.WriteCloser, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if path == "" {
		w := nopCloser{os.Stderr}
		return build(w, level), w, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	return build(f, level), f, nil
}

func build(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", "cosmic-weather").Logger()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
