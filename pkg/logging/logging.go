// Package logging builds the zerolog logger shared by the CLI and the engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ormasoftchile/appgen/pkg/config"
)

// New returns a logger configured from cfg. Verbose forces debug level.
// Console output goes to w unless cfg.File is set. The returned close
// function releases the log file, if one was opened.
func New(cfg config.LogConfig, verbose bool, w io.Writer) (zerolog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	closer := func() error { return nil }
	out := w
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = f.Close
	}

	switch strings.ToLower(cfg.Format) {
	case "", "console":
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.File != "",
		}
	case "json":
	default:
		closer()
		return zerolog.Nop(), nil, fmt.Errorf("unknown log format %q (want console or json)", cfg.Format)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

func parseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
