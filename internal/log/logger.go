// Package log configures the process logger: slog records on stderr and,
// optionally, in a rotating file.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/core"
)

// Init installs the logger described by cfg as the slog default. Records
// go to stderr; stdout belongs to the dissection output.
func Init(cfg config.LogConfig) error {
	logger, err := New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// New builds a logger writing to console and to the file output when it
// is enabled. Both receive the same records.
func New(cfg config.LogConfig, console io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := console
	if fc := cfg.Outputs.File; fc.Enabled {
		file, err := rotatingFile(fc)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(console, file)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(out, opts)), nil
	}
	return nil, fmt.Errorf("log format %q (must be json or text): %w", cfg.Format, core.ErrConfigInvalid)
}

// parseLevel accepts the slog level names in any case, plus "warning".
func parseLevel(s string) (slog.Level, error) {
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, core.ErrConfigInvalid)
	}
	return level, nil
}

func rotatingFile(fc config.FileOutputConfig) (io.Writer, error) {
	if fc.Path == "" {
		return nil, fmt.Errorf("log file output needs a path: %w", core.ErrConfigInvalid)
	}
	return &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.Rotation.MaxSizeMB,
		MaxBackups: fc.Rotation.MaxBackups,
		MaxAge:     fc.Rotation.MaxAgeDays,
		Compress:   fc.Rotation.Compress,
	}, nil
}
