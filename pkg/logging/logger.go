// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for the rpick CLI.
//
// The logger is built on the standard library slog package. The default
// destination is stderr in text format, which keeps stdout clean for the
// pick result. Setting LogDir in the Config additionally writes to a
// per-day file, useful when auditing what a long run of picks did to a
// category's state.
//
// Basic usage:
//
//	logger := logging.Default()
//	logger.Info("pick accepted", "category", name, "choice", choice)
//
// With file output:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    LogDir: "~/.local/state/rpick",
//	})
//	defer logger.Close()
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Level represents log severity. Levels follow slog conventions and are
// ordered Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", or "ERROR".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a level name to a Level, case-insensitively. Unknown
// names fall back to LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config configures the Logger. The zero value logs Info and above to
// stderr in text format.
type Config struct {
	// Level sets the minimum level; messages below it are discarded.
	Level Level

	// LogDir enables file logging into the given directory, created on
	// demand. The file is named rpick_{YYYY-MM-DD}.log. Supports ~
	// expansion.
	LogDir string

	// Quiet disables stderr output, leaving only the file (if any).
	Quiet bool
}

// Logger wraps slog with optional file teeing. Safe for concurrent use.
type Logger struct {
	*slog.Logger
	file *os.File
}

// Default returns a stderr-only logger at Info level.
func Default() *Logger {
	return New(Config{})
}

// New creates a Logger from the given Config. Errors opening the log
// file degrade to stderr-only logging rather than failing the program;
// a CLI should not refuse to run because its log file is unavailable.
func New(cfg Config) *Logger {
	logger := &Logger{}

	var writers []io.Writer
	if !cfg.Quiet {
		writers = append(writers, os.Stderr)
	}
	if cfg.LogDir != "" {
		if f, err := openLogFile(cfg.LogDir); err == nil {
			logger.file = f
			writers = append(writers, f)
		} else if !cfg.Quiet {
			fmt.Fprintf(os.Stderr, "rpick: file logging disabled: %v\n", err)
		}
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel()}
	handler := slog.NewTextHandler(io.MultiWriter(writers...), opts)
	logger.Logger = slog.New(handler)
	return logger
}

// Close releases the log file, if one is open. The logger remains usable
// for stderr output afterwards.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func openLogFile(dir string) (*os.File, error) {
	dir = expandHome(dir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}
	name := fmt.Sprintf("rpick_%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}
	return f, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
