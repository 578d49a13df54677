/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the application logger. Unlike a typical server, this
// process owns the terminal's stdout/stderr for its screen, so logs always
// go to a rotating file, never to the console. An empty cfg.LogFile selects
// transmission-tui/transmission-tui.log under the user cache directory (or
// the temp directory when that is unavailable).
func NewLogger(cfg AppConfig) (zerolog.Logger, func() error, error) {
	path := cfg.LogFile
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		path = filepath.Join(dir, "transmission-tui", "transmission-tui.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerolog.Nop(), func() error { return nil }, err
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
		LocalTime:  true,
	}

	writer := zerolog.ConsoleWriter{
		Out:        rotator,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	logger := zerolog.New(writer).Level(cfg.LogLevel).With().Timestamp().Logger()
	return logger, rotator.Close, nil
}
