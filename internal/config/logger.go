// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// InitLogger replaces the global zap logger. Unknown levels fall back to
// info. Logs are written to stderr so command output stays parseable.
func InitLogger(level, format string, fields ...zap.Field) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, LogFormatConsole) {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		zap.L().Error("failed to build logger, keeping the current one", zap.Error(err))
		return
	}
	zap.ReplaceGlobals(logger.With(fields...))
	if level != "" && !strings.EqualFold(level, lvl.String()) {
		zap.L().Warn("unknown log level, using info", zap.String("level", level))
	}
}
