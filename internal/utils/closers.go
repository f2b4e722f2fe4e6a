// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package utils holds small helpers shared by the artemis packages.
package utils

import (
	"errors"
	"io"
	"os"

	"go.uber.org/zap"
)

// CloseAndLog is a utility function that closes a resource and logs any error that occurs.
// It should be used for defers to ensure that the resource is closed properly and any errors are logged.
func CloseAndLog(c io.Closer, msg string, fields ...zap.Field) {
	if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		zap.L().Error(msg, append(fields, zap.Error(err))...)
	}
}

// CallAndLog calls fn and logs the error it returns, if any.
// It is useful for defers of functions that are not closers.
func CallAndLog(fn func() error, msg string, fields ...zap.Field) {
	if err := fn(); err != nil {
		zap.L().Error(msg, append(fields, zap.Error(err))...)
	}
}
