// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package unittest

import (
	"bytes"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogBuffer is a buffer safe for concurrent writes from request goroutines.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *LogBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Read(p)
}

// CaptureLogs replaces the global logger with one writing JSON lines at
// debug level to the returned reader. The previous logger is restored
// when the test ends.
func CaptureLogs(t *testing.T) *LogBuffer {
	t.Helper()
	return CaptureLogsAt(t, zapcore.DebugLevel)
}

// CaptureLogsAt is [CaptureLogs] with a minimum level.
func CaptureLogsAt(t *testing.T, level zapcore.Level) *LogBuffer {
	t.Helper()
	buffer := &LogBuffer{}
	restore := zap.ReplaceGlobals(zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(buffer),
		level,
	)))
	t.Cleanup(restore)
	return buffer
}
