// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crashappsec/artemis/internal/unittest"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerAssigner(t *testing.T) {
	validID := uuid.NewString()
	tests := []struct {
		name     string
		headers  map[string]string
		expectID string
	}{
		{
			name: "no request id",
		},
		{
			name:     "valid request id is kept",
			headers:  map[string]string{RequestIDHeader: validID},
			expectID: validID,
		},
		{
			name:    "invalid request id is replaced",
			headers: map[string]string{RequestIDHeader: unittest.GenerateRandStr(unittest.CharSetSpecial, 12)},
		},
	}

	logs := unittest.CaptureLogs(t)
	gin.SetMode(gin.TestMode)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			var got *zap.Logger
			r.GET("/", LoggerAssigner(), func(c *gin.Context) {
				got = Logger(c)
				c.Status(http.StatusNoContent)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			id := w.Header().Get(RequestIDHeader)
			_, err := uuid.Parse(id)
			require.NoError(t, err)
			if tt.expectID != "" {
				assert.Equal(t, tt.expectID, id)
			}
			assert.NotSame(t, zap.L(), got)

			logBytes, err := io.ReadAll(logs)
			require.NoError(t, err)
			assert.True(t, strings.Contains(string(logBytes), id), "request id is logged")
		})
	}
}

func TestLogger_Fallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, zap.L(), Logger(c))

	c.Set(loggerKey, "not a logger")
	assert.Same(t, zap.L(), Logger(c))
}
