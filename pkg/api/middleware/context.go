// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package middleware provides middleware for the Artemis status server.
// It includes request logging and authentication.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	loggerKey = "logger"

	// RequestIDHeader carries the request id. A valid id sent by the caller is kept.
	RequestIDHeader = "X-Request-ID"
)

// LoggerAssigner is a gin middleware that assigns a request scoped logger to
// the request context and logs each request once it completes.
func LoggerAssigner() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		l := zap.L().With(
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		SetLogger(c, l)

		start := time.Now()
		c.Next()
		l.Debug("request completed",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

// Logger retrieves the request logger from the context, falling back to
// the global logger.
func Logger(c *gin.Context) *zap.Logger {
	val, exists := c.Get(loggerKey)
	if !exists {
		return zap.L()
	}
	l, valid := val.(*zap.Logger)
	if !valid {
		return zap.L()
	}
	return l
}

// SetLogger sets the request logger in the context.
func SetLogger(c *gin.Context, l *zap.Logger) {
	c.Set(loggerKey, l)
}
