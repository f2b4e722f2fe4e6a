// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package v1 provides the version 1 routes of the Artemis status server.
// Every route is read-only.
package v1

import (
	"github.com/crashappsec/artemis/pkg/api/middleware"
	"github.com/crashappsec/artemis/pkg/api/routes"
	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/scans"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScanReader is the read side of a [scans.Store].
type ScanReader interface {
	Snapshot() scans.Snapshot
	ByID(id string) (schemas.AnalysisReport, bool)
}

// ListScans responds with the store snapshot.
func ListScans(store ScanReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := store.Snapshot()
		middleware.Logger(c).Debug("listing scans",
			zap.Int("scans", len(snap.Scans)),
			zap.String("status", string(snap.Status)))
		routes.WriteSuccessResponse(c, snap)
	}
}

// GetScan responds with a single stored scan.
func GetScan(store ScanReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := routes.PathParam(c, "id")
		if !ok {
			return
		}
		scan, exists := store.ByID(id)
		if !exists {
			routes.WriteErr(c, errs.New(errs.TypeNotFound, nil, "scan %s not found", id))
			return
		}
		routes.WriteSuccessResponse(c, scan)
	}
}
