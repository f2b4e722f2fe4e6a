// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package routes (and sub-packages) provides the routes of the Artemis status server.
package routes

import (
	"net/http"

	"github.com/crashappsec/artemis/pkg/scans"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/gin-gonic/gin"
)

// PathParam returns the path parameter key. An empty value writes a 400
// response naming the route and returns false.
func PathParam(c *gin.Context, key string) (string, bool) {
	value := c.Param(key)
	if value != "" {
		return value, true
	}
	WriteErrorResponse(c, http.StatusBadRequest, schemas.ErrInvalidParameter,
		key+" is required in path "+c.FullPath())
	return "", false
}

// StoreState is the part of the scan store the health check reports.
type StoreState interface {
	Status() scans.Status
	Total() int
	Err() error
}

// HealthResponse reports the server as up along with the state of the
// last load into the store.
type HealthResponse struct {
	Status       string       `json:"status"          yaml:"status"`
	Scans        scans.Status `json:"scans"           yaml:"scans"`
	TotalRecords int          `json:"totalRecords"    yaml:"totalRecords"`
	Error        string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// Health always responds 200. A failed load is reported in the body so that
// the server stays up while the watcher retries.
func Health(store StoreState) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:       "ok",
			Scans:        store.Status(),
			TotalRecords: store.Total(),
		}
		if err := store.Err(); err != nil {
			resp.Error = err.Error()
		}
		WriteSuccessResponse(c, resp)
	}
}

// Version responds with the build metadata of the CLI.
func Version(v schemas.APIVersionResponse) gin.HandlerFunc {
	return func(c *gin.Context) {
		WriteSuccessResponse(c, v)
	}
}
