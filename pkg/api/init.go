// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package api provides the local, read-only status server. It exposes the
// scans held by a [github.com/crashappsec/artemis/pkg/scans.Store] and the
// pending notifications. It is not the Artemis API.
package api

import (
	"github.com/crashappsec/artemis/internal/config"
	"github.com/crashappsec/artemis/pkg/api/middleware"
	"github.com/crashappsec/artemis/pkg/api/routes"
	routesV1 "github.com/crashappsec/artemis/pkg/api/routes/v1"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/gin-gonic/gin"
)

// ScanStore is read by the scan and health routes.
type ScanStore interface {
	routesV1.ScanReader
	routes.StoreState
}

// InitializeEngine initializes the gin engine and sets up the routes.
// All routes under /api require the bearer token when token is not empty.
func InitializeEngine(
	store ScanStore,
	notifier routesV1.NotificationReader,
	token string,
) *gin.Engine {
	if config.IsEnvironmentIn(config.EnvProduction, config.EnvStaging) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggerAssigner())
	router.GET("/health", routes.Health(store))
	router.GET("/version", routes.Version(schemas.APIVersionResponse{
		Version:   config.Version,
		BuildTime: config.BuildTime,
		Commit:    config.Commit,
	}))

	api := router.Group("/api")
	api.Use(middleware.BearerAuthenticator(token))

	v1 := api.Group("/v1")
	{
		scans := v1.Group("/scans")
		{
			scans.GET("", routesV1.ListScans(store))
			scans.GET("/:id", routesV1.GetScan(store))
		}

		v1.GET("/notifications", routesV1.ListNotifications(notifier))
	}

	return router
}
