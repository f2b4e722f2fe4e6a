// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package v1

import (
	"github.com/crashappsec/artemis/pkg/api/routes"
	"github.com/crashappsec/artemis/pkg/notifications"
	"github.com/gin-gonic/gin"
)

// NotificationReader is the read side of a [notifications.Handler].
type NotificationReader interface {
	Pending() []notifications.Notification
	Exception() *notifications.GlobalException
}

type NotificationsResponse struct {
	Notifications []notifications.Notification    `json:"notifications"       yaml:"notifications"`
	Exception     *notifications.GlobalException `json:"exception,omitempty" yaml:"exception,omitempty"`
}

// ListNotifications responds with the pending notifications and the global
// exception, if any.
func ListNotifications(reader NotificationReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending := reader.Pending()
		if pending == nil {
			pending = []notifications.Notification{}
		}
		routes.WriteSuccessResponse(c, NotificationsResponse{
			Notifications: pending,
			Exception:     reader.Exception(),
		})
	}
}
