// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/crashappsec/artemis/pkg/api/routes"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/gin-gonic/gin"
)

// BearerAuthenticator is a gin middleware that requires the "Authorization"
// header to carry token as a bearer token. A missing or malformed header
// returns 400, a wrong token returns 401. An empty token disables the check.
func BearerAuthenticator(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			return
		}
		l := Logger(c)

		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			l.Debug("invalid authorization header")
			routes.WriteErrorResponse(c, http.StatusBadRequest, schemas.ErrInvalidAuthenticationHeader, nil)
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			l.Debug("could not authenticate token")
			routes.WriteErrorResponse(c, http.StatusUnauthorized, schemas.ErrInvalidTokenHeader, nil)
			return
		}
	}
}
