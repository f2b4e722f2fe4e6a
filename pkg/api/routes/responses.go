// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package routes

import (
	"errors"
	"net/http"

	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusCode returns the HTTP status used to report err.
func StatusCode(err error) int {
	var target *errs.Error
	if !errors.As(err, &target) {
		return http.StatusInternalServerError
	}
	switch target.Type {
	case errs.TypeNotFound:
		return http.StatusNotFound
	case errs.TypeForbidden:
		return http.StatusForbidden
	case errs.TypeBadRequest, errs.TypeValidation:
		return http.StatusBadRequest
	case errs.TypeUnauthorized:
		return http.StatusUnauthorized
	case errs.TypeCancelled:
		// nginx's "client closed request"
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func WriteErr(c *gin.Context, err error) {
	zap.L().Debug("writing error response", zap.String("response_err", err.Error()))

	var target *errs.Error
	if !errors.As(err, &target) {
		WriteErrorResponse(c, http.StatusInternalServerError, schemas.ErrUnknown, nil)
		return
	}

	code := StatusCode(err)
	msg := schemas.ErrUnknown
	switch code {
	case http.StatusNotFound:
		msg = schemas.ErrResourceNotFound
	case http.StatusUnauthorized:
		msg = schemas.ErrUnauthorized
	case http.StatusBadRequest:
		msg = schemas.ErrInvalidParameter
	case http.StatusForbidden:
		msg = schemas.ErrNotAuthorized
	case 499:
		msg = schemas.ErrRequestCancelled
	}
	WriteErrorResponse(c, code, msg, target.Message)
}

func WriteSuccessResponse(c *gin.Context, response any) {
	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered: []string{gin.MIMEJSON, gin.MIMEYAML},
		Data:    schemas.APIResponse[any]{Success: true, Response: response},
	})
}

func WriteErrorResponse(c *gin.Context, code int, err schemas.ErrorMsg, response any) {
	c.Abort()
	c.Negotiate(code, gin.Negotiate{
		Offered: []string{gin.MIMEJSON, gin.MIMEYAML},
		Data:    schemas.APIResponse[any]{Success: false, Error: err, Response: response},
	})
}
