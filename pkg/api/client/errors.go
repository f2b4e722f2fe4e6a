// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package client

import (
	"errors"
	"net/http"

	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/schemas"
	"go.uber.org/zap"
)

// notAuthorizedMessage is the body message of a 401 returned for a
// resource the user cannot access, as opposed to an expired session.
const notAuthorizedMessage = "not authorized"

// formatError maps a request failure to an [errs.Error]. The checks are
// applied in order:
//   - cancelled requests become [errs.TypeCancelled]
//   - errors that are already typed are returned as is
//   - 401 becomes [errs.TypeForbidden] when the body says "not authorized",
//     [errs.TypeUnauthorized] otherwise
//   - 404 becomes [errs.TypeNotFound]
//   - a body with a non-empty "failed" list uses the first error message
//   - any other status uses the status text
//   - everything else uses defaultMsg
func formatError(err error, defaultMsg schemas.ErrorMsg) error {
	if err == nil {
		return nil
	}
	if defaultMsg == "" {
		defaultMsg = schemas.ErrUnknown
	}

	if errs.IsCancelled(err) {
		zap.L().Debug("request cancelled", zap.Error(err))
		return errs.New(errs.TypeCancelled, err, schemas.ErrRequestCancelled)
	}

	var typed *errs.Error
	if errors.As(err, &typed) {
		return err
	}

	var se *statusError
	if !errors.As(err, &se) {
		zap.L().Warn(defaultMsg, zap.Error(err))
		return errs.New(errs.TypeUnknown, err, "%s", defaultMsg)
	}

	body := se.body()
	switch se.StatusCode {
	case http.StatusUnauthorized:
		if body.Message == notAuthorizedMessage {
			return errs.New(errs.TypeForbidden, err, schemas.ErrNotAuthorized)
		}
		zap.L().Warn("session timeout")
		return errs.New(errs.TypeUnauthorized, err, schemas.ErrSessionExpired)
	case http.StatusNotFound:
		return errs.New(errs.TypeNotFound, err, schemas.ErrNotFound)
	}

	if len(body.Failed) > 0 {
		msg := body.Failed[0].Error
		if msg == "" {
			msg = defaultMsg
		}
		zap.L().Warn(msg, zap.Int("status", se.StatusCode))
		return errs.New(errs.TypeBadRequest, err, "%s", msg)
	}

	text := se.StatusText()
	if text == "" {
		text = defaultMsg
	}
	zap.L().Warn(text, zap.Int("status", se.StatusCode))
	return errs.New(statusType(se.StatusCode), err, "%s", text)
}

func statusType(code int) errs.Type {
	switch code {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return errs.TypeBadRequest
	case http.StatusForbidden:
		return errs.TypeForbidden
	default:
		return errs.TypeUnknown
	}
}
