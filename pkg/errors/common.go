// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package errors provides a way to create and handle errors with types and messages.
// Errors returned by the Artemis API client are categorized by [Type] so that
// callers can decide how to surface them (notification, forced re-login, or
// silently dropped when the request was cancelled).
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Type represents the type of error.
type Type = uint8

const (
	// TypeUnknown is used when the error type is not known.
	TypeUnknown Type = iota
	// TypeBadRequest is used when the request is invalid or rejected by the server.
	TypeBadRequest
	// TypeNotFound is used when the requested resource is not found.
	TypeNotFound
	// TypeUnauthorized is used when the session is no longer authenticated
	// and the user needs to log in again.
	TypeUnauthorized
	// TypeForbidden is used when the user is authenticated but is not
	// allowed to access the resource.
	TypeForbidden
	// TypeValidation is used when a response does not match the expected format.
	TypeValidation
	// TypeCancelled is used when the request was intentionally aborted.
	TypeCancelled
)

// Error represents an error with a type and a message.
// It wraps the original error if one is provided.
type Error struct {
	Wrapped error
	Type    Type
	Message string
}

// New creates a new error with the given type, wrapped error, message and arguments.
// The message is formatted using [fmt.Sprintf] with the provided arguments.
func New(ty Type, wrapped error, msg string, args ...any) *Error {
	return &Error{
		Wrapped: wrapped,
		Type:    ty,
		Message: fmt.Sprintf(msg, args...),
	}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Wrapped != nil {
		return e.Wrapped.Error()
	}
	return "unknown error"
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Wrapped, target)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// IsType reports whether err is (or wraps) an [Error] of type ty.
func IsType(err error, ty Type) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Type == ty
	}
	return false
}

// IsCancelled reports whether err was caused by an intentional cancellation,
// either an [Error] of [TypeCancelled] or anything wrapping [context.Canceled].
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	return IsType(err, TypeCancelled) || errors.Is(err, context.Canceled)
}

// IsAuth reports whether err requires the user to authenticate again.
func IsAuth(err error) bool {
	return IsType(err, TypeUnauthorized)
}
