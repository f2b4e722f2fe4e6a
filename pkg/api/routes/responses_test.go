// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteErr(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedMsg  schemas.ErrorMsg
	}{
		{
			name:         "untyped",
			err:          fmt.Errorf("boom"),
			expectedCode: http.StatusInternalServerError,
			expectedMsg:  schemas.ErrUnknown,
		},
		{
			name:         "not found",
			err:          errs.New(errs.TypeNotFound, nil, "scan %s", "a"),
			expectedCode: http.StatusNotFound,
			expectedMsg:  schemas.ErrResourceNotFound,
		},
		{
			name:         "bad request",
			err:          errs.New(errs.TypeBadRequest, nil, "bad"),
			expectedCode: http.StatusBadRequest,
			expectedMsg:  schemas.ErrInvalidParameter,
		},
		{
			name:         "validation",
			err:          errs.New(errs.TypeValidation, nil, "bad"),
			expectedCode: http.StatusBadRequest,
			expectedMsg:  schemas.ErrInvalidParameter,
		},
		{
			name:         "unauthorized",
			err:          errs.New(errs.TypeUnauthorized, nil, "expired"),
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  schemas.ErrUnauthorized,
		},
		{
			name:         "forbidden",
			err:          errs.New(errs.TypeForbidden, nil, "no"),
			expectedCode: http.StatusForbidden,
			expectedMsg:  schemas.ErrNotAuthorized,
		},
		{
			name:         "cancelled",
			err:          errs.New(errs.TypeCancelled, nil, "stop"),
			expectedCode: 499,
			expectedMsg:  schemas.ErrRequestCancelled,
		},
		{
			name:         "wrapped",
			err:          fmt.Errorf("loading: %w", errs.New(errs.TypeNotFound, nil, "gone")),
			expectedCode: http.StatusNotFound,
			expectedMsg:  schemas.ErrResourceNotFound,
		},
	}

	gin.SetMode(gin.TestMode)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.Header.Set("Accept", gin.MIMEJSON)

			WriteErr(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.True(t, c.IsAborted())
			var resp schemas.APIResponse[any]
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedMsg, resp.Error)
		})
	}
}

func TestWriteSuccessResponse_YAML(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Accept", gin.MIMEYAML)

	WriteSuccessResponse(c, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp schemas.APIResponse[map[string]string]
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "world", resp.Response["hello"])
}
