// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/crashappsec/artemis/internal/unittest"
	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

func TestClient_UserKeys(t *testing.T) {
	keyID := "6f2b7b1c-0000-4000-8000-000000000001"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/self/keys":
			assert.Equal(t, "200", r.URL.Query().Get("limit"))
			_, _ = io.WriteString(w, `{"results": [{"id": "`+keyID+`", "name": "ci", "scope": ["*"], "admin": false,
				"features": {}, "created": "2024-01-01T00:00:00", "expires": null, "last_used": null}],
				"count": 1, "next": null, "previous": null}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/users/self/keys":
			var req schemas.KeyRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ci", req.Name)
			_, _ = io.WriteString(w, `{"key": "secret-value"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/users/self/keys/"+keyID:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	keys, err := c.GetUserKeys(ctx, &RequestMeta{ItemsPerPage: 200})
	require.NoError(t, err)
	require.Len(t, keys.Results, 1)
	assert.Equal(t, "ci", keys.Results[0].Name)
	assert.Nil(t, keys.Results[0].Expires)

	created, err := c.AddUserKey(ctx, schemas.KeyRequest{Name: "ci", Scope: []string{"*"}})
	require.NoError(t, err)
	assert.Equal(t, "secret-value", created.Key)

	_, err = c.AddUserKey(ctx, schemas.KeyRequest{})
	assert.True(t, errs.IsType(err, errs.TypeBadRequest))

	id, err := c.DeleteUserKey(ctx, keyID)
	require.NoError(t, err)
	assert.Equal(t, keyID, id)

	_, err = c.DeleteUserKey(ctx, "unknown")
	assert.True(t, errs.IsType(err, errs.TypeNotFound))
}

func TestClient_UserServices(t *testing.T) {
	_ = unittest.CaptureLogs(t)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/self/services":
			_, _ = io.WriteString(w, `[{"name": "github", "username": "me-github", "linked": "2024-01-01T00:00:00Z"}]`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/users/self/services":
			var req schemas.VcsServiceRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Name != "github" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"message": "Service ID invalid"}`)
				return
			}
			w.WriteHeader(http.StatusConflict)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/users/self/services/github":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	services, err := c.GetUserServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "me-github", services[0].Username)

	_, err = c.LinkUserService(ctx, schemas.VcsServiceRequest{Name: "github"})
	assert.True(t, errs.IsType(err, errs.TypeBadRequest), "params are required")

	_, err = c.LinkUserService(ctx, schemas.VcsServiceRequest{
		Name:   "github",
		Params: schemas.VcsServiceRequestParams{Username: "me"},
	})
	require.Error(t, err)
	assert.Equal(t, "Conflict", err.Error())

	name, err := c.UnlinkUserService(ctx, "github")
	require.NoError(t, err)
	assert.Equal(t, "github", name)
}

func TestClient_SystemStatusAndSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/system/status":
			_, _ = io.WriteString(w, `{"maintenance": {"enabled": true, "message": "upgrading"}}`)
		case "/api/search/repositories":
			assert.Equal(t, "org", r.URL.Query().Get("repo__icontains"))
			_, _ = io.WriteString(w, `{"results": [{"service": "github", "repo": "org/repo", "risk": "high",
				"scan": null, "qualified_scan": {"created": "2024-01-01T00:00:00", "scan_id": "1"},
				"application_metadata": null}], "count": 1, "next": null, "previous": null}`)
		}
	})
	ctx := context.Background()

	status, err := c.GetSystemStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Maintenance.Enabled)
	assert.Equal(t, "upgrading", status.Maintenance.Message)

	repos, err := c.GetRepos(ctx, &RequestMeta{Filters: map[string]Filter{"repo": FilterValue(MatchIContains, "org")}})
	require.NoError(t, err)
	require.Len(t, repos.Results, 1)
	require.NotNil(t, repos.Results[0].Risk)
	assert.Equal(t, schemas.RiskHigh, *repos.Results[0].Risk)
	require.NotNil(t, repos.Results[0].QualifiedScan)
	assert.Equal(t, "1", repos.Results[0].QualifiedScan.ScanID)
}

func TestClient_Users(t *testing.T) {
	_ = unittest.CaptureLogs(t)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/users":
			assert.Equal(t, "me", r.URL.Query().Get("email__icontains"))
			_, _ = io.WriteString(w, `{"results": [{"email": "me@example.com", "admin": true, "scope": ["*"],
				"features": {}, "last_login": "2024-01-01T00:00:00", "scan_orgs": ["zeta", "alpha"]}],
				"count": 1, "next": null, "previous": null}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/self":
			_, _ = io.WriteString(w, `{"email": "me@example.com", "admin": false, "scope": ["github/org/*"],
				"features": {"snyk": true}, "last_login": null, "scan_orgs": ["github/org"]}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/other@example.com":
			_, _ = io.WriteString(w, `{"email": "other@example.com", "scope": []}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/users/new@example.com":
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"admin": false, "scope": ["github/org/*"]}`, string(body))
			_, _ = io.WriteString(w, `{"email": "new@example.com", "admin": false, "scope": ["github/org/*"],
				"features": {}, "last_login": null, "scan_orgs": []}`)
		case r.Method == http.MethodPut && r.URL.Path == "/api/users/new@example.com":
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"admin": true}`, string(body))
			_, _ = io.WriteString(w, `{"email": "new@example.com", "admin": true, "scope": ["github/org/*"]}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/users/new@example.com":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/broken@example.com":
			_, _ = io.WriteString(w, `{"admin": true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	users, err := c.GetUsers(ctx, &RequestMeta{Filters: map[string]Filter{"email": FilterValue(MatchIContains, "me")}})
	require.NoError(t, err)
	require.Len(t, users.Results, 1)
	assert.Equal(t, []string{"alpha", "zeta"}, users.Results[0].ScanOrgs)
	require.NotNil(t, users.Results[0].LastLogin)
	assert.Equal(t, 2024, users.Results[0].LastLogin.Year())

	self, err := c.GetUserSelf(ctx)
	require.NoError(t, err)
	assert.Equal(t, "self", self.ID)
	assert.Equal(t, "me@example.com", self.Email)
	assert.True(t, self.Features["snyk"])
	assert.Nil(t, self.LastLogin)

	other, err := c.GetUserByID(ctx, "other@example.com")
	require.NoError(t, err)
	assert.Empty(t, other.ID)

	_, err = c.GetUserByID(ctx, "")
	assert.True(t, errs.IsType(err, errs.TypeBadRequest))

	_, err = c.GetUserByID(ctx, "broken@example.com")
	assert.True(t, errs.IsType(err, errs.TypeValidation), "email is required in responses")

	added, err := c.AddUser(ctx, "new@example.com", schemas.UserRequest{
		Admin: ptr.To(false),
		Scope: []string{"github/org/*"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", added.Email)

	updated, err := c.UpdateUser(ctx, "new@example.com", schemas.UserRequest{Admin: ptr.To(true)})
	require.NoError(t, err)
	assert.True(t, updated.Admin)

	_, err = c.AddUser(ctx, "", schemas.UserRequest{})
	assert.True(t, errs.IsType(err, errs.TypeBadRequest))

	email, err := c.DeleteUser(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", email)

	_, err = c.DeleteUser(ctx, "gone@example.com")
	assert.True(t, errs.IsType(err, errs.TypeNotFound))
}
