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
	"net/http"
	"net/url"
	"sort"

	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/schemas"
)

const (
	usersPath        = "/users"
	userSelfID       = "self"
	userKeysPath     = "/users/self/keys"
	userServicesPath = "/users/self/services"
)

// GetUserKeys returns a page of the API keys of the current user.
func (c *Client) GetUserKeys(ctx context.Context, meta *RequestMeta) (schemas.KeysResponse, error) {
	keys, err := do[schemas.KeysResponse](ctx, c.client, http.MethodGet, userKeysPath, meta, nil)
	if err != nil {
		return schemas.KeysResponse{}, formatError(err, schemas.ErrGetUserKeys)
	}
	return keys, nil
}

// AddUserKey creates an API key for the current user. The key value is
// only returned by this call.
func (c *Client) AddUserKey(ctx context.Context, key schemas.KeyRequest) (schemas.KeyResponse, error) {
	if key.Name == "" {
		return schemas.KeyResponse{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrDataRequired)
	}
	resp, err := do[schemas.KeyResponse](ctx, c.client, http.MethodPost, userKeysPath, nil, key)
	if err != nil {
		return schemas.KeyResponse{}, formatError(err, schemas.ErrAddUserKey)
	}
	return resp, nil
}

// DeleteUserKey removes an API key of the current user and returns its id.
func (c *Client) DeleteUserKey(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", errs.New(errs.TypeBadRequest, nil, schemas.ErrDataRequired)
	}
	_, err := do[noContent](ctx, c.client, http.MethodDelete, userKeysPath+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return "", formatError(err, schemas.ErrDeleteUserKey)
	}
	return id, nil
}

// GetUserServices returns the version control services linked to the current user.
func (c *Client) GetUserServices(ctx context.Context) ([]schemas.VcsService, error) {
	services, err := do[[]schemas.VcsService](ctx, c.client, http.MethodGet, userServicesPath, nil, nil)
	if err != nil {
		return nil, formatError(err, schemas.ErrGetUserServices)
	}
	return services, nil
}

// LinkUserService links a version control service account to the current user.
func (c *Client) LinkUserService(ctx context.Context, req schemas.VcsServiceRequest) (schemas.VcsService, error) {
	if req.Name == "" || (req.Params.Username == "" && req.Params.AuthCode == "") {
		return schemas.VcsService{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrDataRequired)
	}
	service, err := do[schemas.VcsService](ctx, c.client, http.MethodPost, userServicesPath, nil, req)
	if err != nil {
		return schemas.VcsService{}, formatError(err, schemas.ErrLinkUserService)
	}
	return service, nil
}

// UnlinkUserService unlinks a service from the current user and returns its name.
func (c *Client) UnlinkUserService(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", errs.New(errs.TypeBadRequest, nil, schemas.ErrDataRequired)
	}
	_, err := do[noContent](ctx, c.client, http.MethodDelete, userServicesPath+"/"+url.PathEscape(name), nil, nil)
	if err != nil {
		return "", formatError(err, schemas.ErrUnlinkUserService)
	}
	return name, nil
}

func adjustUser(user *schemas.User, id string) {
	if user.ID == "" && id != "" {
		user.ID = id
	}
	sort.Strings(user.ScanOrgs)
}

func userPath(email string) string {
	return usersPath + "/" + url.PathEscape(email)
}

// GetUsers returns a page of all users. Requires an admin key.
func (c *Client) GetUsers(ctx context.Context, meta *RequestMeta) (schemas.UsersResponse, error) {
	users, err := do[schemas.UsersResponse](ctx, c.client, http.MethodGet, usersPath, meta, nil)
	if err != nil {
		return schemas.UsersResponse{}, formatError(err, schemas.ErrGetUsers)
	}
	for i := range users.Results {
		adjustUser(&users.Results[i], "")
	}
	return users, nil
}

// GetUserSelf returns the user the API key belongs to.
func (c *Client) GetUserSelf(ctx context.Context) (schemas.User, error) {
	user, err := do[schemas.User](ctx, c.client, http.MethodGet, userPath(userSelfID), nil, nil)
	if err != nil {
		return schemas.User{}, formatError(err, schemas.ErrGetUserSelf)
	}
	adjustUser(&user, userSelfID)
	return user, nil
}

// GetUserByID returns the user with the given email.
func (c *Client) GetUserByID(ctx context.Context, email string) (schemas.User, error) {
	if email == "" {
		return schemas.User{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrEmailRequired)
	}
	user, err := do[schemas.User](ctx, c.client, http.MethodGet, userPath(email), nil, nil)
	if err != nil {
		return schemas.User{}, formatError(err, schemas.ErrGetUserByID)
	}
	adjustUser(&user, "")
	return user, nil
}

// AddUser creates the user with the given email.
func (c *Client) AddUser(ctx context.Context, email string, req schemas.UserRequest) (schemas.User, error) {
	return c.saveUser(ctx, http.MethodPost, email, req, schemas.ErrAddUser)
}

// UpdateUser changes the fields set in req for the user with the given email.
func (c *Client) UpdateUser(ctx context.Context, email string, req schemas.UserRequest) (schemas.User, error) {
	return c.saveUser(ctx, http.MethodPut, email, req, schemas.ErrUpdateUser)
}

func (c *Client) saveUser(
	ctx context.Context,
	method, email string,
	req schemas.UserRequest,
	msg schemas.ErrorMsg,
) (schemas.User, error) {
	if email == "" {
		return schemas.User{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrEmailRequired)
	}
	user, err := do[schemas.User](ctx, c.client, method, userPath(email), nil, req)
	if err != nil {
		return schemas.User{}, formatError(err, msg)
	}
	adjustUser(&user, "")
	return user, nil
}

// DeleteUser removes a user and returns its email.
func (c *Client) DeleteUser(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", errs.New(errs.TypeBadRequest, nil, schemas.ErrEmailRequired)
	}
	_, err := do[noContent](ctx, c.client, http.MethodDelete, userPath(email), nil, nil)
	if err != nil {
		return "", formatError(err, schemas.ErrDeleteUser)
	}
	return email, nil
}
