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

	"github.com/crashappsec/artemis/pkg/schemas"
)

// GetSystemStatus returns the maintenance status of the Artemis API.
func (c *Client) GetSystemStatus(ctx context.Context) (schemas.SystemStatus, error) {
	status, err := do[schemas.SystemStatus](ctx, c.client, http.MethodGet, "/system/status", nil, nil)
	if err != nil {
		return schemas.SystemStatus{}, formatError(err, schemas.ErrGetSystemStatus)
	}
	return status, nil
}

// GetRepos searches repositories. Filters and paging are given in meta.
func (c *Client) GetRepos(ctx context.Context, meta *RequestMeta) (schemas.SearchReposResponse, error) {
	repos, err := do[schemas.SearchReposResponse](ctx, c.client, http.MethodGet, "/search/repositories", meta, nil)
	if err != nil {
		return schemas.SearchReposResponse{}, formatError(err, schemas.ErrGetRepoSearchResult)
	}
	return repos, nil
}
