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

	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/schemas"
)

const (
	componentsPath      = "/sbom/components"
	vulnerabilitiesPath = "/search/vulnerabilities"
)

// GetComponents searches the components found by SBOM scans.
func (c *Client) GetComponents(ctx context.Context, meta *RequestMeta) (schemas.SearchComponentsResponse, error) {
	components, err := do[schemas.SearchComponentsResponse](ctx, c.client, http.MethodGet, componentsPath, meta, nil)
	if err != nil {
		return schemas.SearchComponentsResponse{}, formatError(err, schemas.ErrGetComponents)
	}
	return components, nil
}

// GetComponentRepos returns the repositories using a component version.
func (c *Client) GetComponentRepos(
	ctx context.Context,
	name, version string,
	meta *RequestMeta,
) (schemas.SearchComponentReposResponse, error) {
	if name == "" {
		return schemas.SearchComponentReposResponse{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrComponentNameRequired)
	}
	if version == "" {
		return schemas.SearchComponentReposResponse{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrComponentVersionRequired)
	}

	path := componentsPath + "/" + url.PathEscape(name) + "/" + url.PathEscape(version) + "/repos"
	repos, err := do[schemas.SearchComponentReposResponse](ctx, c.client, http.MethodGet, path, meta, nil)
	if err != nil {
		return schemas.SearchComponentReposResponse{}, formatError(err, schemas.ErrGetComponentRepos)
	}
	return repos, nil
}

// GetVulnerabilities searches the vulnerabilities found across repositories.
// Each result is normalized with [schemas.SearchVulnerability.Normalize].
func (c *Client) GetVulnerabilities(ctx context.Context, meta *RequestMeta) (schemas.SearchVulnsResponse, error) {
	vulns, err := do[schemas.SearchVulnsResponse](ctx, c.client, http.MethodGet, vulnerabilitiesPath, meta, nil)
	if err != nil {
		return schemas.SearchVulnsResponse{}, formatError(err, schemas.ErrGetVulnerabilities)
	}
	for i := range vulns.Results {
		vulns.Results[i].Normalize()
	}
	return vulns, nil
}

// GetVulnerabilityRepos returns the repositories affected by a vulnerability.
func (c *Client) GetVulnerabilityRepos(
	ctx context.Context,
	id string,
	meta *RequestMeta,
) (schemas.SearchReposResponse, error) {
	if id == "" {
		return schemas.SearchReposResponse{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrVulnerabilityIDRequired)
	}
	path := vulnerabilitiesPath + "/" + url.PathEscape(id) + "/repositories"
	repos, err := do[schemas.SearchReposResponse](ctx, c.client, http.MethodGet, path, meta, nil)
	if err != nil {
		return schemas.SearchReposResponse{}, formatError(err, schemas.ErrGetVulnerabilityRepos)
	}
	return repos, nil
}
