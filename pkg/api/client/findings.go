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
	"time"

	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/schemas"
	"go.uber.org/zap"
)

const hiddenFindingsSuffix = "/whitelist"

// hiddenFindingRequest is the body sent when adding or updating a hidden
// finding. The API assigns the id and the audit fields.
type hiddenFindingRequest struct {
	Type    schemas.HiddenFindingType  `json:"type"`
	Value   schemas.HiddenFindingValue `json:"value"`
	Expires *schemas.Timestamp         `json:"expires"`
	Reason  string                     `json:"reason"`
}

func newHiddenFindingRequest(f schemas.HiddenFinding) hiddenFindingRequest {
	return hiddenFindingRequest{Type: f.Type, Value: f.Value, Expires: f.Expires, Reason: f.Reason}
}

func hiddenFindingsPath(vcsOrg, repo string) string {
	return repoPath(vcsOrg, repo) + hiddenFindingsSuffix
}

func checkHiddenFinding(f schemas.HiddenFinding) error {
	if err := f.CheckValue(); err != nil {
		return errs.New(errs.TypeValidation, err, "%s: %s", schemas.ErrDataRequired, err)
	}
	return nil
}

// GetHiddenFindings returns the hidden findings of a repository.
func (c *Client) GetHiddenFindings(
	ctx context.Context,
	vcsOrg, repo string,
	meta *RequestMeta,
) ([]schemas.HiddenFinding, error) {
	if err := checkRepo(vcsOrg, repo); err != nil {
		return nil, err
	}
	findings, err := do[schemas.HiddenFindings](ctx, c.client, http.MethodGet, hiddenFindingsPath(vcsOrg, repo), meta, nil)
	if err != nil {
		return nil, formatError(err, schemas.ErrGetHiddenFindings)
	}
	return findings, nil
}

// AddHiddenFinding hides a finding in a repository. The API does not
// always return the audit fields, those missing are filled with the
// CreatedBy of f and the current time.
func (c *Client) AddHiddenFinding(
	ctx context.Context,
	vcsOrg, repo string,
	f schemas.HiddenFinding,
) ([]schemas.HiddenFinding, error) {
	if err := checkRepo(vcsOrg, repo); err != nil {
		return nil, err
	}
	if err := checkHiddenFinding(f); err != nil {
		return nil, err
	}

	findings, err := do[schemas.HiddenFindings](
		ctx,
		c.client,
		http.MethodPost,
		hiddenFindingsPath(vcsOrg, repo),
		nil,
		newHiddenFindingRequest(f),
	)
	if err != nil {
		return nil, formatError(err, schemas.ErrAddHiddenFinding)
	}

	now := schemas.NewTimestamp(time.Now())
	for i := range findings {
		if findings[i].CreatedBy == nil {
			findings[i].CreatedBy = f.CreatedBy
		}
		if findings[i].Created == nil {
			findings[i].Created = now
		}
	}
	return findings, nil
}

// UpdateHiddenFinding saves f, which must carry the id of an existing
// hidden finding. The API returns no content, so f is returned with
// Updated set to the current time.
func (c *Client) UpdateHiddenFinding(
	ctx context.Context,
	vcsOrg, repo string,
	f schemas.HiddenFinding,
) (schemas.HiddenFinding, error) {
	if err := checkRepo(vcsOrg, repo); err != nil {
		return schemas.HiddenFinding{}, err
	}
	if f.ID == "" {
		return schemas.HiddenFinding{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrHiddenFindingIDRequired)
	}
	if err := checkHiddenFinding(f); err != nil {
		return schemas.HiddenFinding{}, err
	}

	_, err := do[noContent](
		ctx,
		c.client,
		http.MethodPut,
		hiddenFindingsPath(vcsOrg, repo)+"/"+url.PathEscape(f.ID),
		nil,
		newHiddenFindingRequest(f),
	)
	if err != nil {
		return schemas.HiddenFinding{}, formatError(err, schemas.ErrUpdateHiddenFinding)
	}
	f.Updated = schemas.NewTimestamp(time.Now())
	return f, nil
}

// DeleteHiddenFinding removes a hidden finding and returns its id.
func (c *Client) DeleteHiddenFinding(ctx context.Context, vcsOrg, repo, id string) (string, error) {
	if err := checkRepo(vcsOrg, repo); err != nil {
		return "", err
	}
	if id == "" {
		return "", errs.New(errs.TypeBadRequest, nil, schemas.ErrHiddenFindingIDRequired)
	}
	_, err := do[noContent](
		ctx,
		c.client,
		http.MethodDelete,
		hiddenFindingsPath(vcsOrg, repo)+"/"+url.PathEscape(id),
		nil,
		nil,
	)
	if err != nil {
		return "", formatError(err, schemas.ErrDeleteHiddenFinding)
	}
	zap.L().Debug("removed hidden finding", zap.String("repo", repo), zap.String("id", id))
	return id, nil
}
