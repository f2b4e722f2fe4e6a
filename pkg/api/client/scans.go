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
	"strings"
	"time"

	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/schemas"
	"go.uber.org/zap"
	"k8s.io/utils/ptr"
)

// adjustScan fills in the scan id of history rows, where the API reports
// it as the last path element of the repo.
func adjustScan(scan *schemas.AnalysisReport) {
	if scan.ScanID != "" {
		return
	}
	idx := strings.LastIndex(scan.Repo, "/")
	if idx < 0 {
		return
	}
	scan.ScanID = scan.Repo[idx+1:]
	scan.Repo = scan.Repo[:idx]
}

func repoPath(vcsOrg, repo string) string {
	return escapePath(strings.Trim(vcsOrg, "/")) + "/" + escapePath(strings.Trim(repo, "/"))
}

func checkRepo(vcsOrg, repo string) error {
	if vcsOrg == "" {
		return errs.New(errs.TypeBadRequest, nil, schemas.ErrVcsOrgRequired)
	}
	if repo == "" {
		return errs.New(errs.TypeBadRequest, nil, schemas.ErrRepoRequired)
	}
	return nil
}

// GetScanHistory returns a page of the scan history of a repository.
func (c *Client) GetScanHistory(
	ctx context.Context,
	req schemas.ScanRequest,
	meta *RequestMeta,
) (schemas.ScanHistoryResponse, error) {
	if err := checkRepo(req.VcsOrg, req.Repo); err != nil {
		return schemas.ScanHistoryResponse{}, err
	}

	history, err := do[schemas.ScanHistoryResponse](
		ctx,
		c.client,
		http.MethodGet,
		repoPath(req.VcsOrg, req.Repo)+"/history",
		meta,
		nil,
	)
	if err != nil {
		return schemas.ScanHistoryResponse{}, formatError(err, schemas.ErrGetScanHistory)
	}

	for i := range history.Results {
		adjustScan(&history.Results[i])
	}
	return history, nil
}

// GetScanByID returns a single scan. Pass a filter on "format" with the
// value "summary" to omit full results.
func (c *Client) GetScanByID(
	ctx context.Context,
	id schemas.ScanID,
	meta *RequestMeta,
) (schemas.AnalysisReport, error) {
	if !id.Valid() {
		return schemas.AnalysisReport{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrInvalidScanID)
	}

	scan, err := do[schemas.AnalysisReport](
		ctx,
		c.client,
		http.MethodGet,
		escapePath(id.Key()),
		meta,
		nil,
	)
	if err != nil {
		return schemas.AnalysisReport{}, formatError(err, schemas.ErrGetScanByID)
	}

	adjustScan(&scan)
	if scan.ScanID == "" {
		scan.ScanID = id.ScanID
	}
	return scan, nil
}

// GetCurrentScan returns the last scan queued through [Client.AddScan],
// as remembered by the client's [CurrentScanStore].
func (c *Client) GetCurrentScan(ctx context.Context, meta *RequestMeta) (schemas.AnalysisReport, error) {
	uri, err := c.current.Get()
	if err != nil {
		return schemas.AnalysisReport{}, errs.New(errs.TypeUnknown, err, schemas.ErrNoCurrentScan)
	}
	if uri == "" {
		return schemas.AnalysisReport{}, errs.New(errs.TypeNotFound, nil, schemas.ErrNoCurrentScan)
	}

	unescaped, err := url.PathUnescape(uri)
	if err != nil {
		unescaped = uri
	}
	id, ok := schemas.ParseScanID(unescaped)
	if !ok {
		return schemas.AnalysisReport{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrInvalidScanID)
	}
	return c.GetScanByID(ctx, id, meta)
}

// CurrentScan returns the remembered current scan URI, if any.
func (c *Client) CurrentScan() (string, error) {
	return c.current.Get()
}

// AddScan queues a scan of the repository in form and remembers it as the
// current scan. The returned report is a placeholder in the queued state,
// the server is not asked for the scan itself.
func (c *Client) AddScan(ctx context.Context, form schemas.ScanOptionsForm) (schemas.AnalysisReport, error) {
	if form.VcsOrg == "" {
		return schemas.AnalysisReport{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrVcsOrgRequired)
	}
	if form.Repo == "" {
		return schemas.AnalysisReport{}, errs.New(errs.TypeBadRequest, nil, schemas.ErrRepoRequired)
	}

	opts := BuildScanOptions(form)
	queue, err := do[schemas.ScanQueue](
		ctx,
		c.client,
		http.MethodPost,
		repoPath(form.VcsOrg, form.Repo),
		nil,
		opts,
	)
	if err != nil {
		return schemas.AnalysisReport{}, formatError(err, schemas.ErrQueueScan)
	}

	if len(queue.Failed) > 0 {
		msg := queue.Failed[0].Error
		if msg == "" {
			msg = schemas.ErrQueueScan
		}
		return schemas.AnalysisReport{}, errs.New(errs.TypeBadRequest, nil, "%s", msg)
	}
	if len(queue.Queued) == 0 {
		return schemas.AnalysisReport{}, errs.New(errs.TypeValidation, nil, schemas.ErrUnexpectedFormat)
	}

	queued := queue.Queued[0]
	vcs, _, _ := strings.Cut(form.VcsOrg, "/")
	current := "/" + url.PathEscape(vcs)
	if !strings.HasPrefix(queued, "/") {
		current += "/"
	}
	current += queued
	if err := c.current.Set(current); err != nil {
		zap.L().Warn("failed to remember current scan", zap.String("scan", current), zap.Error(err))
	}

	return queuedPlaceholder(current, queued, form.Branch, opts), nil
}

func queuedPlaceholder(current, queued, branch string, opts schemas.ScanOptions) schemas.AnalysisReport {
	includePaths := opts.IncludePaths
	if includePaths == nil {
		includePaths = []string{}
	}
	excludePaths := opts.ExcludePaths
	if excludePaths == nil {
		excludePaths = []string{}
	}
	if len(includePaths) > 0 && len(excludePaths) == 0 {
		excludePaths = []string{"*"}
	}

	scan := schemas.AnalysisReport{
		ScanHistory: schemas.ScanHistory{
			ScanID: queued[strings.LastIndex(queued, "/")+1:],
			Status: schemas.ScanStatusQueued,
			Timestamps: schemas.ScanTimestamps{
				Queued: schemas.NewTimestamp(time.Now()),
			},
			ScanOptions: schemas.ScanOptions{
				IncludePaths: includePaths,
				ExcludePaths: excludePaths,
			},
		},
	}
	if branch != "" {
		scan.Branch = ptr.To(branch)
	}
	if id, ok := schemas.ParseScanID(current); ok {
		scan.Service = id.Service
		scan.Repo = id.Repo
	}
	return scan
}
