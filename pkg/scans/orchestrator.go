// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package scans loads scans from the Artemis API into a [Store]. Loading a
// history page forks one background detail fetch per scan whose summary is
// not cached yet. The fetches of a page form a batch that is aborted as a
// whole when another page is requested or the store is cleared.
package scans

import (
	"context"
	"fmt"
	"sync"

	"github.com/crashappsec/artemis/pkg/api/client"
	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/notifications"
	"github.com/crashappsec/artemis/pkg/schemas"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultBatchSize is the default number of detail fetches run at once.
	DefaultBatchSize = 10

	// MessageScanStarted is the notification sent once a scan is queued.
	MessageScanStarted = "Scan started"
)

// Fetcher is the subset of [client.Client] used to load scans.
type Fetcher interface {
	GetScanHistory(ctx context.Context, req schemas.ScanRequest, meta *client.RequestMeta) (schemas.ScanHistoryResponse, error)
	GetScanByID(ctx context.Context, id schemas.ScanID, meta *client.RequestMeta) (schemas.AnalysisReport, error)
	GetCurrentScan(ctx context.Context, meta *client.RequestMeta) (schemas.AnalysisReport, error)
	AddScan(ctx context.Context, form schemas.ScanOptionsForm) (schemas.AnalysisReport, error)
}

//go:generate mockgen -destination ../../internal/unittest/mocks/pkg/scans/notifier.go -package=scans -typed . Notifier

// Notifier surfaces messages and failures to the user.
// [notifications.Handler] implements it.
type Notifier interface {
	Notify(message string, severity notifications.Severity)
	HandleException(err error) bool
}

type operation string

const (
	opHistory operation = "history"
	opCurrent operation = "current"
	opByID    operation = "byID"
)

// Orchestrator runs the scan loading operations against a [Store].
type Orchestrator struct {
	fetcher  Fetcher
	notifier Notifier
	store    *Store
	registry *Registry

	parent    context.Context
	batchSize int64
	sem       *semaphore.Weighted

	latestMu sync.Mutex
	latest   map[operation]*latestCall

	// batchMu serializes the store writes of the loading operations with
	// their cancellation checks.
	batchMu sync.Mutex
	wg      sync.WaitGroup
}

type latestCall struct {
	cancel context.CancelFunc
}

// Opt is a function that configures an Orchestrator.
type Opt func(*Orchestrator) error

// BatchSizeOpt bounds the number of detail fetches running at once.
var BatchSizeOpt = func(n int) Opt {
	return func(o *Orchestrator) error {
		if n < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", n)
		}
		o.batchSize = int64(n)
		return nil
	}
}

// StoreOpt sets the store scans are loaded into.
var StoreOpt = func(s *Store) Opt {
	return func(o *Orchestrator) error {
		if s == nil {
			return fmt.Errorf("store is nil")
		}
		o.store = s
		return nil
	}
}

// ContextOpt sets the context background detail fetches derive from.
// Cancelling it aborts every task.
var ContextOpt = func(ctx context.Context) Opt {
	return func(o *Orchestrator) error {
		if ctx == nil {
			return fmt.Errorf("context is nil")
		}
		o.parent = ctx
		return nil
	}
}

func New(fetcher Fetcher, notifier Notifier, opts ...Opt) (*Orchestrator, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is nil")
	}
	o := &Orchestrator{
		fetcher:   fetcher,
		notifier:  notifier,
		parent:    context.Background(),
		batchSize: DefaultBatchSize,
		latest:    make(map[operation]*latestCall),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.store == nil {
		o.store = NewStore()
	}
	o.registry = NewRegistry(o.parent)
	o.sem = semaphore.NewWeighted(o.batchSize)
	return o, nil
}

func (o *Orchestrator) Store() *Store {
	return o.store
}

func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Wait blocks until every forked detail fetch has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// takeLatest cancels the previous call of op still in flight. The returned
// done func must be called once the call returns.
func (o *Orchestrator) takeLatest(ctx context.Context, op operation) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	call := &latestCall{cancel: cancel}

	o.latestMu.Lock()
	if prev, ok := o.latest[op]; ok {
		zap.L().Debug("superseding request", zap.String("operation", string(op)))
		prev.cancel()
	}
	o.latest[op] = call
	o.latestMu.Unlock()

	return ctx, func() {
		o.latestMu.Lock()
		if o.latest[op] == call {
			delete(o.latest, op)
		}
		o.latestMu.Unlock()
		cancel()
	}
}

// supersede cancels the calls of ops still in flight. Their results are
// dropped.
func (o *Orchestrator) supersede(ops ...operation) {
	o.latestMu.Lock()
	defer o.latestMu.Unlock()
	for _, op := range ops {
		if prev, ok := o.latest[op]; ok {
			zap.L().Debug("superseding request", zap.String("operation", string(op)))
			prev.cancel()
		}
	}
}

// fail records err unless it is a cancellation, which is never surfaced.
func (o *Orchestrator) fail(err error, msg string, fields ...zap.Field) error {
	if errs.IsCancelled(err) {
		zap.L().Debug(msg+" cancelled", fields...)
		return err
	}
	zap.L().Warn(msg, append(fields, zap.Error(err))...)
	o.store.Reject(err)
	o.notifier.HandleException(err)
	return err
}

// SummaryMeta requests a scan without its full results.
func SummaryMeta() *client.RequestMeta {
	return &client.RequestMeta{
		Filters: map[string]client.Filter{
			"format": client.FilterValue(client.MatchExact, "summary"),
		},
	}
}

// GetScanHistory loads a page of scan history. A newer call cancels an
// older one still waiting for its page. Each scan without a cached summary
// is then fetched in the background.
func (o *Orchestrator) GetScanHistory(
	ctx context.Context,
	req schemas.ScanRequest,
	meta *client.RequestMeta,
) error {
	ctx, done := o.takeLatest(ctx, opHistory)
	defer done()

	l := zap.L().With(zap.String("vcsOrg", req.VcsOrg), zap.String("repo", req.Repo))

	o.registry.CancelAll()
	o.store.Pending()

	page, err := o.fetcher.GetScanHistory(ctx, req, meta)
	if err != nil {
		return o.fail(err, "failed to load scan history", zap.String("vcsOrg", req.VcsOrg), zap.String("repo", req.Repo))
	}

	o.batchMu.Lock()
	defer o.batchMu.Unlock()

	if err = ctx.Err(); err != nil {
		l.Debug("scan history superseded")
		return errs.New(errs.TypeCancelled, err, schemas.ErrRequestCancelled)
	}

	coordinator := o.registry.NewBatch()

	var pending []schemas.ScanID
	for i := range page.Results {
		scan := &page.Results[i]
		if o.reuseSummary(scan) {
			l.Debug("reusing cached summary", zap.String("scanID", scan.ScanID))
			continue
		}
		if !scan.Status.HasDetail() {
			continue
		}
		pending = append(pending, scan.ID())
	}

	o.store.SetAll(page.Results, page.Count)

	tasks := make([]*Task, 0, len(pending))
	for _, id := range pending {
		t := NewTask(coordinator, id.Key())
		o.registry.Register(id.Key(), t)
		tasks = append(tasks, t)
	}
	for i, t := range tasks {
		o.wg.Add(1)
		go o.fetchDetail(t, pending[i])
	}

	l.Debug("loaded scan history", zap.Int("scans", len(page.Results)), zap.Int("fetches", len(tasks)))
	return nil
}

// reuseSummary copies the cached summary onto scan when the cached scan has
// one and its status is unchanged. Full results are never copied.
func (o *Orchestrator) reuseSummary(scan *schemas.AnalysisReport) bool {
	cached, ok := o.store.ByID(scan.ScanID)
	if !ok || cached.Status != scan.Status || !cached.HasSummary() {
		return false
	}
	scan.Success = cached.Success
	scan.ResultsSummary = cached.ResultsSummary
	scan.Errors = cached.Errors
	scan.ApplicationMetadata = cached.ApplicationMetadata
	return true
}

func (o *Orchestrator) fetchDetail(t *Task, id schemas.ScanID) {
	defer o.wg.Done()
	defer t.finish()
	defer o.registry.Remove(t.Key(), t)

	l := zap.L().With(zap.String("key", t.Key()))

	if err := o.sem.Acquire(t.Context(), 1); err != nil {
		l.Debug("scan detail cancelled before start")
		return
	}
	defer o.sem.Release(1)

	scan, err := o.fetcher.GetScanByID(t.Context(), id, SummaryMeta())
	if err != nil {
		if errs.IsCancelled(err) {
			l.Debug("scan detail cancelled")
			return
		}
		if o.registry.Commit(t, func() { o.store.Reject(err) }) {
			l.Warn("failed to load scan detail", zap.Error(err))
			o.notifier.HandleException(err)
		}
		return
	}

	o.registry.Commit(t, func() { o.store.UpsertOne(scan) })
}

// AddScan queues a scan. On success the store holds only the new scan.
// History and current scan loads still in flight are cancelled.
func (o *Orchestrator) AddScan(ctx context.Context, form schemas.ScanOptionsForm) (schemas.AnalysisReport, error) {
	o.supersede(opHistory, opCurrent)
	o.registry.CancelAll()
	o.store.Pending()

	scan, err := o.fetcher.AddScan(ctx, form)
	if err != nil {
		return schemas.AnalysisReport{}, o.fail(err, "failed to add scan", zap.String("vcsOrg", form.VcsOrg), zap.String("repo", form.Repo))
	}

	o.batchMu.Lock()
	o.store.ReplaceWithOne(scan)
	o.batchMu.Unlock()
	o.notifier.Notify(MessageScanStarted, notifications.SeveritySuccess)
	zap.L().Info("scan queued", zap.String("scanID", scan.ScanID), zap.String("repo", scan.Repo))
	return scan, nil
}

// ClearScans aborts every load in flight, including background fetches,
// and empties the store.
func (o *Orchestrator) ClearScans() {
	o.supersede(opHistory, opCurrent, opByID)

	o.batchMu.Lock()
	defer o.batchMu.Unlock()
	o.registry.CancelAll()
	o.store.Clear()
}

// GetCurrentScan loads the scan last queued through the client.
func (o *Orchestrator) GetCurrentScan(ctx context.Context) (schemas.AnalysisReport, error) {
	ctx, done := o.takeLatest(ctx, opCurrent)
	defer done()

	o.registry.CancelAll()
	o.store.Pending()

	scan, err := o.fetcher.GetCurrentScan(ctx, nil)
	if err != nil {
		return schemas.AnalysisReport{}, o.fail(err, "failed to load current scan")
	}

	o.batchMu.Lock()
	defer o.batchMu.Unlock()
	if err = ctx.Err(); err != nil {
		return schemas.AnalysisReport{}, errs.New(errs.TypeCancelled, err, schemas.ErrRequestCancelled)
	}

	o.store.UpsertCurrent(scan)
	return scan, nil
}

// GetScanByID loads a single scan. meta may drop the summary format filter
// to request full results.
func (o *Orchestrator) GetScanByID(
	ctx context.Context,
	id schemas.ScanID,
	meta *client.RequestMeta,
) (schemas.AnalysisReport, error) {
	ctx, done := o.takeLatest(ctx, opByID)
	defer done()

	o.store.Pending()

	scan, err := o.fetcher.GetScanByID(ctx, id, meta)
	if err != nil {
		return schemas.AnalysisReport{}, o.fail(err, "failed to load scan", zap.Stringer("id", id))
	}

	o.batchMu.Lock()
	defer o.batchMu.Unlock()
	if err = ctx.Err(); err != nil {
		return schemas.AnalysisReport{}, errs.New(errs.TypeCancelled, err, schemas.ErrRequestCancelled)
	}

	o.store.UpsertOne(scan)
	return scan, nil
}
