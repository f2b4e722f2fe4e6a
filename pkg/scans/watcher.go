// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package scans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crashappsec/artemis/pkg/api/client"
	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// DefaultReloadInterval is the default time between two reloads.
const DefaultReloadInterval = 30 * time.Second

// Watcher reloads a history page while any of its scans is in progress.
type Watcher struct {
	orchestrator *Orchestrator
	meta         *client.RequestMeta

	// Interval is the time between two reloads.
	Interval time.Duration
	// AutoReload enables reloading. A disabled watcher only loads the page once.
	AutoReload bool
	// StopWhenDone stops watching once every scan is terminal.
	StopWhenDone bool
	// OnReload is called after each load with the store snapshot, if set.
	OnReload func(Snapshot)
}

// NewWatcher returns a watcher of the history page described by meta.
func NewWatcher(o *Orchestrator, meta *client.RequestMeta) *Watcher {
	return &Watcher{
		orchestrator: o,
		meta:         meta,
		Interval:     DefaultReloadInterval,
		AutoReload:   true,
	}
}

// shouldReload reports whether the loaded page still has scans in progress.
// A failed load keeps the previous scans and is retried on the next tick.
func (w *Watcher) shouldReload() bool {
	s := w.orchestrator.Store()
	return w.AutoReload &&
		s.Total() > 0 &&
		s.Status() != StatusLoading &&
		s.AnyInProgress()
}

func (w *Watcher) load(ctx context.Context, req schemas.ScanRequest) error {
	err := w.orchestrator.GetScanHistory(ctx, req, w.meta)
	w.orchestrator.Wait()
	if w.OnReload != nil {
		w.OnReload(w.orchestrator.Store().Snapshot())
	}
	return err
}

// Watch loads the page of req, then reloads it every interval until ctx is
// done. Load failures are reported to the notifier and do not stop the
// watcher, they are returned together once it stops.
func (w *Watcher) Watch(ctx context.Context, req schemas.ScanRequest) error {
	if w.Interval <= 0 {
		return fmt.Errorf("reload interval must be positive, got %s", w.Interval)
	}

	var result *multierror.Error
	record := func(err error) {
		if err != nil && !errs.IsCancelled(err) {
			result = multierror.Append(result, err)
		}
	}

	record(w.load(ctx, req))

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		if w.StopWhenDone && !w.orchestrator.Store().AnyInProgress() && w.orchestrator.Store().Status() != StatusLoading {
			zap.L().Info("all scans finished, stopping watcher")
			return result.ErrorOrNil()
		}

		select {
		case <-ctx.Done():
			w.orchestrator.Registry().CancelAll()
			w.orchestrator.Wait()
			if !errors.Is(ctx.Err(), context.Canceled) {
				record(ctx.Err())
			}
			return result.ErrorOrNil()
		case <-ticker.C:
			if !w.shouldReload() {
				continue
			}
			zap.L().Debug("reloading scan history", zap.String("vcsOrg", req.VcsOrg), zap.String("repo", req.Repo))
			record(w.load(ctx, req))
		}
	}
}
