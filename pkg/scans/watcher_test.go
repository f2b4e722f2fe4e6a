// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package scans_test

import (
	"context"
	"sync/atomic"
	"time"

	mocks "github.com/crashappsec/artemis/internal/unittest/mocks/pkg/scans"
	"github.com/crashappsec/artemis/pkg/api/client"
	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/scans"
	"github.com/crashappsec/artemis/pkg/schemas"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Watcher", func() {
	var (
		notifier     *mocks.MockNotifier
		fetcher      *fakeFetcher
		orchestrator *scans.Orchestrator
		loads        atomic.Int32
	)

	BeforeEach(func() {
		notifier = mocks.NewMockNotifier(gomock.NewController(GinkgoT()))
		fetcher = &fakeFetcher{}
		loads.Store(0)

		var err error
		orchestrator, err = scans.New(fetcher, notifier)
		Expect(err).NotTo(HaveOccurred())
	})

	// finishesAfter serves a queued scan until n pages were loaded.
	finishesAfter := func(n int32) {
		fetcher.history = func(context.Context, schemas.ScanRequest) (schemas.ScanHistoryResponse, error) {
			status := schemas.ScanStatusQueued
			if loads.Add(1) >= n {
				status = schemas.ScanStatusCompleted
			}
			return schemas.ScanHistoryResponse{Results: []schemas.AnalysisReport{report("a", status)}, Count: 1}, nil
		}
		fetcher.byID = func(_ context.Context, id schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
			return withSummary(report(id.ScanID, schemas.ScanStatusCompleted)), nil
		}
	}

	It("reloads until every scan is terminal", func() {
		finishesAfter(3)
		var snapshots atomic.Int32
		w := scans.NewWatcher(orchestrator, nil)
		w.Interval = 5 * time.Millisecond
		w.StopWhenDone = true
		w.OnReload = func(scans.Snapshot) { snapshots.Add(1) }

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(w.Watch(ctx, repoReq)).To(Succeed())

		Expect(loads.Load()).To(Equal(int32(3)))
		Expect(snapshots.Load()).To(Equal(int32(3)))
		Expect(orchestrator.Store().AnyInProgress()).To(BeFalse())
	})

	It("keeps the page unchanged when auto reload is disabled", func() {
		finishesAfter(100)
		w := scans.NewWatcher(orchestrator, nil)
		w.Interval = 5 * time.Millisecond
		w.AutoReload = false

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(50*time.Millisecond, cancel)
		Expect(w.Watch(ctx, repoReq)).To(Succeed())
		Expect(loads.Load()).To(Equal(int32(1)))
	})

	It("does not reload an empty page", func() {
		fetcher.history = func(context.Context, schemas.ScanRequest) (schemas.ScanHistoryResponse, error) {
			loads.Add(1)
			return schemas.ScanHistoryResponse{Results: []schemas.AnalysisReport{}}, nil
		}
		w := scans.NewWatcher(orchestrator, nil)
		w.Interval = 5 * time.Millisecond

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(50*time.Millisecond, cancel)
		Expect(w.Watch(ctx, repoReq)).To(Succeed())
		Expect(loads.Load()).To(Equal(int32(1)))
	})

	It("returns load failures once stopped", func() {
		failure := errs.New(errs.TypeUnknown, nil, schemas.ErrGetScanHistory)
		fetcher.history = func(context.Context, schemas.ScanRequest) (schemas.ScanHistoryResponse, error) {
			return schemas.ScanHistoryResponse{}, failure
		}
		notifier.EXPECT().HandleException(failure).Return(true)

		w := scans.NewWatcher(orchestrator, nil)
		w.StopWhenDone = true

		err := w.Watch(context.Background(), repoReq)
		Expect(err).To(MatchError(ContainSubstring(schemas.ErrGetScanHistory)))
	})

	It("keeps reloading after a scan detail fails to load", func() {
		failure := errs.New(errs.TypeUnknown, nil, schemas.ErrGetScanByID)
		statusAt := func(n int32) schemas.ScanStatus {
			if n >= 3 {
				return schemas.ScanStatusCompleted
			}
			return schemas.ScanStatusProcessing
		}
		fetcher.history = func(context.Context, schemas.ScanRequest) (schemas.ScanHistoryResponse, error) {
			n := loads.Add(1)
			return schemas.ScanHistoryResponse{Results: []schemas.AnalysisReport{report("a", statusAt(n))}, Count: 1}, nil
		}
		var details atomic.Int32
		fetcher.byID = func(_ context.Context, id schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
			if details.Add(1) == 1 {
				return schemas.AnalysisReport{}, failure
			}
			return withSummary(report(id.ScanID, statusAt(loads.Load()))), nil
		}
		notifier.EXPECT().HandleException(failure).Return(true)

		w := scans.NewWatcher(orchestrator, nil)
		w.Interval = 5 * time.Millisecond
		w.StopWhenDone = true

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(w.Watch(ctx, repoReq)).To(Succeed())

		Expect(ctx.Err()).NotTo(HaveOccurred())
		Expect(loads.Load()).To(Equal(int32(3)))
		Expect(orchestrator.Store().Status()).To(Equal(scans.StatusSucceeded))
		Expect(orchestrator.Store().Err()).NotTo(HaveOccurred())
		Expect(orchestrator.Store().AnyInProgress()).To(BeFalse())
	})

	It("keeps reloading after a page fails to load", func() {
		failure := errs.New(errs.TypeUnknown, nil, schemas.ErrGetScanHistory)
		fetcher.history = func(context.Context, schemas.ScanRequest) (schemas.ScanHistoryResponse, error) {
			switch loads.Add(1) {
			case 1:
				return schemas.ScanHistoryResponse{Results: []schemas.AnalysisReport{report("a", schemas.ScanStatusQueued)}, Count: 1}, nil
			case 2:
				return schemas.ScanHistoryResponse{}, failure
			default:
				return schemas.ScanHistoryResponse{Results: []schemas.AnalysisReport{report("a", schemas.ScanStatusCompleted)}, Count: 1}, nil
			}
		}
		fetcher.byID = func(_ context.Context, id schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
			return withSummary(report(id.ScanID, schemas.ScanStatusCompleted)), nil
		}
		notifier.EXPECT().HandleException(failure).Return(true)

		w := scans.NewWatcher(orchestrator, nil)
		w.Interval = 5 * time.Millisecond
		w.StopWhenDone = true

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := w.Watch(ctx, repoReq)
		Expect(err).To(MatchError(ContainSubstring(schemas.ErrGetScanHistory)))

		Expect(ctx.Err()).NotTo(HaveOccurred())
		Expect(loads.Load()).To(Equal(int32(3)))
		Expect(orchestrator.Store().Status()).To(Equal(scans.StatusSucceeded))
		Expect(orchestrator.Store().AnyInProgress()).To(BeFalse())
	})

	It("rejects a non positive interval", func() {
		w := scans.NewWatcher(orchestrator, nil)
		w.Interval = 0
		Expect(w.Watch(context.Background(), repoReq)).NotTo(Succeed())
	})
})
