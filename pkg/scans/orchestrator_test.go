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
	"fmt"
	"sync/atomic"
	"time"

	mocks "github.com/crashappsec/artemis/internal/unittest/mocks/pkg/scans"
	"github.com/crashappsec/artemis/pkg/api/client"
	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/notifications"
	"github.com/crashappsec/artemis/pkg/scans"
	"github.com/crashappsec/artemis/pkg/schemas"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"k8s.io/utils/ptr"
)

func withSummary(r schemas.AnalysisReport) schemas.AnalysisReport {
	r.Success = ptr.To(true)
	r.ResultsSummary = &schemas.ResultsSummary{
		Secrets:         ptr.To(3),
		Vulnerabilities: schemas.SeverityLevels{schemas.SeverityHigh: 1},
	}
	r.Errors = schemas.ScanMessages{"trivy": "timeout"}
	r.ApplicationMetadata = map[string]any{"owner": "appsec"}
	r.Results = schemas.ScanResults{"secret": []any{"leak"}}
	return r
}

// blockedHistory serves page once release is closed, whether or not the
// request was cancelled meanwhile.
func blockedHistory(entered chan<- struct{}, release <-chan struct{}, results ...schemas.AnalysisReport) func(context.Context, schemas.ScanRequest) (schemas.ScanHistoryResponse, error) {
	return func(context.Context, schemas.ScanRequest) (schemas.ScanHistoryResponse, error) {
		close(entered)
		<-release
		return schemas.ScanHistoryResponse{Results: results, Count: len(results)}, nil
	}
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx          context.Context
		ctrl         *gomock.Controller
		notifier     *mocks.MockNotifier
		fetcher      *fakeFetcher
		orchestrator *scans.Orchestrator
	)

	BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(GinkgoT())
		notifier = mocks.NewMockNotifier(ctrl)
		fetcher = &fakeFetcher{}

		var err error
		orchestrator, err = scans.New(fetcher, notifier, scans.BatchSizeOpt(4))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		orchestrator.Registry().CancelAll()
		orchestrator.Wait()
	})

	Describe("New", func() {
		It("requires a fetcher and a notifier", func() {
			_, err := scans.New(nil, notifier)
			Expect(err).To(HaveOccurred())
			_, err = scans.New(fetcher, nil)
			Expect(err).To(HaveOccurred())
			_, err = scans.New(fetcher, notifier, scans.BatchSizeOpt(0))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetScanHistory", func() {
		It("fetches only scans that are not queued", func() {
			fetcher.history = page(
				report("a", schemas.ScanStatusCompleted),
				report("b", schemas.ScanStatusQueued),
			)
			fetcher.byID = func(_ context.Context, id schemas.ScanID, meta *client.RequestMeta) (schemas.AnalysisReport, error) {
				Expect(meta.Query().Get("format")).To(Equal("summary"))
				return withSummary(report(id.ScanID, schemas.ScanStatusCompleted)), nil
			}

			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())
			orchestrator.Wait()

			Expect(fetcher.ByIDCalls()).To(Equal([]string{key("a")}))
			store := orchestrator.Store()
			Expect(store.IDs()).To(Equal([]string{"a", "b"}))
			Expect(store.Total()).To(Equal(2))
			Expect(store.Status()).To(Equal(scans.StatusSucceeded))

			a, _ := store.ByID("a")
			Expect(a.HasSummary()).To(BeTrue())
			b, _ := store.ByID("b")
			Expect(b).To(Equal(report("b", schemas.ScanStatusQueued)))
			Expect(orchestrator.Registry().Len()).To(BeZero())
		})

		It("reuses the cached summary while the status is unchanged", func() {
			fetcher.history = page(report("a", schemas.ScanStatusCompleted))
			fetcher.byID = func(_ context.Context, id schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
				return withSummary(report(id.ScanID, schemas.ScanStatusCompleted)), nil
			}
			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())
			orchestrator.Wait()
			Expect(fetcher.ByIDCalls()).To(HaveLen(1))

			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())
			orchestrator.Wait()
			Expect(fetcher.ByIDCalls()).To(HaveLen(1))

			a, ok := orchestrator.Store().ByID("a")
			Expect(ok).To(BeTrue())
			cached := withSummary(report("a", schemas.ScanStatusCompleted))
			Expect(a.Success).To(Equal(cached.Success))
			Expect(a.ResultsSummary).To(Equal(cached.ResultsSummary))
			Expect(a.Errors).To(Equal(cached.Errors))
			Expect(a.ApplicationMetadata).To(Equal(cached.ApplicationMetadata))
			Expect(a.Results).To(BeNil(), "full results are never copied")
		})

		It("fetches again once the status changes", func() {
			status := schemas.ScanStatus("running plugin 1 of 4")
			fetcher.history = func(context.Context, schemas.ScanRequest) (schemas.ScanHistoryResponse, error) {
				return schemas.ScanHistoryResponse{Results: []schemas.AnalysisReport{report("a", status)}, Count: 1}, nil
			}
			fetcher.byID = func(_ context.Context, id schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
				return withSummary(report(id.ScanID, status)), nil
			}

			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())
			orchestrator.Wait()
			status = schemas.ScanStatusCompleted
			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())
			orchestrator.Wait()

			Expect(fetcher.ByIDCalls()).To(Equal([]string{key("a"), key("a")}))
			a, _ := orchestrator.Store().ByID("a")
			Expect(a.Status).To(Equal(schemas.ScanStatusCompleted))
		})

		It("aborts the previous batch before registering the next one", func() {
			firstCtx := make(chan context.Context, 1)
			observed := make(chan []string, 1)
			var firstBatch *scans.Coordinator

			fetcher.history = page(report("c", schemas.ScanStatusProcessing))
			fetcher.byID = func(ctx context.Context, id schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
				if id.ScanID == "c" {
					firstCtx <- ctx
					<-ctx.Done()
					return schemas.AnalysisReport{}, cancelled(ctx)
				}
				Expect(firstBatch.Aborted()).To(BeTrue())
				observed <- orchestrator.Registry().Keys()
				return withSummary(report(id.ScanID, schemas.ScanStatusCompleted)), nil
			}

			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())
			firstBatch = orchestrator.Registry().Coordinator()
			Expect(firstBatch).NotTo(BeNil())
			var c context.Context
			Eventually(firstCtx).Should(Receive(&c))

			fetcher.history = page(report("d", schemas.ScanStatusProcessing))
			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())

			Expect(c.Err()).To(MatchError(context.Canceled))
			var keys []string
			Eventually(observed).Should(Receive(&keys))
			Expect(keys).To(Equal([]string{key("d")}))

			orchestrator.Wait()
			Expect(orchestrator.Store().IDs()).To(Equal([]string{"d"}))
			Expect(orchestrator.Store().Err()).NotTo(HaveOccurred())
		})

		It("never surfaces a cancelled detail fetch", func() {
			started := make(chan struct{})
			fetcher.history = page(report("a", schemas.ScanStatusProcessing))
			fetcher.byID = func(ctx context.Context, _ schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
				close(started)
				<-ctx.Done()
				return schemas.AnalysisReport{}, cancelled(ctx)
			}

			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())
			Eventually(started).Should(BeClosed())
			Expect(orchestrator.Registry().Keys()).To(Equal([]string{key("a")}))

			orchestrator.Registry().CancelAll()
			orchestrator.Wait()

			Expect(orchestrator.Registry().Len()).To(BeZero())
			Expect(orchestrator.Store().Err()).NotTo(HaveOccurred())
			Expect(orchestrator.Store().Status()).To(Equal(scans.StatusSucceeded))
			a, _ := orchestrator.Store().ByID("a")
			Expect(a.HasSummary()).To(BeFalse())
		})

		It("isolates a failed detail fetch from its siblings", func() {
			failure := errs.New(errs.TypeNotFound, nil, schemas.ErrNotFound)
			fetcher.history = page(
				report("a", schemas.ScanStatusCompleted),
				report("b", schemas.ScanStatusCompleted),
			)
			fetcher.byID = func(_ context.Context, id schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
				if id.ScanID == "a" {
					return schemas.AnalysisReport{}, failure
				}
				return withSummary(report(id.ScanID, schemas.ScanStatusCompleted)), nil
			}
			notifier.EXPECT().HandleException(failure).Return(true).Times(1)

			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())
			orchestrator.Wait()

			Expect(orchestrator.Store().Err()).To(MatchError(failure))
			b, _ := orchestrator.Store().ByID("b")
			Expect(b.HasSummary()).To(BeTrue())
		})

		It("rejects the store when the page cannot be loaded", func() {
			failure := errs.New(errs.TypeUnauthorized, nil, schemas.ErrSessionExpired)
			fetcher.history = func(context.Context, schemas.ScanRequest) (schemas.ScanHistoryResponse, error) {
				return schemas.ScanHistoryResponse{}, failure
			}
			notifier.EXPECT().HandleException(failure).Return(true)

			err := orchestrator.GetScanHistory(ctx, repoReq, nil)
			Expect(err).To(MatchError(failure))
			Expect(orchestrator.Store().Status()).To(Equal(scans.StatusFailed))
			Expect(orchestrator.Registry().Coordinator()).To(BeNil())
		})

		It("cancels an older page request in flight", func() {
			waiting := make(chan struct{})
			fetcher.history = func(ctx context.Context, _ schemas.ScanRequest) (schemas.ScanHistoryResponse, error) {
				close(waiting)
				<-ctx.Done()
				return schemas.ScanHistoryResponse{}, cancelled(ctx)
			}

			result := make(chan error, 1)
			go func() {
				result <- orchestrator.GetScanHistory(ctx, repoReq, nil)
			}()
			Eventually(waiting).Should(BeClosed())

			fetcher.history = page(report("b", schemas.ScanStatusQueued))
			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())

			var err error
			Eventually(result).Should(Receive(&err))
			Expect(errs.IsCancelled(err)).To(BeTrue())
			Expect(orchestrator.Store().IDs()).To(Equal([]string{"b"}))
			Expect(orchestrator.Store().Status()).To(Equal(scans.StatusSucceeded))
		})

		It("bounds the number of concurrent detail fetches", func() {
			var running, peak atomic.Int32
			var results []schemas.AnalysisReport
			for i := range 12 {
				results = append(results, report(fmt.Sprintf("s%d", i), schemas.ScanStatusCompleted))
			}
			fetcher.history = page(results...)
			fetcher.byID = func(_ context.Context, id schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				return withSummary(report(id.ScanID, schemas.ScanStatusCompleted)), nil
			}

			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())
			orchestrator.Wait()

			Expect(fetcher.ByIDCalls()).To(HaveLen(12))
			Expect(peak.Load()).To(BeNumerically("<=", 4))
			Expect(orchestrator.Store().IDs()).To(HaveLen(12))
		})
	})

	Describe("CancelAll", func() {
		It("is a no-op on an empty registry", func() {
			Expect(orchestrator.Registry().CancelAll).NotTo(Panic())
			Expect(orchestrator.Registry().Len()).To(BeZero())
			Expect(orchestrator.Store().Status()).To(Equal(scans.StatusIdle))
		})
	})

	Describe("AddScan", func() {
		form := schemas.ScanOptionsForm{VcsOrg: "github/crashappsec", Repo: "artemis"}

		It("replaces the store with the queued scan", func() {
			fetcher.history = page(report("a", schemas.ScanStatusQueued), report("b", schemas.ScanStatusQueued))
			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())

			fetcher.add = func(context.Context, schemas.ScanOptionsForm) (schemas.AnalysisReport, error) {
				return report("new", schemas.ScanStatusQueued), nil
			}
			notifier.EXPECT().Notify(scans.MessageScanStarted, notifications.SeveritySuccess)

			scan, err := orchestrator.AddScan(ctx, form)
			Expect(err).NotTo(HaveOccurred())
			Expect(scan.ScanID).To(Equal("new"))
			Expect(orchestrator.Store().IDs()).To(Equal([]string{"new"}))
			Expect(orchestrator.Store().Total()).To(Equal(1))
		})

		It("drops a history page still in flight", func() {
			entered, release := make(chan struct{}), make(chan struct{})
			fetcher.history = blockedHistory(entered, release, report("old", schemas.ScanStatusQueued))
			historyErr := make(chan error, 1)
			go func() { historyErr <- orchestrator.GetScanHistory(ctx, repoReq, nil) }()
			Eventually(entered).Should(BeClosed())

			fetcher.add = func(context.Context, schemas.ScanOptionsForm) (schemas.AnalysisReport, error) {
				return report("new", schemas.ScanStatusQueued), nil
			}
			notifier.EXPECT().Notify(scans.MessageScanStarted, notifications.SeveritySuccess)
			_, err := orchestrator.AddScan(ctx, form)
			Expect(err).NotTo(HaveOccurred())

			close(release)
			var herr error
			Eventually(historyErr).Should(Receive(&herr))
			Expect(errs.IsCancelled(herr)).To(BeTrue())
			Expect(orchestrator.Store().IDs()).To(Equal([]string{"new"}))
			Expect(orchestrator.Store().Total()).To(Equal(1))
		})

		It("handles a failure", func() {
			failure := errs.New(errs.TypeBadRequest, nil, "%s", "repo not found")
			fetcher.add = func(context.Context, schemas.ScanOptionsForm) (schemas.AnalysisReport, error) {
				return schemas.AnalysisReport{}, failure
			}
			notifier.EXPECT().HandleException(failure).Return(true)

			_, err := orchestrator.AddScan(ctx, form)
			Expect(err).To(MatchError(failure))
			Expect(orchestrator.Store().Status()).To(Equal(scans.StatusFailed))
		})
	})

	Describe("ClearScans", func() {
		It("aborts the batch and empties the store", func() {
			started := make(chan struct{})
			fetcher.history = page(report("a", schemas.ScanStatusProcessing))
			fetcher.byID = func(ctx context.Context, _ schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
				close(started)
				<-ctx.Done()
				return schemas.AnalysisReport{}, cancelled(ctx)
			}
			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())
			Eventually(started).Should(BeClosed())
			batch := orchestrator.Registry().Coordinator()

			orchestrator.ClearScans()
			orchestrator.Wait()

			Expect(batch.Aborted()).To(BeTrue())
			store := orchestrator.Store()
			Expect(store.IDs()).To(BeEmpty())
			Expect(store.Total()).To(BeZero())
			Expect(store.Status()).To(Equal(scans.StatusIdle))
			Expect(store.Err()).NotTo(HaveOccurred())
		})

		It("drops a history page still in flight", func() {
			entered, release := make(chan struct{}), make(chan struct{})
			fetcher.history = blockedHistory(entered, release, report("old", schemas.ScanStatusQueued))
			historyErr := make(chan error, 1)
			go func() { historyErr <- orchestrator.GetScanHistory(ctx, repoReq, nil) }()
			Eventually(entered).Should(BeClosed())

			orchestrator.ClearScans()
			close(release)

			var herr error
			Eventually(historyErr).Should(Receive(&herr))
			Expect(errs.IsCancelled(herr)).To(BeTrue())
			Expect(orchestrator.Store().IDs()).To(BeEmpty())
			Expect(orchestrator.Store().Status()).To(Equal(scans.StatusIdle))
		})
	})

	Describe("GetCurrentScan", func() {
		It("stores the current scan with a total of one", func() {
			fetcher.history = page(report("a", schemas.ScanStatusQueued), report("b", schemas.ScanStatusQueued))
			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())

			fetcher.current = func(context.Context) (schemas.AnalysisReport, error) {
				return report("a", schemas.ScanStatusProcessing), nil
			}
			scan, err := orchestrator.GetCurrentScan(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(scan.Status).To(Equal(schemas.ScanStatusProcessing))
			Expect(orchestrator.Store().Total()).To(Equal(1))
			a, _ := orchestrator.Store().ByID("a")
			Expect(a.Status).To(Equal(schemas.ScanStatusProcessing))
		})

		It("surfaces a missing current scan", func() {
			failure := errs.New(errs.TypeNotFound, nil, schemas.ErrNoCurrentScan)
			fetcher.current = func(context.Context) (schemas.AnalysisReport, error) {
				return schemas.AnalysisReport{}, failure
			}
			notifier.EXPECT().HandleException(failure).Return(true)

			_, err := orchestrator.GetCurrentScan(ctx)
			Expect(errs.IsType(err, errs.TypeNotFound)).To(BeTrue())
		})
	})

	Describe("GetScanByID", func() {
		It("upserts the scan without touching the total", func() {
			fetcher.history = page(report("a", schemas.ScanStatusQueued), report("b", schemas.ScanStatusQueued))
			Expect(orchestrator.GetScanHistory(ctx, repoReq, nil)).To(Succeed())

			fetcher.byID = func(_ context.Context, id schemas.ScanID, meta *client.RequestMeta) (schemas.AnalysisReport, error) {
				Expect(meta).To(BeNil())
				return withSummary(report(id.ScanID, schemas.ScanStatusCompleted)), nil
			}
			id := schemas.ScanID{Service: "github", Repo: "crashappsec/artemis", ScanID: "b"}
			scan, err := orchestrator.GetScanByID(ctx, id, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(scan.Results).NotTo(BeEmpty())
			Expect(orchestrator.Store().Total()).To(Equal(2))
			b, _ := orchestrator.Store().ByID("b")
			Expect(b.Status).To(Equal(schemas.ScanStatusCompleted))
		})

		It("does not surface a cancelled request", func() {
			reqCtx, cancel := context.WithCancel(ctx)
			fetcher.byID = func(ctx context.Context, _ schemas.ScanID, _ *client.RequestMeta) (schemas.AnalysisReport, error) {
				cancel()
				return schemas.AnalysisReport{}, cancelled(ctx)
			}

			_, err := orchestrator.GetScanByID(reqCtx, schemas.ScanID{Service: "github", Repo: "o/r", ScanID: "x"}, nil)
			Expect(errs.IsCancelled(err)).To(BeTrue())
			Expect(orchestrator.Store().Err()).NotTo(HaveOccurred())
		})
	})
})
