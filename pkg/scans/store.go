// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package scans

import (
	"slices"
	"sync"

	"github.com/crashappsec/artemis/pkg/schemas"
)

// Status is the load status of a [Store].
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Snapshot is a point in time copy of a [Store].
type Snapshot struct {
	Status       Status                   `json:"status"            yaml:"status"`
	Error        string                   `json:"error,omitempty"   yaml:"error,omitempty"`
	TotalRecords int                      `json:"totalRecords"      yaml:"totalRecords"`
	Scans        []schemas.AnalysisReport `json:"scans"             yaml:"scans"`
}

// Store holds scans keyed by scan id, in insertion order. It is safe for
// concurrent use and copies scans in and out.
type Store struct {
	mu       sync.RWMutex
	ids      []string
	entities map[string]schemas.AnalysisReport
	status   Status
	err      error
	total    int
}

func NewStore() *Store {
	return &Store{
		entities: make(map[string]schemas.AnalysisReport),
		status:   StatusIdle,
	}
}

// Pending marks a request in flight.
func (s *Store) Pending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusLoading
}

// Reject marks the last request failed with err.
func (s *Store) Reject(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusFailed
	s.err = err
}

// SetAll replaces the content of the store with a history page. The error
// of a previous request is cleared.
func (s *Store) SetAll(page []schemas.AnalysisReport, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	for _, scan := range page {
		s.upsertLocked(scan)
	}
	s.total = count
	s.status = StatusSucceeded
}

// UpsertOne inserts or replaces a single scan. The total and the error of a
// previous request are untouched, so a failed sibling fetch stays visible.
func (s *Store) UpsertOne(scan schemas.AnalysisReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(scan)
	s.status = StatusSucceeded
}

// ReplaceWithOne leaves scan as the only content of the store.
func (s *Store) ReplaceWithOne(scan schemas.AnalysisReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.upsertLocked(scan)
	s.total = 1
	s.status = StatusSucceeded
}

// UpsertCurrent inserts or replaces the current scan and sets the total to 1.
func (s *Store) UpsertCurrent(scan schemas.AnalysisReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(scan)
	s.total = 1
	s.status = StatusSucceeded
}

// Clear empties the store and resets it to idle.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.status = StatusIdle
}

func (s *Store) clearLocked() {
	s.ids = nil
	s.entities = make(map[string]schemas.AnalysisReport)
	s.total = 0
	s.err = nil
}

func (s *Store) upsertLocked(scan schemas.AnalysisReport) {
	if _, ok := s.entities[scan.ScanID]; !ok {
		s.ids = append(s.ids, scan.ScanID)
	}
	s.entities[scan.ScanID] = scan.Clone()
}

// All returns the scans in insertion order.
func (s *Store) All() []schemas.AnalysisReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allLocked()
}

func (s *Store) allLocked() []schemas.AnalysisReport {
	scans := make([]schemas.AnalysisReport, 0, len(s.ids))
	for _, id := range s.ids {
		scans = append(scans, s.entities[id].Clone())
	}
	return scans
}

func (s *Store) ByID(id string) (schemas.AnalysisReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scan, ok := s.entities[id]
	if !ok {
		return schemas.AnalysisReport{}, false
	}
	return scan.Clone(), true
}

func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Status:       s.status,
		TotalRecords: s.total,
		Scans:        s.allLocked(),
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}

// AnyInProgress reports whether any stored scan is queued, processing or
// running a plugin.
func (s *Store) AnyInProgress() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, scan := range s.entities {
		if scan.Status.InProgress() {
			return true
		}
	}
	return false
}
