// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CurrentScanStore remembers the URI of the last scan queued by the client,
// e.g. "/github/org/repo/<scan id>". Get returns an empty string when no
// scan has been queued.
type CurrentScanStore interface {
	Get() (string, error)
	Set(uri string) error
}

// MemoryCurrentScanStore keeps the current scan for the lifetime of the process.
type MemoryCurrentScanStore struct {
	mu  sync.RWMutex
	uri string
}

func NewMemoryCurrentScanStore() *MemoryCurrentScanStore {
	return &MemoryCurrentScanStore{}
}

func (m *MemoryCurrentScanStore) Get() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uri, nil
}

func (m *MemoryCurrentScanStore) Set(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uri = uri
	return nil
}

// FileCurrentScanStore keeps the current scan in a file so it survives
// between invocations of the CLI. The value is cached after the first read.
type FileCurrentScanStore struct {
	mu     sync.Mutex
	path   string
	cached *string
}

func NewFileCurrentScanStore(path string) *FileCurrentScanStore {
	return &FileCurrentScanStore{path: path}
}

func (f *FileCurrentScanStore) Get() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != nil {
		return *f.cached, nil
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read current scan file: %w", err)
	}
	uri := strings.TrimSpace(string(data))
	f.cached = &uri
	return uri, nil
}

func (f *FileCurrentScanStore) Set(uri string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create current scan directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(uri+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write current scan file: %w", err)
	}
	f.cached = &uri
	return nil
}
