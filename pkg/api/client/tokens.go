// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package client

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/crashappsec/artemis/pkg/schemas"
)

type keyRetriever interface {
	GetKey() (string, time.Time, error)
}

type staticKey struct {
	key string
}

func (s staticKey) GetKey() (string, time.Time, error) {
	return s.key, time.Time{}, nil
}

type keyFileRetriever struct {
	file    string
	refresh time.Duration
}

func (k keyFileRetriever) GetKey() (string, time.Time, error) {
	data, err := os.ReadFile(k.file)
	if err != nil {
		return "", time.Time{}, err
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", time.Time{}, fmt.Errorf("api key file %s is empty", k.file)
	}
	return key, time.Now().Add(k.refresh), nil
}

// apiKeyTransport sets the API key header on every request.
type apiKeyTransport struct {
	key       string
	nextCheck time.Time
	base      http.RoundTripper
	mu        sync.Mutex
	retriever keyRetriever
}

func (t *apiKeyTransport) currentKey() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.key == "" || time.Now().After(t.nextCheck) {
		key, nextCheck, err := t.retriever.GetKey()
		if err != nil {
			return "", err
		}
		t.key = key
		t.nextCheck = nextCheck
	}
	return t.key, nil
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	key, err := t.currentKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	req = req.Clone(req.Context())
	req.Header.Set(schemas.APIKeyHeader, key)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
