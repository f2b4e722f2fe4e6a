// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package client is a package that provides a client for making HTTP requests
// to the Artemis API. It handles authentication, query building, response
// validation and maps failures to [github.com/crashappsec/artemis/pkg/errors] types.
// Every request honours the context it is given, so cancelling the context
// aborts the request in flight and yields an error for which
// [github.com/crashappsec/artemis/pkg/errors.IsCancelled] is true.
package client

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultUserAgent = "artemis-client"

// Client is a struct that represents a client for making HTTP requests
// to the Artemis API.
type Client struct {
	client  *httpClient
	current CurrentScanStore
}

// NewClient creates a new client for making HTTP requests to the Artemis API.
// baseURL is the base URL of the API, including its namespace
// (e.g. https://artemis.example.com/api). c is an optional http.Client,
// it is copied so options never modify the caller's client.
// Additional options are specified as a list of [Opt]
func NewClient(baseURL string, c *http.Client, opts ...Opt) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	client := &Client{
		client:  newHTTPClient(c, baseURL),
		current: NewMemoryCurrentScanStore(),
	}

	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// Opt is a function that configures A Client.
type Opt func(*Client) error

// APIKeyOpt sets a static API key for the client. The key is sent
// in the [github.com/crashappsec/artemis/pkg/schemas.APIKeyHeader] header
// and is not refreshed.
var APIKeyOpt = func(key string) Opt {
	return func(c *Client) error {
		if key == "" {
			return fmt.Errorf("api key is empty")
		}
		c.client.Transport = &apiKeyTransport{
			base: c.client.Transport,
			retriever: staticKey{
				key: key,
			},
		}
		return nil
	}
}

// APIKeyFileOpt sets the key file for the client. The key is read from the
// contents of the file located at keyFile, and the file is
// read again every refreshDuration.
var APIKeyFileOpt = func(keyFile string, refreshDuration time.Duration) Opt {
	return func(c *Client) error {
		if keyFile == "" {
			return fmt.Errorf("api key file is empty")
		}
		c.client.Transport = &apiKeyTransport{
			base: c.client.Transport,
			retriever: keyFileRetriever{
				file:    keyFile,
				refresh: refreshDuration,
			},
		}
		return nil
	}
}

// UserAgentOpt overrides the User-Agent header sent with each request.
var UserAgentOpt = func(userAgent string) Opt {
	return func(c *Client) error {
		c.client.userAgent = userAgent
		return nil
	}
}

// RateLimitOpt limits the client to rps requests per second with bursts of
// up to burst requests. Requests waiting for the limiter are aborted when
// their context is cancelled.
var RateLimitOpt = func(rps float64, burst int) Opt {
	return func(c *Client) error {
		if rps <= 0 {
			return fmt.Errorf("rate limit must be positive, got %v", rps)
		}
		if burst < 1 {
			burst = 1
		}
		c.client.Transport = &rateLimitTransport{
			base:    c.client.Transport,
			limiter: rate.NewLimiter(rate.Limit(rps), burst),
		}
		return nil
	}
}

// RetryOpt enables retries of idempotent requests that fail with a transport
// error or a 5xx response. Retries use an exponential backoff and stop after
// maxElapsed. A zero maxElapsed disables retries.
var RetryOpt = func(maxElapsed time.Duration) Opt {
	return func(c *Client) error {
		if maxElapsed < 0 {
			return fmt.Errorf("retry duration must not be negative, got %s", maxElapsed)
		}
		c.client.retryMaxElapsed = maxElapsed
		return nil
	}
}

// CurrentScanStoreOpt sets where the client remembers the last queued scan.
// The default keeps it in memory for the lifetime of the client.
var CurrentScanStoreOpt = func(store CurrentScanStore) Opt {
	return func(c *Client) error {
		if store == nil {
			return fmt.Errorf("current scan store is nil")
		}
		c.current = store
		return nil
	}
}
