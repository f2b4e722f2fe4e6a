// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/crashappsec/artemis/internal/utils"
	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/schemas"
	"go.uber.org/zap"
)

const retryInitialInterval = 250 * time.Millisecond

type httpClient struct {
	*http.Client
	serverHost      string
	userAgent       string
	retryMaxElapsed time.Duration
}

func newHTTPClient(baseClient *http.Client, host string) *httpClient {
	if baseClient == nil {
		baseClient = http.DefaultClient
	}
	c := *baseClient

	return &httpClient{
		Client:     &c,
		serverHost: host,
		userAgent:  defaultUserAgent,
	}
}

func (c *httpClient) backoff(ctx context.Context, method string) backoff.BackOff {
	if c.retryMaxElapsed <= 0 || method != http.MethodGet {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxElapsedTime = c.retryMaxElapsed
	return backoff.WithContext(b, ctx)
}

// noContent is used as the response type of requests whose body is ignored.
type noContent struct{}

// statusError is returned for any response with a status code of 400 or above.
type statusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected response status %d", e.StatusCode)
}

// StatusText returns the reason phrase of the response, falling back to
// the standard text for the status code.
func (e *statusError) StatusText() string {
	text := strings.TrimSpace(strings.TrimPrefix(e.Status, fmt.Sprint(e.StatusCode)))
	if text == "" {
		text = http.StatusText(e.StatusCode)
	}
	return text
}

type errorBody struct {
	Message string                    `json:"message"`
	Failed  []schemas.ScanQueueFailed `json:"failed"`
}

func (e *statusError) body() errorBody {
	var b errorBody
	if len(e.Body) > 0 {
		_ = json.Unmarshal(e.Body, &b)
	}
	return b
}

func do[Resp any](
	ctx context.Context,
	c *httpClient,
	method string,
	path string,
	meta *RequestMeta,
	payload any,
) (Resp, error) {
	requestURL := buildURL(c.serverHost, path, meta)

	var payloadBytes []byte
	if payload != nil {
		var err error
		payloadBytes, err = json.Marshal(payload)
		if err != nil {
			var zero Resp
			return zero, fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	l := zap.L().With(zap.String("method", method), zap.String("url", requestURL))
	attempt := func() (Resp, error) {
		return doOnce[Resp](ctx, c, method, requestURL, payloadBytes)
	}
	notify := func(err error, wait time.Duration) {
		l.Debug("retrying request", zap.Error(err), zap.Duration("wait", wait))
	}

	return backoff.RetryNotifyWithData(attempt, c.backoff(ctx, method), notify)
}

// doOnce performs a single request. Errors that must not be retried are
// wrapped with [backoff.Permanent].
func doOnce[Resp any](
	ctx context.Context,
	c *httpClient,
	method string,
	requestURL string,
	payload []byte,
) (Resp, error) {
	var zero Resp
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return zero, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	respHTTP, err := c.Do(req)
	if err != nil {
		return zero, transportError(ctx, fmt.Errorf("failed to do request: %w", err))
	}
	defer utils.CloseAndLog(respHTTP.Body, "failed to close response body", zap.String("url", requestURL))

	data, err := io.ReadAll(respHTTP.Body)
	if err != nil {
		return zero, transportError(ctx, fmt.Errorf("failed to read response: %w", err))
	}

	if respHTTP.StatusCode >= http.StatusBadRequest {
		se := &statusError{
			StatusCode: respHTTP.StatusCode,
			Status:     respHTTP.Status,
			Body:       data,
		}
		if respHTTP.StatusCode >= http.StatusInternalServerError {
			return zero, se
		}
		return zero, backoff.Permanent(se)
	}

	resp, err := decode[Resp](data)
	if err != nil {
		return zero, backoff.Permanent(err)
	}
	return resp, nil
}

// transportError marks err as permanent when the context is done, so a
// cancelled or expired request is never retried.
func transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return backoff.Permanent(err)
	}
	return err
}

func decode[Resp any](data []byte) (Resp, error) {
	var resp Resp
	if _, ok := any(resp).(noContent); ok {
		return resp, nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		zap.L().Warn("unexpected response format: empty body")
		return resp, errs.New(errs.TypeValidation, nil, schemas.ErrUnexpectedFormat)
	}

	if err := json.Unmarshal(data, &resp); err != nil {
		zap.L().Warn("unexpected response format", zap.Error(err))
		return resp, errs.New(errs.TypeValidation, err, schemas.ErrUnexpectedFormat)
	}

	if err := schemas.Validate(resp); err != nil {
		zap.L().Warn("unexpected response format", zap.Error(err))
		return resp, errs.New(errs.TypeValidation, err, schemas.ErrUnexpectedFormat)
	}

	return resp, nil
}
