// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package notifications

import (
	"sync"
	"time"

	errs "github.com/crashappsec/artemis/pkg/errors"
	"go.uber.org/zap"
)

// ActionLogin asks the user to authenticate again.
const ActionLogin = "login"

// GlobalException is a failure that blocks the whole application until
// the user acts on it.
type GlobalException struct {
	Message string `json:"message" yaml:"message"`
	Action  string `json:"action"  yaml:"action"`
}

// Handler decides how a failure is surfaced to the user.
type Handler struct {
	queue *Queue

	delay   time.Duration
	onLogin func()

	mu        sync.Mutex
	exception *GlobalException
	timer     *time.Timer
}

type HandlerOpt func(*Handler)

// WithLoginRedirect calls fn once delay has passed after a session expired,
// giving the user time to read the exception.
func WithLoginRedirect(delay time.Duration, fn func()) HandlerOpt {
	return func(h *Handler) {
		h.delay = delay
		h.onLogin = fn
	}
}

func NewHandler(queue *Queue, opts ...HandlerOpt) *Handler {
	if queue == nil {
		queue = NewQueue()
	}
	h := &Handler{queue: queue}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Queue returns the queue notifications are added to.
func (h *Handler) Queue() *Queue {
	return h.queue
}

// Pending returns the notifications of the queue.
func (h *Handler) Pending() []Notification {
	return h.queue.Pending()
}

// Notify adds a notification to the queue.
func (h *Handler) Notify(message string, severity Severity) {
	h.queue.Add(message, severity)
}

// HandleException surfaces err:
//   - an expired session sets the global exception and schedules the login redirect
//   - a cancelled request is dropped
//   - anything else becomes an error notification
//
// It always reports the error as handled.
func (h *Handler) HandleException(err error) bool {
	if err == nil {
		return true
	}

	if errs.IsAuth(err) {
		h.setException(GlobalException{Message: err.Error(), Action: ActionLogin})
		return true
	}

	if errs.IsCancelled(err) {
		zap.L().Debug("ignoring cancelled request", zap.Error(err))
		return true
	}

	h.queue.Add(err.Error(), SeverityError)
	return true
}

func (h *Handler) setException(e GlobalException) {
	h.mu.Lock()
	defer h.mu.Unlock()

	zap.L().Warn("global exception", zap.String("message", e.Message), zap.String("action", e.Action))
	h.exception = &e
	if h.onLogin == nil || h.timer != nil {
		return
	}
	h.timer = time.AfterFunc(h.delay, func() {
		h.mu.Lock()
		h.timer = nil
		h.mu.Unlock()
		h.onLogin()
	})
}

// Exception returns the current global exception, or nil.
func (h *Handler) Exception() *GlobalException {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.exception == nil {
		return nil
	}
	e := *h.exception
	return &e
}

// ClearException removes the global exception and cancels a pending redirect.
func (h *Handler) ClearException() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exception = nil
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}
