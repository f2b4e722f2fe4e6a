// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package notifications holds the messages shown to the user and the global
// exception raised when the session has expired.
package notifications

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Notification is a message for the user.
type Notification struct {
	ID       uuid.UUID `json:"id"       yaml:"id"`
	Message  string    `json:"message"  yaml:"message"`
	Severity Severity  `json:"severity" yaml:"severity"`
	Created  time.Time `json:"created"  yaml:"created"`
}

// Queue is an ordered set of notifications. Notifications are unique by
// message: adding a message that is already pending updates it in place.
// It is safe for concurrent use.
type Queue struct {
	mu    sync.RWMutex
	items []Notification
}

func NewQueue() *Queue {
	return &Queue{}
}

// Add enqueues message. An empty severity is an error.
func (q *Queue) Add(message string, severity Severity) Notification {
	if severity == "" {
		severity = SeverityError
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	l := zap.L().With(zap.String("message", message), zap.String("severity", string(severity)))
	if i := slices.IndexFunc(q.items, func(n Notification) bool { return n.Message == message }); i >= 0 {
		q.items[i].Severity = severity
		q.items[i].Created = time.Now()
		l.Debug("notification updated", zap.Stringer("id", q.items[i].ID))
		return q.items[i]
	}

	n := Notification{
		ID:       uuid.New(),
		Message:  message,
		Severity: severity,
		Created:  time.Now(),
	}
	q.items = append(q.items, n)
	l.Info("notification added", zap.Stringer("id", n.ID))
	return n
}

// Pending returns the notifications in the order they were added.
func (q *Queue) Pending() []Notification {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return slices.Clone(q.items)
}

// Dismiss removes the notification with the given id. It returns false
// when there is no such notification.
func (q *Queue) Dismiss(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	before := len(q.items)
	q.items = slices.DeleteFunc(q.items, func(n Notification) bool { return n.ID == id })
	return len(q.items) != before
}

func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}
