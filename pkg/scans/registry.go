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
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrAborted is the cancellation cause of a batch that was aborted.
	ErrAborted = errors.New("batch aborted")
	// errReleased is the cancellation cause of a coordinator that was
	// released with no task sharing it.
	errReleased = errors.New("batch released")
)

// Coordinator is the cancellation handle shared by every task of a batch.
type Coordinator struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	aborted atomic.Bool
}

func newCoordinator(parent context.Context) *Coordinator {
	ctx, cancel := context.WithCancelCause(parent)
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is done once the coordinator is aborted or released.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Aborted reports whether abort was signalled to the tasks of the batch.
func (c *Coordinator) Aborted() bool {
	return c.aborted.Load()
}

func (c *Coordinator) abort() {
	c.aborted.Store(true)
	c.cancel(ErrAborted)
}

func (c *Coordinator) release() {
	c.cancel(errReleased)
}

// Task is a background detail fetch. Its context derives from its batch
// coordinator, so it is cancelled alone or together with the batch.
type Task struct {
	key         string
	coordinator *Coordinator

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTask creates a task of the batch c, keyed by key.
func NewTask(c *Coordinator, key string) *Task {
	ctx, cancel := context.WithCancel(c.ctx)
	return &Task{
		key:         key,
		coordinator: c,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

func (t *Task) Key() string {
	return t.key
}

func (t *Task) Context() context.Context {
	return t.ctx
}

// Cancel aborts the task alone.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed once the task has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) finish() {
	t.cancel()
	close(t.done)
}

// Registry tracks the running tasks by composite scan key and the live
// batch coordinator. At most one coordinator is live at a time.
type Registry struct {
	parent context.Context

	mu          sync.Mutex
	tasks       map[string]*Task
	coordinator *Coordinator
}

// NewRegistry returns an empty registry. Coordinators derive from parent.
func NewRegistry(parent context.Context) *Registry {
	if parent == nil {
		parent = context.Background()
	}
	return &Registry{
		parent: parent,
		tasks:  make(map[string]*Task),
	}
}

// Register inserts or overwrites the task under key.
func (r *Registry) Register(key string, t *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[key] = t
}

// Remove deletes the entry under key if it is still t. The coordinator is
// released once the last task is removed.
func (r *Registry) Remove(key string, t *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tasks[key] != t {
		return
	}
	delete(r.tasks, key)
	if len(r.tasks) == 0 && r.coordinator != nil {
		r.coordinator.release()
		r.coordinator = nil
	}
}

// CancelAll cancels and removes every registered task. When tasks were
// registered the live coordinator is aborted, an idle one is released
// silently.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelAllLocked()
}

func (r *Registry) cancelAllLocked() {
	n := len(r.tasks)
	for key, t := range r.tasks {
		t.Cancel()
		delete(r.tasks, key)
	}

	if r.coordinator == nil {
		return
	}
	if n > 0 {
		zap.L().Debug("aborting batch", zap.Int("tasks", n))
		r.coordinator.abort()
	} else {
		r.coordinator.release()
	}
	r.coordinator = nil
}

// NewBatch cancels everything and installs a new coordinator.
func (r *Registry) NewBatch() *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelAllLocked()
	r.coordinator = newCoordinator(r.parent)
	return r.coordinator
}

// Commit runs fn while t is still registered and not cancelled. It holds
// the lock CancelAll takes, so once CancelAll returns no task it cancelled
// can commit. It reports whether fn ran.
func (r *Registry) Commit(t *Task, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tasks[t.key] != t || t.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// Coordinator returns the live coordinator, or nil.
func (r *Registry) Coordinator() *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coordinator
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Keys returns the registered keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.tasks))
	for k := range r.tasks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
