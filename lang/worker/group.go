// Copyright 2023 The PETSc Developers
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package worker runs per-source-file jobs with bounded concurrency.
package worker

import (
	"context"
	"sync"

	"github.com/coreos/pkg/multierror"
	"github.com/pkg/errors"
)

// Worker is a function that Group will run in a new goroutine.
type Worker func(context.Context) error

// Group is similar in principle to sync.WaitGroup but manages the
// Workers itself. At most limit workers run at once. Each worker is
// registered under a name, usually the source file it processes, and
// its error is reported with that name.
//
// By default the first failure cancels the group's context so queued
// work is abandoned. A group created with KeepGoing lets the remaining
// workers run and collects every error.
type Group struct {
	ctx       context.Context
	cancel    context.CancelFunc
	limit     chan struct{}
	keepGoing bool

	mu     sync.Mutex
	errors multierror.Error
}

// Option configures a Group.
type Option func(*Group)

// KeepGoing stops a failing worker from canceling the others.
func KeepGoing(keep bool) Option {
	return func(g *Group) { g.keepGoing = keep }
}

// NewGroup creates a new group running at most limit workers at a time.
// A limit below one means one.
func NewGroup(ctx context.Context, limit int, opts ...Option) *Group {
	if limit < 1 {
		limit = 1
	}
	g := Group{limit: make(chan struct{}, limit)}
	g.ctx, g.cancel = context.WithCancel(ctx)
	for _, opt := range opts {
		opt(&g)
	}
	return &g
}

func (g *Group) addErr(name string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errors = append(g.errors, errors.Wrap(err, name))
	if !g.keepGoing {
		g.cancel()
	}
}

func (g *Group) getErr() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.errors.AsError()
}

// Start launches a new worker, blocking if too many workers are
// already running. An error indicates the group's context is closed.
func (g *Group) Start(name string, worker Worker) error {
	// check for cancellation before waiting on a worker slot
	select {
	default:
	case <-g.ctx.Done():
		return g.ctx.Err()
	}
	select {
	case g.limit <- struct{}{}:
		go func() {
			if err := worker(g.ctx); err != nil {
				g.addErr(name, err)
			}
			<-g.limit
		}()
		return nil
	case <-g.ctx.Done():
		return g.ctx.Err()
	}
}

// Wait blocks until all running workers have finished. An error
// indicates if at least one worker returned an error.
func (g *Group) Wait() error {
	defer g.cancel()
	for i := 0; i < cap(g.limit); i++ {
		g.limit <- struct{}{}
	}
	return g.getErr()
}

// WaitError is Wait with a default error value that will be returned
// if no worker failed.
//
//	if err := g.Start(name, worker); err != nil {
//		return g.WaitError(err)
//	}
func (g *Group) WaitError(err error) error {
	if werr := g.Wait(); werr != nil {
		return werr
	}
	return err
}
