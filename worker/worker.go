// The MIT License
//
// Copyright (c) 2020 Temporal Technologies Inc.  All rights reserved.
//
// Copyright (c) 2020 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package worker hosts the decider and activity worker loops for one
// domain/task-list pair, mirroring the teacher's own worker package: a
// small Worker interface (Start/Run/Stop) built on top of an aggregate of
// the two loops, with all the replay/scheduling machinery kept in
// internal.
package worker

import (
	"context"

	"github.com/durableflow/durableflow/internal"
	"github.com/durableflow/durableflow/internal/backoff"
)

// Options configures a Worker; an alias of the internal options type so
// the functional-option constructors below can be shared verbatim.
type Options = internal.WorkerOptions

// Option mutates Options during construction.
type Option = internal.Option

var (
	// WithLogger sets the structured logger every worker component uses.
	WithLogger = internal.WithLogger
	// WithMetricsScope sets the tally scope metrics are emitted on.
	WithMetricsScope = internal.WithMetricsScope
	// WithDataConverter overrides the default JSON DataConverter.
	WithDataConverter = internal.WithDataConverter
	// WithPollBackoff overrides the default poll retry policy.
	WithPollBackoff = internal.WithPollBackoff
	// WithoutWorkflowWorker disables the decider loop.
	WithoutWorkflowWorker = internal.WithoutWorkflowWorker
	// WithoutActivityWorker disables the activity worker loop.
	WithoutActivityWorker = internal.WithoutActivityWorker
)

// RetryPolicy is re-exported so callers configuring WithPollBackoff don't
// need to import the internal backoff package directly.
type RetryPolicy = backoff.RetryPolicy

// NewPollRetryPolicy returns the default poll retry policy (exponential
// backoff with jitter, unbounded attempts -- poll failures are always
// retried, never surfaced as a terminal error).
func NewPollRetryPolicy() RetryPolicy {
	return backoff.NewPollRetryPolicy()
}

// Worker runs the decider and activity worker loops for one
// domain/task-list pair against a shared Transport and Registry.
type Worker interface {
	// Start launches the enabled loops in the background and returns
	// immediately.
	Start(ctx context.Context)
	// Run blocks until the worker is stopped.
	Run()
	// Stop cancels the worker's context and waits for both loops to exit.
	Stop()
}

type aggregateWorker struct {
	transport internal.Transport
	registry  *internal.Registry
	options   Options
	inner     *internal.AggregateWorker
}

// New constructs a Worker for domain/taskList, wiring transport and
// registry through to both the decider and activity worker loops.
func New(transport internal.Transport, registry *internal.Registry, domain, taskList string, opts ...Option) Worker {
	options := internal.NewWorkerOptions(domain, taskList, opts...)
	return &aggregateWorker{
		transport: transport,
		registry:  registry,
		options:   options,
		inner:     internal.NewAggregateWorker(transport, registry, options),
	}
}

func (w *aggregateWorker) Start(ctx context.Context) {
	w.inner.Start(ctx, w.transport, w.registry)
}

func (w *aggregateWorker) Run() {
	w.inner.Run()
}

func (w *aggregateWorker) Stop() {
	w.inner.Stop()
}
