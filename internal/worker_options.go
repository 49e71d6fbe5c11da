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

package internal

import (
	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/durableflow/durableflow/internal/backoff"
)

// WorkerOptions configures a Worker. It is a plain struct built through
// functional options, matching the teacher's internal.WorkerOptions shape
// -- a caller-constructed value, not a viper/env-driven config tree (spec
// §1 scopes configuration loading out of core; the worker's only "config"
// is options a caller already has in hand).
type WorkerOptions struct {
	Domain    string
	TaskList  string
	Logger    *zap.Logger
	Scope     tally.Scope
	Converter DataConverter
	PollRetry backoff.RetryPolicy

	// DisableWorkflowWorker/DisableActivityWorker let a process run only
	// one of the two loops, e.g. a dedicated activity-worker fleet.
	DisableWorkflowWorker bool
	DisableActivityWorker bool
}

// Option mutates a WorkerOptions in place.
type Option func(*WorkerOptions)

// WithLogger sets the structured logger every component uses.
func WithLogger(logger *zap.Logger) Option {
	return func(o *WorkerOptions) { o.Logger = logger }
}

// WithMetricsScope sets the tally scope counters/timers are emitted on.
func WithMetricsScope(scope tally.Scope) Option {
	return func(o *WorkerOptions) { o.Scope = scope }
}

// WithDataConverter overrides the default JSON DataConverter.
func WithDataConverter(converter DataConverter) Option {
	return func(o *WorkerOptions) { o.Converter = converter }
}

// WithPollBackoff overrides the default poll retry policy.
func WithPollBackoff(policy backoff.RetryPolicy) Option {
	return func(o *WorkerOptions) { o.PollRetry = policy }
}

// WithoutWorkflowWorker disables the decider loop, leaving only the
// activity worker loop running.
func WithoutWorkflowWorker() Option {
	return func(o *WorkerOptions) { o.DisableWorkflowWorker = true }
}

// WithoutActivityWorker disables the activity worker loop, leaving only
// the decider loop running.
func WithoutActivityWorker() Option {
	return func(o *WorkerOptions) { o.DisableActivityWorker = true }
}

// NewWorkerOptions returns options for domain/taskList with every field
// defaulted, then applies opts in order.
func NewWorkerOptions(domain, taskList string, opts ...Option) WorkerOptions {
	options := WorkerOptions{
		Domain:    domain,
		TaskList:  taskList,
		Logger:    NopLogger(),
		Scope:     NopScope(),
		Converter: DefaultDataConverter,
		PollRetry: backoff.NewPollRetryPolicy(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
