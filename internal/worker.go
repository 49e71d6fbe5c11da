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
	"context"
	"sync"

	"go.uber.org/zap"
)

// AggregateWorker runs the decider and activity worker loops for one
// domain/task-list pair, following the teacher's Worker.Start/Run/Stop
// split (worker/worker.go): Start launches both loops as goroutines and
// returns immediately, Run blocks until every started loop has exited
// (which Stop brings about), Stop cancels the shared context so an in-flight long-poll
// unblocks promptly (spec §5).
type AggregateWorker struct {
	options WorkerOptions
	decider *Decider
	activity *ActivityWorker

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewAggregateWorker wires a Decider and an ActivityWorker against the
// same transport and registry.
func NewAggregateWorker(transport Transport, registry *Registry, options WorkerOptions) *AggregateWorker {
	return &AggregateWorker{
		options: options,
		decider: &Decider{
			Domain: options.Domain, TaskList: options.TaskList,
			Transport: transport, Registry: registry,
			Converter: options.Converter, Logger: options.Logger,
			Scope: options.Scope, PollRetry: options.PollRetry,
		},
		activity: &ActivityWorker{
			Domain: options.Domain, TaskList: options.TaskList,
			Transport: transport, Registry: registry,
			Converter: options.Converter, Logger: options.Logger,
			Scope: options.Scope, PollRetry: options.PollRetry,
		},
	}
}

// Start registers every queued type (fatal on ConfigurationDivergence) and
// launches the enabled loops in the background.
func (w *AggregateWorker) Start(ctx context.Context, transport Transport, registry *Registry) {
	registry.Sync(w.options.Domain, transport, w.options.Logger)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	var wg sync.WaitGroup
	if !w.options.DisableWorkflowWorker {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.decider.Run(runCtx); err != nil && runCtx.Err() == nil {
				w.logger().Error("decider loop exited", zap.Error(err))
			}
		}()
	}
	if !w.options.DisableActivityWorker {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.activity.Run(runCtx); err != nil && runCtx.Err() == nil {
				w.logger().Error("activity worker loop exited", zap.Error(err))
			}
		}()
	}
	go func() {
		wg.Wait()
		close(w.done)
	}()
}

// Run blocks until both loops have exited (normally only after Stop).
func (w *AggregateWorker) Run() {
	if w.done == nil {
		return
	}
	<-w.done
}

// Stop cancels the shared context and waits for both loops to exit.
func (w *AggregateWorker) Stop() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
	})
	w.Run()
}

func (w *AggregateWorker) logger() *zap.Logger {
	if w.options.Logger == nil {
		return NopLogger()
	}
	return w.options.Logger
}
