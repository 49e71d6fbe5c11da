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

	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/durableflow/durableflow/internal/backoff"
)

// ActivityHandle is passed to every ActivityFunc invocation. Heartbeat
// answers the open question spec §9 leaves implicit: the source never
// consults the heartbeat call's boolean result, but its intent --
// cooperative cancellation -- is surfaced here so activity code can poll
// it during long-running work.
type ActivityHandle struct {
	transport Transport
	taskToken string
}

// Heartbeat records liveness with the server and reports whether the
// activity should keep running. false means the server requested
// cancellation; the activity function should wind down and return.
func (h *ActivityHandle) Heartbeat() bool {
	shouldContinue, err := h.transport.RecordActivityTaskHeartbeat(h.taskToken)
	if err != nil {
		return true
	}
	return shouldContinue
}

// ActivityWorker runs the stateless activity poll/invoke/complete loop
// (§4.H): no replay, no history, just "run this function, report the
// outcome".
type ActivityWorker struct {
	Domain    string
	TaskList  string
	Transport Transport
	Registry  *Registry
	Converter DataConverter
	Logger    *zap.Logger
	Scope     tally.Scope
	PollRetry backoff.RetryPolicy
}

// Run polls for activity tasks until ctx is cancelled. A task naming an
// unregistered activity type is logged and abandoned (the server
// redelivers or times it out), matching NoRegisteredHandler's disposition
// in spec §7.
func (w *ActivityWorker) Run(ctx context.Context) error {
	logger := w.logger()
	converter := w.converter()
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		task, err := w.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("activity poll failed", zap.Error(err))
			continue
		}
		if task.TaskToken == "" {
			continue
		}
		w.handle(task)
	}
}

func (w *ActivityWorker) poll(ctx context.Context) (ActivityTaskResponse, error) {
	logger := w.logger()
	var task ActivityTaskResponse
	var attempt int64
	err := backoff.Retry(ctx, func() error {
		attempt++
		var pollErr error
		task, pollErr = w.Transport.PollForActivityTask(w.Domain, w.TaskList)
		if pollErr != nil {
			w.scope().Counter(MetricPollErrors).Inc(1)
			logger.Debug("activity poll attempt failed", zap.Int64(tagAttempt, attempt), zap.Error(pollErr))
		}
		return pollErr
	}, w.pollRetry())
	return task, err
}

func (w *ActivityWorker) handle(task ActivityTaskResponse) {
	logger := w.logger()
	reg, ok := w.Registry.Activity(task.ActivityType)
	if !ok {
		logger.Warn("no handler registered for activity type",
			zap.String(tagActivityName, task.ActivityType.Name),
			zap.String(tagActivityVer, task.ActivityType.Version))
		return
	}

	handle := &ActivityHandle{transport: w.Transport, taskToken: task.TaskToken}
	result, err := w.invoke(reg, handle, task.Input)
	if err != nil {
		if respErr := w.Transport.RespondActivityTaskFailed(task.TaskToken, err.Error()); respErr != nil {
			logger.Error("failed to report activity failure", zap.Error(respErr))
		}
		w.scope().Counter(MetricActivitiesFailed).Inc(1)
		return
	}

	raw, err := w.converter().EncodeValue(result)
	if err != nil {
		if respErr := w.Transport.RespondActivityTaskFailed(task.TaskToken, err.Error()); respErr != nil {
			logger.Error("failed to report activity encode failure", zap.Error(respErr))
		}
		w.scope().Counter(MetricActivitiesFailed).Inc(1)
		return
	}
	if err := w.Transport.RespondActivityTaskCompleted(task.TaskToken, raw); err != nil {
		logger.Error("failed to report activity completion", zap.Error(err))
		return
	}
	w.scope().Counter(MetricActivitiesCompleted).Inc(1)
}

func (w *ActivityWorker) invoke(reg ActivityRegistration, handle *ActivityHandle, input []byte) (result interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			err = &ActivityError{Reason: "activity panicked"}
		}
	}()
	return reg.Func(handle, input)
}

func (w *ActivityWorker) logger() *zap.Logger {
	if w.Logger == nil {
		return NopLogger()
	}
	return w.Logger
}

func (w *ActivityWorker) scope() tally.Scope {
	if w.Scope == nil {
		return NopScope()
	}
	return w.Scope
}

func (w *ActivityWorker) converter() DataConverter {
	if w.Converter == nil {
		return DefaultDataConverter
	}
	return w.Converter
}

func (w *ActivityWorker) pollRetry() backoff.RetryPolicy {
	if w.PollRetry == (backoff.RetryPolicy{}) {
		return backoff.NewPollRetryPolicy()
	}
	return w.PollRetry
}
