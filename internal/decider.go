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
	"time"

	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/durableflow/durableflow/internal/backoff"
)

// Decider runs the long-poll / project / replay / emit loop (§4.G) for one
// task list. Each iteration is a complete, independent decision turn; no
// state survives across iterations except what the server round-trips via
// the execution context.
type Decider struct {
	Domain    string
	TaskList  string
	Transport Transport
	Registry  *Registry
	Converter DataConverter
	Logger    *zap.Logger
	Scope     tally.Scope
	PollRetry backoff.RetryPolicy
}

// Run polls for decision tasks until ctx is cancelled.
func (d *Decider) Run(ctx context.Context) error {
	logger := d.logger()
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		task, err := d.pollAndDrain(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("decision poll failed", zap.Error(err))
			continue
		}
		if task.TaskToken == "" {
			continue
		}
		d.handle(task)
	}
}

// pollAndDrain polls once and then follows nextPageToken until the full
// event list for the task is materialised (§4.C step 2).
func (d *Decider) pollAndDrain(ctx context.Context) (DecisionTaskResponse, error) {
	logger := d.logger()
	var task DecisionTaskResponse
	var attempt int64
	err := backoff.Retry(ctx, func() error {
		attempt++
		var pollErr error
		task, pollErr = d.Transport.PollForDecisionTask(d.Domain, d.TaskList, "")
		if pollErr != nil {
			d.scope().Counter(MetricPollErrors).Inc(1)
			logger.Debug("decision poll attempt failed", zap.Int64(tagAttempt, attempt), zap.Error(pollErr))
		}
		return pollErr
	}, d.pollRetry())
	if err != nil || task.TaskToken == "" {
		return task, err
	}
	for task.NextPageToken != "" {
		page, pageErr := d.Transport.PollForDecisionTask(d.Domain, d.TaskList, task.NextPageToken)
		if pageErr != nil {
			return task, pageErr
		}
		task.Events = append(task.Events, page.Events...)
		task.NextPageToken = page.NextPageToken
	}
	return task, nil
}

func (d *Decider) handle(task DecisionTaskResponse) {
	logger := d.logger()
	reg, ok := d.Registry.Workflow(task.WorkflowType)
	if !ok {
		logger.Warn("no handler registered for workflow type",
			zap.String(tagWorkflowName, task.WorkflowType.Name),
			zap.String(tagWorkflowVer, task.WorkflowType.Version))
		return
	}

	state, err := ProjectHistory(task.Events, task.PreviousStartedEventID)
	if err != nil {
		logger.Error("failed to project history", zap.Error(err),
			zap.String(tagWorkflowID, task.WorkflowExecution.WorkflowID),
			zap.Int64(tagEventID, task.PreviousStartedEventID))
		if _, fatal := err.(*ContextDecodeFailure); fatal {
			exiter(1)
		}
		return
	}

	if timedOut := countActivityTaskTimedOut(task.Events); timedOut > 0 {
		d.scope().Counter(MetricActivitiesTimedOut).Inc(int64(timedOut))
	}

	start := time.Now()
	runtime := NewRuntime(d.converter())
	outcome := runtime.Run(reg.Func, state)
	RecordDecisionTurn(d.scope(), len(outcome.Pending), time.Since(start))
	for _, p := range outcome.Pending {
		logger.Debug("scheduling remote call",
			zap.Int64(tagCallID, int64(p.CallID)),
			zap.String(tagWorkflowID, task.WorkflowExecution.WorkflowID))
	}

	reply, err := BuildDecisionReply(outcome, state)
	if err != nil {
		logger.Error("failed to build decision reply", zap.Error(err))
		return
	}

	if err := d.respond(task.TaskToken, task.WorkflowExecution.WorkflowID, reply); err != nil {
		// Transport failures are logged and the turn abandoned; the
		// server redelivers the decision task (spec §4.F).
		logger.Error("failed to respond to decision task", zap.Error(err),
			zap.String(tagWorkflowID, task.WorkflowExecution.WorkflowID))
		return
	}

	switch reply.Kind {
	case DecisionReplyComplete:
		d.scope().Counter(MetricWorkflowsCompleted).Inc(1)
	case DecisionReplyTerminate:
		d.scope().Counter(MetricWorkflowsTerminated).Inc(1)
	}
}

func (d *Decider) respond(taskToken, workflowID string, reply DecisionReply) error {
	switch reply.Kind {
	case DecisionReplyComplete:
		return d.Transport.RespondDecisionTaskCompleted(taskToken, []Decision{{
			Type: DecisionCompleteWorkflowExecution,
			CompleteWorkflowExecutionAttributes: &CompleteWorkflowExecutionAttributes{
				Result: reply.Result,
			},
		}}, "")
	case DecisionReplyTerminate:
		// Termination is carried out of-band, exactly like the source's
		// WorkflowClient.terminate_workflow: it is its own RPC, not a
		// decision embedded in the RespondDecisionTaskCompleted batch.
		return d.Transport.TerminateWorkflowExecution(d.Domain, workflowID, reply.TerminateReason)
	default:
		return d.Transport.RespondDecisionTaskCompleted(taskToken, reply.Decisions, reply.ExecutionContext)
	}
}

func (d *Decider) logger() *zap.Logger {
	if d.Logger == nil {
		return NopLogger()
	}
	return d.Logger
}

func (d *Decider) scope() tally.Scope {
	if d.Scope == nil {
		return NopScope()
	}
	return d.Scope
}

func (d *Decider) converter() DataConverter {
	if d.Converter == nil {
		return DefaultDataConverter
	}
	return d.Converter
}

func (d *Decider) pollRetry() backoff.RetryPolicy {
	if d.PollRetry == (backoff.RetryPolicy{}) {
		return backoff.NewPollRetryPolicy()
	}
	return d.PollRetry
}

func countActivityTaskTimedOut(events []HistoryEvent) int {
	count := 0
	for _, e := range events {
		if e.EventType == EventActivityTaskTimedOut {
			count++
		}
	}
	return count
}
