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

import "encoding/json"

// WorkflowFunc is the shape of a user workflow: deserialize ctx.Input()
// however the caller likes, make zero or more Call* requests, and return a
// value to complete the execution (or an error to terminate it). It must
// be deterministic: given the same sequence of Outcome values observed
// from Call*, it must make the same sequence of Call* requests on every
// replay.
type WorkflowFunc func(ctx *WorkflowContext) (interface{}, error)

// WorkflowContext is the single entry point workflow code uses to reach
// remote activities and sub-workflows, and to open layered option scopes.
// One is constructed per replay turn and discarded at the end of it.
type WorkflowContext struct {
	state      *ExecutionState
	options    *OptionsStack
	scheduler  *Scheduler
	converter  DataConverter
	nextCallID CallID
}

func newWorkflowContext(state *ExecutionState, converter DataConverter) *WorkflowContext {
	return &WorkflowContext{
		state:     state,
		options:   NewOptionsStack(),
		scheduler: NewScheduler(state, converter),
		converter: converter,
	}
}

// Input returns the raw workflow input envelope captured from
// WorkflowExecutionStarted.
func (c *WorkflowContext) Input() json.RawMessage { return c.state.Input }

func (c *WorkflowContext) allocCallID() CallID {
	id := c.nextCallID
	c.nextCallID++
	return id
}

// CallActivity schedules (or resolves) a call to the named activity.
// call_id allocation happens unconditionally and in call order, which is
// what makes the Determinism contract (spec §4.D D1) hold: the id a given
// call site receives never depends on whether upstream arguments happen to
// be ready yet.
func (c *WorkflowContext) CallActivity(name, version string, opts ActivityOptions, args ...interface{}) Outcome {
	return c.CallActivityKw(name, version, opts, nil, args...)
}

// CallActivityKw is CallActivity with keyword arguments.
func (c *WorkflowContext) CallActivityKw(name, version string, opts ActivityOptions, kwargs map[string]interface{}, args ...interface{}) Outcome {
	callID := c.allocCallID()
	resolved := c.options.ResolveActivity(opts)
	return c.scheduler.ScheduleActivity(callID, name, version, args, kwargs, resolved)
}

// CallSubworkflow is the sub-workflow analogue of CallActivity, sharing
// the same call-id space and argument-dependency gating.
func (c *WorkflowContext) CallSubworkflow(name, version string, opts SubworkflowOptions, args ...interface{}) Outcome {
	return c.CallSubworkflowKw(name, version, opts, nil, args...)
}

// CallSubworkflowKw is CallSubworkflow with keyword arguments.
func (c *WorkflowContext) CallSubworkflowKw(name, version string, opts SubworkflowOptions, kwargs map[string]interface{}, args ...interface{}) Outcome {
	callID := c.allocCallID()
	resolved := c.options.ResolveSubworkflow(opts)
	return c.scheduler.ScheduleSubworkflow(callID, name, version, args, kwargs, resolved)
}

// WithOptions opens a scoped options region for the duration of fn: calls
// made inside inherit activity/subworkflow fields from the enclosing
// scope, overridden by whatever activity/subworkflow sets here (innermost
// wins for any field it defines).
func (c *WorkflowContext) WithOptions(activity ActivityOptions, subworkflow SubworkflowOptions, fn func()) {
	c.options.Push(activity, subworkflow)
	defer c.options.Pop()
	fn()
}

// RunOutcome is the result of one replay turn: exactly one of Completed,
// Terminated, or Blocked (neither of the first two) is true.
type RunOutcome struct {
	Completed       bool
	Result          json.RawMessage
	Terminated      bool
	TerminateReason string
	Pending         []PendingCall
}

// Blocked reports whether the turn ended on an unresolved dependency
// rather than completing or terminating the workflow.
func (o RunOutcome) Blocked() bool { return !o.Completed && !o.Terminated }

// Runtime executes a user workflow function against projected state for
// exactly one decision turn.
type Runtime struct {
	converter DataConverter
}

// NewRuntime returns a Runtime using converter for input/result encoding;
// a nil converter defaults to DefaultDataConverter.
func NewRuntime(converter DataConverter) *Runtime {
	if converter == nil {
		converter = DefaultDataConverter
	}
	return &Runtime{converter: converter}
}

// Run invokes wf once. The workflow body runs to completion, returns an
// error, or is unwound mid-flight by a panic: *syncNeeded when code
// dereferences an unresolved Outcome (the turn ends, blocked, retaining
// every scheduling side effect already applied to ctx.scheduler), or
// *UnhandledActivityError when a resolved call failed with no enclosing
// error_handling scope (the turn ends, terminated). Any other panic is not
// a control-flow signal this runtime understands and is re-raised.
func (r *Runtime) Run(wf WorkflowFunc, state *ExecutionState) RunOutcome {
	ctx := newWorkflowContext(state, r.converter)
	outcome := r.runBody(wf, ctx)
	outcome.Pending = ctx.scheduler.Pending()
	// A deferred fail() (argument-dependency error with error_handling off)
	// only flags the scheduler; it does not itself unwind the workflow
	// body, so the body may still run to a normal return or block on an
	// unrelated placeholder. Either way termination wins: the turn
	// discovered the execution must die, which supersedes a coincidental
	// completion or an unrelated suspension.
	if reason, failed := ctx.scheduler.Failed(); failed {
		outcome.Completed = false
		outcome.Result = nil
		outcome.Terminated = true
		outcome.TerminateReason = reason
	}
	return outcome
}

func (r *Runtime) runBody(wf WorkflowFunc, ctx *WorkflowContext) (outcome RunOutcome) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		switch e := rec.(type) {
		case *syncNeeded:
			// Turn ends blocked; outcome is left at its zero value and
			// Run fills in Pending (and possibly a deferred termination).
		case *UnhandledActivityError:
			outcome.Terminated = true
			outcome.TerminateReason = e.Reason
		default:
			panic(rec)
		}
	}()

	result, err := wf(ctx)
	if err != nil {
		outcome.Terminated = true
		outcome.TerminateReason = err.Error()
		return outcome
	}
	raw, err := r.converter.EncodeValue(result)
	if err != nil {
		outcome.Terminated = true
		outcome.TerminateReason = err.Error()
		return outcome
	}
	outcome.Completed = true
	outcome.Result = raw
	return outcome
}
