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
	"encoding/json"
	"sort"
	"strings"
)

// PendingKind distinguishes an activity schedule request from a
// sub-workflow one; both share the call-id space and the same
// argument-dependency gating, differing only in which options/decision
// type they end up attached to.
type PendingKind int

const (
	PendingActivity PendingKind = iota
	PendingSubworkflow
)

// PendingCall is a remote-call request the scheduler decided to emit this
// turn; the decision emitter (§4.F) turns each into one wire decision.
type PendingCall struct {
	CallID             CallID
	Kind               PendingKind
	Name               string
	Version            string
	Input              json.RawMessage
	ActivityOptions    ResolvedActivityOptions
	SubworkflowOptions ResolvedSubworkflowOptions
}

// Scheduler is the argument-dependency layer between the replay runtime
// and the decision emitter (§4.E): it gates every call-site request on the
// projected state, propagates placeholders and composed errors, and
// accumulates the pending schedule set for the current turn.
type Scheduler struct {
	state     *ExecutionState
	converter DataConverter
	pending   []PendingCall
	failed    *string
}

// NewScheduler returns a scheduler bound to the given projected state, the
// only one it will mutate for the duration of a single replay turn.
func NewScheduler(state *ExecutionState, converter DataConverter) *Scheduler {
	if converter == nil {
		converter = DefaultDataConverter
	}
	return &Scheduler{state: state, converter: converter}
}

// Pending returns the schedule requests accumulated so far this turn.
func (s *Scheduler) Pending() []PendingCall { return s.pending }

// Failed reports whether the workflow has been asked to terminate, and if
// so, with what reason. Only the first call to fail() during a turn wins;
// later ones are no-ops, mirroring the source's fail-once semantics.
func (s *Scheduler) Failed() (reason string, failed bool) {
	if s.failed == nil {
		return "", false
	}
	return *s.failed, true
}

func (s *Scheduler) fail(reason string) {
	if s.failed == nil {
		s.failed = &reason
	}
}

// ScheduleActivity applies the full argument-dependency algorithm of §4.D
// steps 2-4 for one activity call site.
func (s *Scheduler) ScheduleActivity(callID CallID, name, version string, args []interface{}, kwargs map[string]interface{}, opts ResolvedActivityOptions) Outcome {
	return s.schedule(callID, PendingKind(PendingActivity), name, version, args, kwargs, opts, ResolvedSubworkflowOptions{}, opts.ErrorHandling, opts.Retry)
}

// ScheduleSubworkflow is the sub-workflow analogue of ScheduleActivity,
// sharing the same call-id space and gating logic.
func (s *Scheduler) ScheduleSubworkflow(callID CallID, name, version string, args []interface{}, kwargs map[string]interface{}, opts ResolvedSubworkflowOptions) Outcome {
	return s.schedule(callID, PendingSubworkflow, name, version, args, kwargs, ResolvedActivityOptions{}, opts, opts.ErrorHandling, opts.Retry)
}

func (s *Scheduler) schedule(
	callID CallID,
	kind PendingKind,
	name, version string,
	args []interface{},
	kwargs map[string]interface{},
	aopts ResolvedActivityOptions,
	sopts ResolvedSubworkflowOptions,
	errorHandling bool,
	retry int,
) Outcome {
	// Step 2: a call already resolved by a prior turn short-circuits
	// immediately, regardless of whether the arguments still reference
	// unresolved placeholders elsewhere in the graph.
	if raw, ok := s.state.Results[callID]; ok {
		return NewResult(raw)
	}
	if reason, ok := s.state.WithErrors[callID]; ok {
		if errorHandling {
			return NewError(reason)
		}
		panic(&UnhandledActivityError{Reason: reason})
	}

	// A call that timed out is either still eligible for a fresh schedule
	// (retries_left > 0, silently rescheduled) or terminally failed
	// (retries_left == 0): this is the call's own resolution, so it is
	// raised immediately exactly like a direct with_errors failure above,
	// not deferred like an argument-dependency error.
	if s.state.TimedOut[callID] {
		if s.state.Retries[callID] > 0 {
			delete(s.state.TimedOut, callID)
		} else {
			reason := "activity timed out: max retries exceeded"
			if errorHandling {
				return NewError(reason)
			}
			panic(&UnhandledActivityError{Reason: reason})
		}
	}

	// Step 3: placeholder/error short-circuit over the call's own arguments.
	if argsHavePlaceholder(args, kwargs) {
		return NewPlaceholder()
	}
	if reasons := argErrorReasons(args, kwargs); len(reasons) > 0 {
		composed := strings.Join(reasons, "\n")
		if errorHandling {
			return NewError(composed)
		}
		s.fail(composed)
		return NewPlaceholder()
	}

	// Step 4: schedule once, if not already outstanding.
	if !s.state.Scheduled[callID] {
		input, err := s.converter.EncodeCallInput(args, kwargs)
		if err != nil {
			s.fail(err.Error())
			return NewPlaceholder()
		}
		s.state.Scheduled[callID] = true
		if _, seeded := s.state.Retries[callID]; !seeded {
			s.state.Retries[callID] = retry + 1
		}
		s.pending = append(s.pending, PendingCall{
			CallID:             callID,
			Kind:               kind,
			Name:               name,
			Version:            version,
			Input:              input,
			ActivityOptions:    aopts,
			SubworkflowOptions: sopts,
		})
	}
	return NewPlaceholder()
}

func argsHavePlaceholder(args []interface{}, kwargs map[string]interface{}) bool {
	for _, a := range args {
		if o, ok := a.(Outcome); ok && o.IsPlaceholder() {
			return true
		}
	}
	for _, v := range kwargs {
		if o, ok := v.(Outcome); ok && o.IsPlaceholder() {
			return true
		}
	}
	return false
}

// argErrorReasons collects error reasons in stable argument order:
// positional args first (in call order), then kwargs sorted by key. Go
// randomizes map iteration order per process, so kwargs keys are sorted
// before the walk -- otherwise the composed reason string handed to
// TerminateWorkflowExecution (and the decision reply built from it) would
// differ across independent replays of the identical history, breaking
// determinism.
func argErrorReasons(args []interface{}, kwargs map[string]interface{}) []string {
	var reasons []string
	for _, a := range args {
		if o, ok := a.(Outcome); ok && o.IsError() {
			reasons = append(reasons, o.Reason())
		}
	}
	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if o, ok := kwargs[k].(Outcome); ok && o.IsError() {
			reasons = append(reasons, o.Reason())
		}
	}
	return reasons
}
