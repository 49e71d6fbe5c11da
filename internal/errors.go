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

// Error taxonomy for the decider/activity-worker core. Each kind below
// corresponds to one row of the design's error-handling table; none of them
// are meant to be constructed by workflow/activity authors directly except
// ActivityError, which workflow code catches via Result when manual
// error handling is enabled for the call.
package internal

import "fmt"

// ActivityError is raised (via panic, recovered by Runtime.Run) when
// workflow code dereferences an Outcome that carries a failed remote call
// and the enclosing option scope has error_handling enabled.
type ActivityError struct {
	Reason string
}

func (e *ActivityError) Error() string { return e.Reason }

// UnhandledActivityError terminates the workflow execution: it is produced
// when a remote call failed (or its arguments carried a failure) and no
// enclosing scope opted into manual error handling.
type UnhandledActivityError struct {
	Reason string
}

func (e *UnhandledActivityError) Error() string { return e.Reason }

// DecodeError wraps a failure to unmarshal a resolved outcome's raw value
// into the type requested by workflow code.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("cannot decode result: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// ContextDecodeFailure means the execution context persisted by the server
// could not be parsed. Per the design this is fatal: silently losing retry
// counters and call-id state is worse than a loud crash.
type ContextDecodeFailure struct {
	Err error
}

func (e *ContextDecodeFailure) Error() string {
	return fmt.Sprintf("cannot decode execution context: %v", e.Err)
}
func (e *ContextDecodeFailure) Unwrap() error { return e.Err }

// ConfigurationDivergence means a workflow or activity type was already
// registered on the server with defaults that differ from the ones the
// local process is trying to register. Fatal by design: two workers
// registering the same name/version with different defaults would
// otherwise diverge silently.
type ConfigurationDivergence struct {
	Kind    string // "workflow" or "activity"
	Name    string
	Version string
	Detail  string
}

func (e *ConfigurationDivergence) Error() string {
	return fmt.Sprintf("registered %s %s/%s has different defaults: %s", e.Kind, e.Name, e.Version, e.Detail)
}

// NoRegisteredHandler means a decision or activity task named a type this
// process never registered. The task is logged and abandoned; the server
// will redeliver it or let it time out.
type NoRegisteredHandler struct {
	Name    string
	Version string
}

func (e *NoRegisteredHandler) Error() string {
	return fmt.Sprintf("no handler registered for %s/%s", e.Name, e.Version)
}

// syncNeeded is the internal control-flow signal raised when workflow code
// dereferences a still-unresolved Outcome. It must never escape Runtime.Run.
type syncNeeded struct{}

func (syncNeeded) Error() string { return "sync needed: unresolved outcome dereferenced" }

var errSyncNeeded = &syncNeeded{}

// invalidHistory is a hard failure in the history projector: the event
// stream violates an invariant the projector assumes (e.g. more than one
// DecisionTaskCompleted event in the new window).
type invalidHistory struct {
	Reason string
}

func (e *invalidHistory) Error() string { return "invalid history: " + e.Reason }
