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

// Package durableflow is a client-side decider and activity-worker library
// for a remote durable-workflow service in the AWS Simple Workflow
// archetype. Workflow authors write ordinary imperative Go functions that
// call activities (and sub-workflows) as if they were local calls; this
// library transparently turns each invocation into scheduling decisions
// dispatched to the server, and replays the function deterministically
// whenever the server hands back a new decision task.
//
// The heavy lifting -- history projection, the replay runtime, the
// argument-dependency scheduler, the options stack -- lives in internal
// and is intentionally not exported; this package and its siblings
// (worker, converter, mocks) are the stable surface workflow and activity
// authors build against.
package durableflow

import (
	"encoding/json"

	"github.com/durableflow/durableflow/internal"
)

// Outcome is the tri-state value observed for every activity or
// sub-workflow call inside workflow code: not yet resolved, resolved with
// a value, or resolved with a failure reason.
type Outcome = internal.Outcome

// Result decodes a successfully resolved Outcome into T. Dereferencing an
// unresolved Outcome aborts the current replay turn cleanly; dereferencing
// a failed one panics with *ActivityError, which workflow code recovers
// with a plain recover when error handling is enabled for the call (via
// WithOptions or the call's ActivityOptions).
func Result[T any](o Outcome) T {
	return internal.Result[T](o)
}

// NewPlaceholder, NewResult and NewError are exposed for activity and test
// code that needs to construct Outcome values directly (e.g. fakes).
var (
	NewPlaceholder = internal.NewPlaceholder
	NewError       = internal.NewError
)

// NewResult wraps a successfully produced value into a Result outcome.
func NewResult(v interface{}) (Outcome, error) {
	raw, err := internal.DefaultDataConverter.EncodeValue(v)
	if err != nil {
		return Outcome{}, err
	}
	return internal.NewResult(raw), nil
}

// ActivityError is the error recovered when workflow code dereferences a
// failed Outcome inside an error_handling scope.
type ActivityError = internal.ActivityError

// ActivityOptions configures a single activity call or an options scope;
// a nil/zero field means "inherit".
type ActivityOptions = internal.ActivityOptions

// SubworkflowOptions is the sub-workflow analogue of ActivityOptions.
type SubworkflowOptions = internal.SubworkflowOptions

// RawValue is the raw JSON value of a workflow/activity argument; most
// workflow code instead calls Arg[T] for a typed decode.
type RawValue = json.RawMessage

// Arg decodes one positional argument out of a workflow or activity's raw
// input envelope at index i.
func Arg[T any](input json.RawMessage, i int) (T, error) {
	var v T
	var envelope internal.CallInput
	if err := json.Unmarshal(input, &envelope); err != nil {
		return v, err
	}
	if i >= len(envelope.Args) {
		return v, nil
	}
	if err := json.Unmarshal(envelope.Args[i], &v); err != nil {
		return v, err
	}
	return v, nil
}
