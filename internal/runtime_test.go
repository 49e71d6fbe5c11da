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
	"testing"

	"github.com/stretchr/testify/require"
)

// inputArgs decodes the positional "args" of a CallInput-shaped envelope,
// mirroring the root package's Arg helper without importing it (internal
// cannot import its parent package).
func inputArgs(raw json.RawMessage) []int {
	var env struct {
		Args []int `json:"args"`
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		panic(err)
	}
	return env.Args
}

// Test_Runtime_S1_SingleActivity_FirstTurn reproduces spec §8 scenario S1:
// a workflow with one activity call, first decision turn, no prior state.
func Test_Runtime_S1_SingleActivity_FirstTurn(t *testing.T) {
	state := NewExecutionState()
	state.Input = []byte(`{"args":[1,2],"kwargs":{}}`)

	wf := func(ctx *WorkflowContext) (interface{}, error) {
		args := inputArgs(ctx.Input())
		r := ctx.CallActivity("add", "1.0", ActivityOptions{}, args[0], args[1])
		return Result[int](r), nil
	}

	rt := NewRuntime(nil)
	outcome := rt.Run(wf, state)

	require.True(t, outcome.Blocked())
	require.Len(t, outcome.Pending, 1)
	require.Equal(t, CallID(0), outcome.Pending[0].CallID)
	require.Equal(t, "add", outcome.Pending[0].Name)
	require.JSONEq(t, `{"args":[1,2],"kwargs":{}}`, string(outcome.Pending[0].Input))
	require.Equal(t, 4, state.Retries[0])
	require.True(t, state.Scheduled[0])
}

// Test_Runtime_S2_Completion continues S1 with the activity resolved.
func Test_Runtime_S2_Completion(t *testing.T) {
	state := NewExecutionState()
	state.Input = []byte(`{"args":[1,2],"kwargs":{}}`)
	state.Results[0] = []byte(`3`)

	wf := func(ctx *WorkflowContext) (interface{}, error) {
		args := inputArgs(ctx.Input())
		r := ctx.CallActivity("add", "1.0", ActivityOptions{}, args[0], args[1])
		return Result[int](r), nil
	}

	rt := NewRuntime(nil)
	outcome := rt.Run(wf, state)

	require.True(t, outcome.Completed)
	require.Empty(t, outcome.Pending)
	require.JSONEq(t, `3`, string(outcome.Result))
}

// Test_Runtime_S3_DependentCalls reproduces spec §8 scenario S3: x=f(1);
// y=g(x); return y.result().
func Test_Runtime_S3_DependentCalls_FirstTurn(t *testing.T) {
	state := NewExecutionState()

	wf := func(ctx *WorkflowContext) (interface{}, error) {
		x := ctx.CallActivity("f", "1.0", ActivityOptions{}, 1)
		y := ctx.CallActivity("g", "1.0", ActivityOptions{}, x)
		return Result[int](y), nil
	}

	rt := NewRuntime(nil)
	outcome := rt.Run(wf, state)

	require.True(t, outcome.Blocked())
	require.Len(t, outcome.Pending, 1, "g is blocked on f's unresolved placeholder and must not appear yet")
	require.Equal(t, CallID(0), outcome.Pending[0].CallID)
	require.Equal(t, "f", outcome.Pending[0].Name)
}

func Test_Runtime_S3_DependentCalls_SecondTurn(t *testing.T) {
	state := NewExecutionState()
	state.Results[0] = []byte(`10`)

	wf := func(ctx *WorkflowContext) (interface{}, error) {
		x := ctx.CallActivity("f", "1.0", ActivityOptions{}, 1)
		y := ctx.CallActivity("g", "1.0", ActivityOptions{}, x)
		return Result[int](y), nil
	}

	rt := NewRuntime(nil)
	outcome := rt.Run(wf, state)

	require.True(t, outcome.Blocked())
	require.Len(t, outcome.Pending, 1)
	require.Equal(t, CallID(1), outcome.Pending[0].CallID)
	require.Equal(t, "g", outcome.Pending[0].Name)
	require.JSONEq(t, `{"args":[10],"kwargs":{}}`, string(outcome.Pending[0].Input))
}

// Test_Runtime_S5_ErrorWithManualHandling reproduces spec §8 scenario S5.
func Test_Runtime_S5_ErrorWithManualHandling(t *testing.T) {
	state := NewExecutionState()
	state.WithErrors[0] = "boom"

	wf := func(ctx *WorkflowContext) (interface{}, error) {
		var result string
		ctx.WithOptions(ActivityOptions{ErrorHandling: ptrBool(true)}, SubworkflowOptions{}, func() {
			e := ctx.CallActivity("risky", "1.0", ActivityOptions{}, 1)
			defer func() {
				if rec := recover(); rec != nil {
					if _, ok := rec.(*ActivityError); ok {
						result = "handled"
						return
					}
					panic(rec)
				}
			}()
			Result[int](e)
		})
		return result, nil
	}

	rt := NewRuntime(nil)
	outcome := rt.Run(wf, state)

	require.True(t, outcome.Completed)
	require.JSONEq(t, `"handled"`, string(outcome.Result))
}

// Test_Runtime_S6_ErrorWithoutManualHandling reproduces spec §8 scenario
// S6: same as S5 but error_handling is off, so the workflow terminates.
func Test_Runtime_S6_ErrorWithoutManualHandling(t *testing.T) {
	state := NewExecutionState()
	state.WithErrors[0] = "boom"

	wf := func(ctx *WorkflowContext) (interface{}, error) {
		e := ctx.CallActivity("risky", "1.0", ActivityOptions{}, 1)
		return Result[int](e), nil
	}

	rt := NewRuntime(nil)
	outcome := rt.Run(wf, state)

	require.True(t, outcome.Terminated)
	require.Equal(t, "boom", outcome.TerminateReason)
}

// Test_Runtime_CallIDStability exercises spec §8 property 2: the same
// workflow code with the same input must assign the same call_id to the
// same source-order call site across independent replays.
func Test_Runtime_CallIDStability(t *testing.T) {
	wf := func(ctx *WorkflowContext) (interface{}, error) {
		a := ctx.CallActivity("a", "1.0", ActivityOptions{}, 1)
		b := ctx.CallActivity("b", "1.0", ActivityOptions{}, 2)
		_ = a
		_ = b
		return nil, nil
	}

	state1 := NewExecutionState()
	rt := NewRuntime(nil)
	outcome1 := rt.Run(wf, state1)

	state2 := NewExecutionState()
	outcome2 := rt.Run(wf, state2)

	require.Equal(t, outcome1.Pending[0].CallID, outcome2.Pending[0].CallID)
	require.Equal(t, outcome1.Pending[1].CallID, outcome2.Pending[1].CallID)
}

// Test_Runtime_ReturnsErrorTerminatesWorkflow covers a workflow function
// returning a Go error directly (no remote call involved).
func Test_Runtime_ReturnsErrorTerminatesWorkflow(t *testing.T) {
	state := NewExecutionState()
	wf := func(ctx *WorkflowContext) (interface{}, error) {
		return nil, errBoom
	}
	rt := NewRuntime(nil)
	outcome := rt.Run(wf, state)
	require.True(t, outcome.Terminated)
	require.Equal(t, "boom", outcome.TerminateReason)
}

type boomError struct{}

func (boomError) Error() string { return "boom" }

var errBoom = boomError{}
