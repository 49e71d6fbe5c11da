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

func defaultActivityOptions() ResolvedActivityOptions {
	return ResolvedActivityOptions{Retry: 3, ErrorHandling: false}
}

func Test_Scheduler_SchedulesOncePerCallID(t *testing.T) {
	state := NewExecutionState()
	s := NewScheduler(state, nil)

	out := s.ScheduleActivity(0, "add", "1.0", []interface{}{1, 2}, nil, defaultActivityOptions())
	require.True(t, out.IsPlaceholder())
	require.Len(t, s.Pending(), 1)
	require.True(t, state.Scheduled[0])
	require.Equal(t, 4, state.Retries[0]) // retry=3 seeded as retry+1

	// A second call to the same call_id within the same turn must not
	// enqueue a duplicate schedule request (spec §4.D step 4: "if the
	// call is not already scheduled").
	out2 := s.ScheduleActivity(0, "add", "1.0", []interface{}{1, 2}, nil, defaultActivityOptions())
	require.True(t, out2.IsPlaceholder())
	require.Len(t, s.Pending(), 1)
}

func Test_Scheduler_ResolvedResultShortCircuits(t *testing.T) {
	state := NewExecutionState()
	state.Results[0] = json.RawMessage(`3`)
	s := NewScheduler(state, nil)

	out := s.ScheduleActivity(0, "add", "1.0", []interface{}{1, 2}, nil, defaultActivityOptions())
	require.True(t, out.IsResult())
	require.Equal(t, 3, Result[int](out))
	require.Empty(t, s.Pending())
}

func Test_Scheduler_PlaceholderPropagation(t *testing.T) {
	state := NewExecutionState()
	s := NewScheduler(state, nil)

	upstream := NewPlaceholder()
	out := s.ScheduleActivity(1, "g", "1.0", []interface{}{upstream}, nil, defaultActivityOptions())

	require.True(t, out.IsPlaceholder())
	require.Empty(t, s.Pending(), "a call blocked on an unresolved argument must not appear in the emitted decision batch")
	require.False(t, state.Scheduled[1])
}

// Unhandled dependency errors (spec §4.D step 3) flag the scheduler's
// fail() path and return a placeholder rather than panicking -- that
// distinguishes them from a directly-resolved call failure (see
// Test_Scheduler_DirectErrorUnhandledPanics), which the runtime must
// still be able to unwind from mid-body.
func Test_Scheduler_ErrorComposition_Unhandled(t *testing.T) {
	state := NewExecutionState()
	s := NewScheduler(state, nil)

	a := NewError("a")
	b := NewError("b")

	out := s.ScheduleActivity(2, "h", "1.0", []interface{}{a, b}, nil, defaultActivityOptions())
	require.True(t, out.IsPlaceholder())
	require.Empty(t, s.Pending())

	reason, failed := s.Failed()
	require.True(t, failed)
	require.Equal(t, "a\nb", reason)
}

func Test_Scheduler_ErrorComposition_Handled(t *testing.T) {
	state := NewExecutionState()
	s := NewScheduler(state, nil)
	opts := defaultActivityOptions()
	opts.ErrorHandling = true

	a := NewError("a")
	b := NewError("b")
	out := s.ScheduleActivity(2, "h", "1.0", []interface{}{a, b}, nil, opts)

	require.True(t, out.IsError())
	require.Equal(t, "a\nb", out.Reason())
	_, failed := s.Failed()
	require.False(t, failed)
}

// Test_Scheduler_ErrorComposition_KwargsSortedByKey guards the determinism
// fix in argErrorReasons: with 2+ kwargs-carried errors, Go's randomized
// map iteration order must never leak into the composed reason string --
// repeating the call many times must always produce the same key order.
func Test_Scheduler_ErrorComposition_KwargsSortedByKey(t *testing.T) {
	kwargs := map[string]interface{}{
		"zeta":  NewError("z-reason"),
		"alpha": NewError("a-reason"),
		"mid":   NewError("m-reason"),
	}

	for i := 0; i < 20; i++ {
		state := NewExecutionState()
		s := NewScheduler(state, nil)

		out := s.ScheduleActivity(CallID(i), "h", "1.0", nil, kwargs, defaultActivityOptions())
		require.True(t, out.IsPlaceholder())

		reason, failed := s.Failed()
		require.True(t, failed)
		require.Equal(t, "a-reason\nm-reason\nz-reason", reason, "kwargs errors must compose in sorted-key order regardless of map iteration order")
	}
}

func Test_Scheduler_DirectErrorUnhandledPanics(t *testing.T) {
	state := NewExecutionState()
	state.WithErrors[0] = "boom"
	s := NewScheduler(state, nil)

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		unhandled, ok := rec.(*UnhandledActivityError)
		require.True(t, ok)
		require.Equal(t, "boom", unhandled.Reason)
	}()
	s.ScheduleActivity(0, "add", "1.0", []interface{}{1, 2}, nil, defaultActivityOptions())
}

func Test_Scheduler_DirectErrorHandled(t *testing.T) {
	state := NewExecutionState()
	state.WithErrors[0] = "boom"
	s := NewScheduler(state, nil)
	opts := defaultActivityOptions()
	opts.ErrorHandling = true

	out := s.ScheduleActivity(0, "add", "1.0", []interface{}{1, 2}, nil, opts)
	require.True(t, out.IsError())
	require.Equal(t, "boom", out.Reason())
}

// Test_Scheduler_RetryAccounting exercises spec §8 property 5: given
// retries=k at first schedule and m<=k successive timeouts for the same
// call_id, retries_left equals k+1-m and the call is rescheduled iff
// retries_left > 0.
func Test_Scheduler_RetryAccounting(t *testing.T) {
	state := NewExecutionState()
	opts := defaultActivityOptions()
	opts.Retry = 1

	s := NewScheduler(state, nil)
	s.ScheduleActivity(0, "add", "1.0", []interface{}{1, 2}, nil, opts)
	require.Equal(t, 2, state.Retries[0]) // k+1 = 2

	// First timeout: history projector decrements retries and marks
	// TimedOut; the scheduler sees this on the next turn.
	state.Scheduled[0] = false
	state.TimedOut[0] = true
	state.Retries[0]--
	require.Equal(t, 1, state.Retries[0])

	s2 := NewScheduler(state, nil)
	out := s2.ScheduleActivity(0, "add", "1.0", []interface{}{1, 2}, nil, opts)
	require.True(t, out.IsPlaceholder())
	require.Len(t, s2.Pending(), 1, "retries_left=1 > 0 must silently reschedule")
	require.False(t, state.TimedOut[0])

	// Second timeout exhausts the budget.
	state.Scheduled[0] = false
	state.TimedOut[0] = true
	state.Retries[0]--
	require.Equal(t, 0, state.Retries[0])

	s3 := NewScheduler(state, nil)
	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		_, ok := rec.(*UnhandledActivityError)
		require.True(t, ok)
		require.Empty(t, s3.Pending(), "retries_left=0 must not reschedule")
	}()
	s3.ScheduleActivity(0, "add", "1.0", []interface{}{1, 2}, nil, opts)
}

func Test_Scheduler_Subworkflow_SharesCallIDSpace(t *testing.T) {
	state := NewExecutionState()
	s := NewScheduler(state, nil)

	s.ScheduleActivity(0, "add", "1.0", []interface{}{1, 2}, nil, defaultActivityOptions())
	out := s.ScheduleSubworkflow(1, "child", "1.0", []interface{}{42}, nil, ResolvedSubworkflowOptions{Retry: 3})

	require.True(t, out.IsPlaceholder())
	require.Len(t, s.Pending(), 2)
	require.Equal(t, PendingSubworkflow, s.Pending()[1].Kind)
}
