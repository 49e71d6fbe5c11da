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
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ProjectHistory_WorkflowExecutionStarted(t *testing.T) {
	b := newHistoryBuilder().workflowExecutionStarted(`{"args":[1,2],"kwargs":{}}`)
	state, err := ProjectHistory(b.events, 0)
	require.NoError(t, err)
	require.JSONEq(t, `{"args":[1,2],"kwargs":{}}`, string(state.Input))
}

func Test_ProjectHistory_ScheduledThenCompleted(t *testing.T) {
	b := newHistoryBuilder().workflowExecutionStarted(`{"args":[1,2],"kwargs":{}}`)
	scheduledID, b := b.activityTaskScheduled(0)
	b = b.activityTaskCompleted(scheduledID, `3`)

	state, err := ProjectHistory(b.events, 0)
	require.NoError(t, err)
	require.False(t, state.Scheduled[0])
	require.JSONEq(t, `3`, string(state.Results[0]))
}

func Test_ProjectHistory_ScheduledThenFailed(t *testing.T) {
	b := newHistoryBuilder().workflowExecutionStarted(`{"args":[],"kwargs":{}}`)
	scheduledID, b := b.activityTaskScheduled(0)
	b = b.activityTaskFailed(scheduledID, "boom")

	state, err := ProjectHistory(b.events, 0)
	require.NoError(t, err)
	require.False(t, state.Scheduled[0])
	require.Equal(t, "boom", state.WithErrors[0])
}

func Test_ProjectHistory_TimedOutDecrementsRetries(t *testing.T) {
	ctx := NewExecutionState()
	ctx.Retries[0] = 2
	seed, err := ctx.Serialize()
	require.NoError(t, err)

	b := newHistoryBuilder().decisionTaskCompleted(seed)
	scheduledID, b := b.activityTaskScheduled(0)
	b = b.activityTaskTimedOut(scheduledID)

	// previousStartedEventId=1 (the decisionTaskCompleted event) so the
	// seeded context is restored and only the scheduled+timedOut pair
	// that follows it is walked as "new".
	projected, err := ProjectHistory(b.events, 1)
	require.NoError(t, err)
	require.True(t, projected.TimedOut[0])
	require.False(t, projected.Scheduled[0])
	require.Equal(t, 1, projected.Retries[0])
}

func Test_ProjectHistory_OnlyNewEventsAreWalked(t *testing.T) {
	b := newHistoryBuilder().workflowExecutionStarted(`{"args":[1],"kwargs":{}}`)
	scheduledID, b := b.activityTaskScheduled(0)
	b = b.activityTaskCompleted(scheduledID, `1`)
	ctx, err := NewExecutionState().Serialize()
	require.NoError(t, err)
	decisionTaskCompletedID := b.nextID
	b = b.decisionTaskCompleted(ctx)

	// A later turn: the only new event is a second activity scheduled.
	_, b = b.activityTaskScheduled(1)

	state, err := ProjectHistory(b.events, decisionTaskCompletedID)
	require.NoError(t, err)
	// call 0's completion predates previousStartedEventId and was never
	// recorded in the (empty) seeded context, so it must not leak into
	// this turn's projected state.
	_, hasResult := state.Results[0]
	require.False(t, hasResult)
	require.True(t, state.Scheduled[1])
}

func Test_ProjectHistory_MultipleDecisionTaskCompletedInNewWindowIsInvalid(t *testing.T) {
	b := newHistoryBuilder().workflowExecutionStarted(`{"args":[],"kwargs":{}}`)
	b = b.decisionTaskCompleted("")
	b = b.decisionTaskCompleted("")

	_, err := ProjectHistory(b.events, 0)
	require.Error(t, err)
	_, ok := err.(*invalidHistory)
	require.True(t, ok)
}

func Test_ExecutionState_SerializeRoundTrip(t *testing.T) {
	state := NewExecutionState()
	state.EventToCallID[5] = CallID(0)
	state.Retries[0] = 4
	state.Scheduled[0] = true
	state.Results[1] = []byte(`"hello"`)
	state.TimedOut[2] = true
	state.WithErrors[3] = "boom"
	state.Input = []byte(`{"args":[1],"kwargs":{}}`)

	raw, err := state.Serialize()
	require.NoError(t, err)

	decoded, err := DecodeExecutionContext(raw)
	require.NoError(t, err)
	require.Equal(t, state.EventToCallID, decoded.EventToCallID)
	require.Equal(t, state.Retries, decoded.Retries)
	require.Equal(t, state.Scheduled, decoded.Scheduled)
	require.Equal(t, string(state.Results[1]), string(decoded.Results[1]))
	require.Equal(t, state.TimedOut, decoded.TimedOut)
	require.Equal(t, state.WithErrors, decoded.WithErrors)
	require.JSONEq(t, string(state.Input), string(decoded.Input))

	// Fixed point: re-serializing the decoded state must reproduce the
	// exact same wire string (spec §8 property 3), since Serialize sorts
	// every set-valued field.
	raw2, err := decoded.Serialize()
	require.NoError(t, err)
	require.Equal(t, raw, raw2)
}

func Test_DecodeExecutionContext_IntegerKeyCoercion(t *testing.T) {
	// The wire flattens every call-id-keyed map to string keys; decoding
	// must re-coerce them back to integers rather than leaving them
	// inaccessible under their original numeric identity (spec §9).
	raw := `{
		"event_to_call_id": {"7": 0, "9": 1},
		"retries": {"0": 4, "1": 3},
		"scheduled": [0],
		"results": {},
		"timed_out": [],
		"with_errors": {},
		"input": null
	}`
	state, err := DecodeExecutionContext(raw)
	require.NoError(t, err)
	require.Equal(t, CallID(0), state.EventToCallID[7])
	require.Equal(t, CallID(1), state.EventToCallID[9])
	require.Equal(t, 4, state.Retries[CallID(0)])
	require.True(t, state.Scheduled[CallID(0)])
}

func Test_DecodeExecutionContext_EmptyString(t *testing.T) {
	state, err := DecodeExecutionContext("")
	require.NoError(t, err)
	require.Empty(t, state.Scheduled)
}

func Test_DecodeExecutionContext_Malformed(t *testing.T) {
	_, err := DecodeExecutionContext("{not json")
	require.Error(t, err)
	_, ok := err.(*ContextDecodeFailure)
	require.True(t, ok)
}
