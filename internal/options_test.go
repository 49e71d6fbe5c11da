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

func ptrInt64(v int64) *int64 { return &v }
func ptrInt(v int) *int       { return &v }
func ptrBool(v bool) *bool    { return &v }
func ptrString(v string) *string { return &v }

func Test_OptionsStack_DefaultsWhenNothingSet(t *testing.T) {
	stack := NewOptionsStack()
	resolved := stack.ResolveActivity(ActivityOptions{})
	require.Equal(t, 3, resolved.Retry)
	require.Equal(t, 0, resolved.Delay)
	require.False(t, resolved.ErrorHandling)
	require.Equal(t, "", resolved.TaskList)
}

func Test_OptionsStack_CallSiteOverridesDefault(t *testing.T) {
	stack := NewOptionsStack()
	resolved := stack.ResolveActivity(ActivityOptions{Retry: ptrInt(5)})
	require.Equal(t, 5, resolved.Retry)
}

func Test_OptionsStack_InnermostScopeWins(t *testing.T) {
	stack := NewOptionsStack()
	stack.Push(ActivityOptions{Retry: ptrInt(5), TaskList: ptrString("outer")}, SubworkflowOptions{})
	stack.Push(ActivityOptions{Retry: ptrInt(1)}, SubworkflowOptions{})

	resolved := stack.ResolveActivity(ActivityOptions{})
	require.Equal(t, 1, resolved.Retry, "innermost frame's Retry must win")
	require.Equal(t, "outer", resolved.TaskList, "TaskList not redefined by the inner frame falls back to the outer one")
}

func Test_OptionsStack_ScopeWinsOverCallSite(t *testing.T) {
	stack := NewOptionsStack()
	stack.Push(ActivityOptions{Retry: ptrInt(5)}, SubworkflowOptions{})

	resolved := stack.ResolveActivity(ActivityOptions{Retry: ptrInt(9)})
	require.Equal(t, 5, resolved.Retry, "a field an enclosing scope defines overrides the call-site value; call-site options only fill fields no scope defines")
}

func Test_OptionsStack_PopRestoresOuterScope(t *testing.T) {
	stack := NewOptionsStack()
	stack.Push(ActivityOptions{Retry: ptrInt(5)}, SubworkflowOptions{})
	stack.Push(ActivityOptions{Retry: ptrInt(1)}, SubworkflowOptions{})
	stack.Pop()

	resolved := stack.ResolveActivity(ActivityOptions{})
	require.Equal(t, 5, resolved.Retry)
}

func Test_OptionsStack_NegativeRetryAndDelayClampToZero(t *testing.T) {
	stack := NewOptionsStack()
	resolved := stack.ResolveActivity(ActivityOptions{Retry: ptrInt(-3), Delay: ptrInt(-1)})
	require.Equal(t, 0, resolved.Retry)
	require.Equal(t, 0, resolved.Delay)
}

func Test_OptionsStack_Subworkflow_IndependentFromActivity(t *testing.T) {
	stack := NewOptionsStack()
	stack.Push(ActivityOptions{Retry: ptrInt(7)}, SubworkflowOptions{Retry: ptrInt(2)})

	act := stack.ResolveActivity(ActivityOptions{})
	sub := stack.ResolveSubworkflow(SubworkflowOptions{})
	require.Equal(t, 7, act.Retry)
	require.Equal(t, 2, sub.Retry)
}

func Test_OptionsStack_TimeoutsCarryThroughUnsetFields(t *testing.T) {
	stack := NewOptionsStack()
	stack.Push(ActivityOptions{StartToClose: ptrInt64(30), ErrorHandling: ptrBool(true)}, SubworkflowOptions{})

	resolved := stack.ResolveActivity(ActivityOptions{Heartbeat: ptrInt64(10)})
	require.NotNil(t, resolved.StartToClose)
	require.Equal(t, int64(30), *resolved.StartToClose)
	require.NotNil(t, resolved.Heartbeat)
	require.Equal(t, int64(10), *resolved.Heartbeat)
	require.True(t, resolved.ErrorHandling)
}
