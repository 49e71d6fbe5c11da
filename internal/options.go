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

// ActivityOptions is the options frame a workflow can attach to an activity
// call, either directly at the call site or via an enclosing Options scope.
// A nil pointer field means "not set at this level"; resolution falls back
// through the options stack to the defaults below.
type ActivityOptions struct {
	Heartbeat        *int64
	ScheduleToClose  *int64
	ScheduleToStart  *int64
	StartToClose     *int64
	TaskList         *string
	Retry            *int
	Delay            *int
	ErrorHandling    *bool
}

// SubworkflowOptions is the sub-workflow analogue of ActivityOptions.
type SubworkflowOptions struct {
	WorkflowDuration *int64
	DecisionDuration *int64
	TaskList         *string
	Retry            *int
	Delay            *int
	ErrorHandling    *bool
}

const (
	defaultRetry         = 3
	defaultDelay         = 0
	defaultErrorHandling = false
)

// ResolvedActivityOptions is the fully-defaulted, normalized frame handed to
// the scheduler for a single call.
type ResolvedActivityOptions struct {
	Heartbeat       *int64
	ScheduleToClose *int64
	ScheduleToStart *int64
	StartToClose    *int64
	TaskList        string
	Retry           int
	Delay           int
	ErrorHandling   bool
}

// ResolvedSubworkflowOptions is the sub-workflow analogue.
type ResolvedSubworkflowOptions struct {
	WorkflowDuration *int64
	DecisionDuration *int64
	TaskList         string
	Retry            int
	Delay            int
	ErrorHandling    bool
}

// OptionsStack is a LIFO stack of layered option frames. Innermost frame
// wins for any field it defines; fields undefined at every level fall back
// to defaults. Two independent stacks (activity, sub-workflow) are kept
// because the field sets only partially overlap (task_list, retry, delay,
// error_handling are shared; timeouts are not).
type OptionsStack struct {
	activity    []ActivityOptions
	subworkflow []SubworkflowOptions
}

// NewOptionsStack returns a stack seeded with one empty (all-nil) frame at
// the bottom, so resolution always has something to fall back to.
func NewOptionsStack() *OptionsStack {
	return &OptionsStack{
		activity:    []ActivityOptions{{}},
		subworkflow: []SubworkflowOptions{{}},
	}
}

// Push opens a new options scope. Fields left nil on the pushed frames
// inherit the current top of each stack, matching the contextmanager-based
// scope in the reference implementation: the merge happens at push time,
// not at resolution time, so sibling calls inside the scope all see the
// same merged frame.
func (s *OptionsStack) Push(activity ActivityOptions, subworkflow SubworkflowOptions) {
	s.activity = append(s.activity, mergeActivity(s.activity[len(s.activity)-1], activity))
	s.subworkflow = append(s.subworkflow, mergeSubworkflow(s.subworkflow[len(s.subworkflow)-1], subworkflow))
}

// Pop closes the innermost options scope.
func (s *OptionsStack) Pop() {
	s.activity = s.activity[:len(s.activity)-1]
	s.subworkflow = s.subworkflow[:len(s.subworkflow)-1]
}

// ResolveActivity folds the current stack top over the call-site options
// and normalizes the result.
func (s *OptionsStack) ResolveActivity(callSite ActivityOptions) ResolvedActivityOptions {
	merged := mergeActivity(callSite, s.activity[len(s.activity)-1])
	return ResolvedActivityOptions{
		Heartbeat:       merged.Heartbeat,
		ScheduleToClose: merged.ScheduleToClose,
		ScheduleToStart: merged.ScheduleToStart,
		StartToClose:    merged.StartToClose,
		TaskList:        derefString(merged.TaskList),
		Retry:           clampNonNeg(derefIntOr(merged.Retry, defaultRetry)),
		Delay:           clampNonNeg(derefIntOr(merged.Delay, defaultDelay)),
		ErrorHandling:   derefBoolOr(merged.ErrorHandling, defaultErrorHandling),
	}
}

// ResolveSubworkflow is the sub-workflow analogue of ResolveActivity.
func (s *OptionsStack) ResolveSubworkflow(callSite SubworkflowOptions) ResolvedSubworkflowOptions {
	merged := mergeSubworkflow(callSite, s.subworkflow[len(s.subworkflow)-1])
	return ResolvedSubworkflowOptions{
		WorkflowDuration: merged.WorkflowDuration,
		DecisionDuration: merged.DecisionDuration,
		TaskList:         derefString(merged.TaskList),
		Retry:            clampNonNeg(derefIntOr(merged.Retry, defaultRetry)),
		Delay:            clampNonNeg(derefIntOr(merged.Delay, defaultDelay)),
		ErrorHandling:    derefBoolOr(merged.ErrorHandling, defaultErrorHandling),
	}
}

// mergeActivity overlays "inner" onto "outer": any field inner defines wins.
func mergeActivity(outer, inner ActivityOptions) ActivityOptions {
	result := outer
	if inner.Heartbeat != nil {
		result.Heartbeat = inner.Heartbeat
	}
	if inner.ScheduleToClose != nil {
		result.ScheduleToClose = inner.ScheduleToClose
	}
	if inner.ScheduleToStart != nil {
		result.ScheduleToStart = inner.ScheduleToStart
	}
	if inner.StartToClose != nil {
		result.StartToClose = inner.StartToClose
	}
	if inner.TaskList != nil {
		result.TaskList = inner.TaskList
	}
	if inner.Retry != nil {
		result.Retry = inner.Retry
	}
	if inner.Delay != nil {
		result.Delay = inner.Delay
	}
	if inner.ErrorHandling != nil {
		result.ErrorHandling = inner.ErrorHandling
	}
	return result
}

func mergeSubworkflow(outer, inner SubworkflowOptions) SubworkflowOptions {
	result := outer
	if inner.WorkflowDuration != nil {
		result.WorkflowDuration = inner.WorkflowDuration
	}
	if inner.DecisionDuration != nil {
		result.DecisionDuration = inner.DecisionDuration
	}
	if inner.TaskList != nil {
		result.TaskList = inner.TaskList
	}
	if inner.Retry != nil {
		result.Retry = inner.Retry
	}
	if inner.Delay != nil {
		result.Delay = inner.Delay
	}
	if inner.ErrorHandling != nil {
		result.ErrorHandling = inner.ErrorHandling
	}
	return result
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefIntOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefBoolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func clampNonNeg(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
