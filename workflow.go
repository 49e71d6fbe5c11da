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

package durableflow

import (
	"github.com/durableflow/durableflow/internal"
)

// Context is the handle workflow code uses to call activities and
// sub-workflows and to open option scopes. It is constructed fresh for
// every replay turn; workflow functions must treat it (and everything
// reachable from it) as the only source of non-deterministic state -- no
// goroutines, no time.Now, no randomness.
type Context = internal.WorkflowContext

// WorkflowFunc is the signature every registered workflow must satisfy.
type WorkflowFunc = internal.WorkflowFunc

// ActivityHandle is passed to every activity invocation, offering
// cooperative cancellation via Heartbeat.
type ActivityHandle = internal.ActivityHandle

// ActivityFunc is the signature every registered activity must satisfy.
type ActivityFunc = internal.ActivityFunc

// Registry collects workflow and activity handlers for one worker process.
// Unlike the teacher's process-global registry, a Registry is an ordinary
// value a caller constructs and passes around explicitly -- nothing here
// reaches for package-level state.
type Registry = internal.Registry

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return internal.NewRegistry()
}

// WorkflowType and ActivityType name a registered handler by name/version
// pair, matching the remote service's own identification scheme.
type WorkflowType = internal.WorkflowType
type ActivityType = internal.ActivityType

// RegisterWorkflowOptions are the server-side defaults a workflow type is
// declared with; all durations are expressed in seconds, matching the
// remote service's own wire units.
type RegisterWorkflowOptions struct {
	TaskList                     string
	ExecutionStartToCloseTimeout int64
	TaskStartToCloseTimeout      int64
	ChildPolicy                  string
}

// RegisterActivityOptions is the activity analogue.
type RegisterActivityOptions struct {
	TaskList               string
	HeartbeatTimeout       int64
	ScheduleToCloseTimeout int64
	ScheduleToStartTimeout int64
	StartToCloseTimeout    int64
}

// RegisterWorkflow declares a workflow handler and its server-side
// registration defaults. Call it once per (name, version) before Start.
func RegisterWorkflow(reg *Registry, name, version string, fn WorkflowFunc, opts RegisterWorkflowOptions) {
	taskList := opts.TaskList
	executionStartToClose := opts.ExecutionStartToCloseTimeout
	if executionStartToClose == 0 {
		executionStartToClose = internal.DefaultExecutionStartToClose
	}
	taskStartToClose := opts.TaskStartToCloseTimeout
	if taskStartToClose == 0 {
		taskStartToClose = internal.DefaultTaskStartToClose
	}
	childPolicy := opts.ChildPolicy
	if childPolicy == "" {
		childPolicy = internal.DefaultChildPolicy
	}
	reg.RegisterWorkflow(internal.WorkflowRegistration{
		Type:                         WorkflowType{Name: name, Version: version},
		TaskList:                     taskList,
		ExecutionStartToCloseTimeout: executionStartToClose,
		TaskStartToCloseTimeout:      taskStartToClose,
		ChildPolicy:                  childPolicy,
		Func:                         fn,
	})
}

// RegisterActivity declares an activity handler and its server-side
// registration defaults.
func RegisterActivity(reg *Registry, name, version string, fn ActivityFunc, opts RegisterActivityOptions) {
	heartbeat := opts.HeartbeatTimeout
	if heartbeat == 0 {
		heartbeat = internal.DefaultActivityHeartbeat
	}
	scheduleToClose := opts.ScheduleToCloseTimeout
	if scheduleToClose == 0 {
		scheduleToClose = internal.DefaultActivityScheduleToClose
	}
	scheduleToStart := opts.ScheduleToStartTimeout
	if scheduleToStart == 0 {
		scheduleToStart = internal.DefaultActivityScheduleToStart
	}
	startToClose := opts.StartToCloseTimeout
	if startToClose == 0 {
		startToClose = internal.DefaultActivityStartToClose
	}
	reg.RegisterActivity(internal.ActivityRegistration{
		Type:                   ActivityType{Name: name, Version: version},
		TaskList:               opts.TaskList,
		HeartbeatTimeout:       heartbeat,
		ScheduleToCloseTimeout: scheduleToClose,
		ScheduleToStartTimeout: scheduleToStart,
		StartToCloseTimeout:    startToClose,
		Func:                   fn,
	})
}

// CallActivity schedules (or resolves) a call to the named activity from
// inside workflow code. call_id allocation happens in call order
// regardless of whether upstream arguments are ready, which is what keeps
// replay deterministic.
func CallActivity(ctx *Context, name, version string, opts ActivityOptions, args ...interface{}) Outcome {
	return ctx.CallActivity(name, version, opts, args...)
}

// CallActivityKw is CallActivity with keyword arguments.
func CallActivityKw(ctx *Context, name, version string, opts ActivityOptions, kwargs map[string]interface{}, args ...interface{}) Outcome {
	return ctx.CallActivityKw(name, version, opts, kwargs, args...)
}

// CallSubworkflow is the sub-workflow analogue of CallActivity.
func CallSubworkflow(ctx *Context, name, version string, opts SubworkflowOptions, args ...interface{}) Outcome {
	return ctx.CallSubworkflow(name, version, opts, args...)
}

// CallSubworkflowKw is CallSubworkflow with keyword arguments.
func CallSubworkflowKw(ctx *Context, name, version string, opts SubworkflowOptions, kwargs map[string]interface{}, args ...interface{}) Outcome {
	return ctx.CallSubworkflowKw(name, version, opts, kwargs, args...)
}

// WithOptions opens a scoped options region: calls made inside fn inherit
// the enclosing scope's activity/sub-workflow fields, overridden by
// whatever is set here.
func WithOptions(ctx *Context, activity ActivityOptions, subworkflow SubworkflowOptions, fn func()) {
	ctx.WithOptions(activity, subworkflow, fn)
}
