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
	"fmt"
	"os"

	"go.uber.org/zap"
)

// ActivityFunc is the shape of a registered activity handler: deserialize
// input however the caller likes, do the work, return a value to complete
// or an error to fail the task.
type ActivityFunc func(handle *ActivityHandle, input json.RawMessage) (interface{}, error)

// WorkflowRegistration is what Registry.RegisterWorkflow declares for one
// workflow type: its handler plus the server-side defaults the type is
// expected to be registered with.
type WorkflowRegistration struct {
	Type                         WorkflowType
	TaskList                     string
	ExecutionStartToCloseTimeout int64
	TaskStartToCloseTimeout      int64
	ChildPolicy                  string
	Func                         WorkflowFunc
}

// ActivityRegistration is the activity analogue.
type ActivityRegistration struct {
	Type                   ActivityType
	TaskList               string
	HeartbeatTimeout       int64
	ScheduleToCloseTimeout int64
	ScheduleToStartTimeout int64
	StartToCloseTimeout    int64
	Func                   ActivityFunc
}

type typeKey struct{ name, version string }

// Registry is an explicit, caller-owned collection of workflow and
// activity handlers (spec §9: "prefer explicit registry objects ... no
// semantic requirement for process-global state" -- unlike the source's
// process-wide registries).
type Registry struct {
	workflows  map[typeKey]WorkflowRegistration
	activities map[typeKey]ActivityRegistration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		workflows:  make(map[typeKey]WorkflowRegistration),
		activities: make(map[typeKey]ActivityRegistration),
	}
}

// RegisterWorkflow queues a workflow type for declaration on Sync.
func (r *Registry) RegisterWorkflow(reg WorkflowRegistration) {
	r.workflows[typeKey{reg.Type.Name, reg.Type.Version}] = reg
}

// RegisterActivity queues an activity type for declaration on Sync.
func (r *Registry) RegisterActivity(reg ActivityRegistration) {
	r.activities[typeKey{reg.Type.Name, reg.Type.Version}] = reg
}

// Workflow looks up a registered workflow handler by type.
func (r *Registry) Workflow(t WorkflowType) (WorkflowRegistration, bool) {
	reg, ok := r.workflows[typeKey{t.Name, t.Version}]
	return reg, ok
}

// Activity looks up a registered activity handler by type.
func (r *Registry) Activity(t ActivityType) (ActivityRegistration, bool) {
	reg, ok := r.activities[typeKey{t.Name, t.Version}]
	return reg, ok
}

// exiter is swapped out in tests so a ConfigurationDivergence doesn't kill
// the test binary.
var exiter = os.Exit

// Sync declares every registered type to the server. A type the server
// already knows about is diffed against the local defaults; any mismatch
// is a ConfigurationDivergence and is fatal, matching the source's
// sys.exit(1) posture (spec §7). Workflow types are compared on task list,
// execution and task start-to-close timeouts and child policy; activity
// types on task list, heartbeat, schedule-to-close and schedule-to-start
// timeouts. An activity's start-to-close timeout is not compared.
func (r *Registry) Sync(domain string, transport Transport, logger *zap.Logger) {
	if logger == nil {
		logger = NopLogger()
	}
	for _, reg := range r.workflows {
		err := transport.RegisterWorkflowType(
			domain, reg.Type, reg.TaskList, reg.ChildPolicy,
			durationSeconds(reg.ExecutionStartToCloseTimeout).String(),
			durationSeconds(reg.TaskStartToCloseTimeout).String(),
		)
		if err == nil {
			continue
		}
		if _, exists := err.(*ErrTypeAlreadyExists); !exists {
			logger.Error("failed to register workflow type", zap.String(tagWorkflowName, reg.Type.Name), zap.Error(err))
			continue
		}
		cfg, descErr := transport.DescribeWorkflowType(domain, reg.Type)
		if descErr != nil {
			logger.Error("failed to describe existing workflow type", zap.String(tagWorkflowName, reg.Type.Name), zap.Error(descErr))
			continue
		}
		if detail, diverged := diffWorkflowConfiguration(reg, cfg); diverged {
			err := &ConfigurationDivergence{Kind: "workflow", Name: reg.Type.Name, Version: reg.Type.Version, Detail: detail}
			logger.Error(err.Error())
			exiter(1)
			return
		}
	}
	for _, reg := range r.activities {
		err := transport.RegisterActivityType(
			domain, reg.Type, reg.TaskList,
			durationSeconds(reg.HeartbeatTimeout).String(),
			durationSeconds(reg.ScheduleToCloseTimeout).String(),
			durationSeconds(reg.ScheduleToStartTimeout).String(),
			durationSeconds(reg.StartToCloseTimeout).String(),
		)
		if err == nil {
			continue
		}
		if _, exists := err.(*ErrTypeAlreadyExists); !exists {
			logger.Error("failed to register activity type", zap.String(tagActivityName, reg.Type.Name), zap.Error(err))
			continue
		}
		cfg, descErr := transport.DescribeActivityType(domain, reg.Type)
		if descErr != nil {
			logger.Error("failed to describe existing activity type", zap.String(tagActivityName, reg.Type.Name), zap.Error(descErr))
			continue
		}
		if detail, diverged := diffActivityConfiguration(reg, cfg); diverged {
			err := &ConfigurationDivergence{Kind: "activity", Name: reg.Type.Name, Version: reg.Type.Version, Detail: detail}
			logger.Error(err.Error())
			exiter(1)
			return
		}
	}
}

func diffWorkflowConfiguration(reg WorkflowRegistration, cfg TypeConfiguration) (string, bool) {
	if cfg.TaskList != reg.TaskList {
		return fmt.Sprintf("task_list: local=%s remote=%s", reg.TaskList, cfg.TaskList), true
	}
	if detail, diverged := diffDuration("execution_start_to_close", reg.ExecutionStartToCloseTimeout, cfg.ExecutionStartToCloseTimeout); diverged {
		return detail, true
	}
	if detail, diverged := diffDuration("task_start_to_close", reg.TaskStartToCloseTimeout, cfg.TaskStartToCloseTimeout); diverged {
		return detail, true
	}
	if cfg.ChildPolicy != reg.ChildPolicy {
		return fmt.Sprintf("child_policy: local=%s remote=%s", reg.ChildPolicy, cfg.ChildPolicy), true
	}
	return "", false
}

func diffActivityConfiguration(reg ActivityRegistration, cfg TypeConfiguration) (string, bool) {
	if cfg.TaskList != reg.TaskList {
		return fmt.Sprintf("task_list: local=%s remote=%s", reg.TaskList, cfg.TaskList), true
	}
	if detail, diverged := diffDuration("heartbeat", reg.HeartbeatTimeout, cfg.HeartbeatTimeout); diverged {
		return detail, true
	}
	if detail, diverged := diffDuration("schedule_to_close", reg.ScheduleToCloseTimeout, cfg.TaskScheduleToCloseTimeout); diverged {
		return detail, true
	}
	if detail, diverged := diffDuration("schedule_to_start", reg.ScheduleToStartTimeout, cfg.TaskScheduleToStartTimeout); diverged {
		return detail, true
	}
	return "", false
}

// diffDuration compares a local seconds value against the server's
// decimal-string form, parsing rather than re-formatting the remote side
// so a difference in string representation (e.g. "60" vs "60.0") doesn't
// register as a false divergence.
func diffDuration(field string, local int64, remote string) (string, bool) {
	remoteSeconds, err := parseDurationSeconds(remote)
	if err != nil {
		return fmt.Sprintf("%s: local=%s remote=%q (unparseable)", field, durationSeconds(local), remote), true
	}
	if int64(remoteSeconds) != local {
		return fmt.Sprintf("%s: local=%s remote=%s", field, durationSeconds(local), remoteSeconds), true
	}
	return "", false
}
