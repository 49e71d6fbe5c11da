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

// Package internal implements the replay-based decider and the activity
// worker that sit on top of a remote durable-workflow service (the SWF
// archetype: long-poll for a task, respond with decisions). This file
// defines the wire-level contract (Transport) and the DTOs that cross it;
// it deliberately does not pick a transport library itself (spec: the
// concrete wire client is a named collaborator, not core) -- a plain
// net/http + encoding/json implementation lives in http_transport.go for
// production use, and faketransport_test.go provides an in-memory one for
// tests.
package internal

import "encoding/json"

// Event type tags consumed from history (spec section 6); everything else
// is ignored by the projector.
const (
	EventWorkflowExecutionStarted = "WorkflowExecutionStarted"
	EventDecisionTaskCompleted    = "DecisionTaskCompleted"
	EventActivityTaskScheduled    = "ActivityTaskScheduled"
	EventActivityTaskCompleted    = "ActivityTaskCompleted"
	EventActivityTaskFailed       = "ActivityTaskFailed"
	EventActivityTaskTimedOut     = "ActivityTaskTimedOut"
)

// HistoryEvent is one entry of a workflow execution's event history.
type HistoryEvent struct {
	EventID   int64  `json:"eventId"`
	EventType string `json:"eventType"`

	WorkflowExecutionStartedEventAttributes *WorkflowExecutionStartedAttributes `json:"workflowExecutionStartedEventAttributes,omitempty"`
	DecisionTaskCompletedEventAttributes    *DecisionTaskCompletedAttributes    `json:"decisionTaskCompletedEventAttributes,omitempty"`
	ActivityTaskScheduledEventAttributes    *ActivityTaskScheduledAttributes    `json:"activityTaskScheduledEventAttributes,omitempty"`
	ActivityTaskCompletedEventAttributes    *ActivityTaskCompletedAttributes    `json:"activityTaskCompletedEventAttributes,omitempty"`
	ActivityTaskFailedEventAttributes       *ActivityTaskFailedAttributes       `json:"activityTaskFailedEventAttributes,omitempty"`
	ActivityTaskTimedOutEventAttributes     *ActivityTaskTimedOutAttributes     `json:"activityTaskTimedOutEventAttributes,omitempty"`
}

// WorkflowExecutionStartedAttributes carries the workflow's raw input
// envelope (spec: {"args":[...],"kwargs":{...}}).
type WorkflowExecutionStartedAttributes struct {
	Input json.RawMessage `json:"input"`
}

// DecisionTaskCompletedAttributes carries the opaque execution context the
// decider wrote on the previous turn.
type DecisionTaskCompletedAttributes struct {
	ExecutionContext string `json:"executionContext"`
}

// ActivityTaskScheduledAttributes carries the activity's call id, encoded
// on the wire as a decimal string (activityId).
type ActivityTaskScheduledAttributes struct {
	ActivityID string `json:"activityId"`
}

// ActivityTaskCompletedAttributes links back to the scheduling event and
// carries the raw result.
type ActivityTaskCompletedAttributes struct {
	ScheduledEventID int64           `json:"scheduledEventId"`
	Result           json.RawMessage `json:"result"`
}

// ActivityTaskFailedAttributes links back to the scheduling event and
// carries the failure reason.
type ActivityTaskFailedAttributes struct {
	ScheduledEventID int64  `json:"scheduledEventId"`
	Reason           string `json:"reason"`
}

// ActivityTaskTimedOutAttributes links back to the scheduling event.
type ActivityTaskTimedOutAttributes struct {
	ScheduledEventID int64 `json:"scheduledEventId"`
}

// DecisionTaskResponse is the long-poll response for a decision task.
type DecisionTaskResponse struct {
	TaskToken              string         `json:"taskToken"`
	WorkflowType           WorkflowType   `json:"workflowType"`
	WorkflowExecution      WorkflowExecution `json:"workflowExecution"`
	Events                 []HistoryEvent `json:"events"`
	PreviousStartedEventID int64          `json:"previousStartedEventId"`
	NextPageToken          string         `json:"nextPageToken,omitempty"`
}

// WorkflowType identifies a registered workflow by name and version.
type WorkflowType struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ActivityType identifies a registered activity by name and version.
type ActivityType struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// WorkflowExecution identifies a running workflow execution.
type WorkflowExecution struct {
	WorkflowID string `json:"workflowId"`
	RunID      string `json:"runId,omitempty"`
}

// ActivityTaskResponse is the long-poll response for an activity task.
type ActivityTaskResponse struct {
	TaskToken    string          `json:"taskToken"`
	ActivityType ActivityType    `json:"activityType"`
	Input        json.RawMessage `json:"input"`
}

// Decision is one entry of a decision reply: either a schedule request for
// an activity or sub-workflow, or a workflow completion. Exactly one of the
// embedded attribute pointers is non-nil.
type Decision struct {
	Type                                    DecisionType
	ScheduleActivityTaskAttributes          *ScheduleActivityTaskAttributes
	StartChildWorkflowExecutionAttributes   *StartChildWorkflowExecutionAttributes
	CompleteWorkflowExecutionAttributes     *CompleteWorkflowExecutionAttributes
}

// DecisionType tags which attribute field of Decision is populated.
type DecisionType int

const (
	DecisionScheduleActivityTask DecisionType = iota
	DecisionStartChildWorkflowExecution
	DecisionCompleteWorkflowExecution
)

// ScheduleActivityTaskAttributes schedules an activity; ActivityID is the
// decimal string form of the call id (spec: the decider's only place where
// call_id meets the wire).
type ScheduleActivityTaskAttributes struct {
	ActivityID             string
	Name                   string
	Version                string
	Input                  json.RawMessage
	TaskList               string
	HeartbeatTimeout       *int64
	ScheduleToCloseTimeout *int64
	ScheduleToStartTimeout *int64
	StartToCloseTimeout    *int64
}

// StartChildWorkflowExecutionAttributes schedules a sub-workflow.
type StartChildWorkflowExecutionAttributes struct {
	WorkflowID       string
	Name             string
	Version          string
	Input            json.RawMessage
	TaskList         string
	WorkflowDuration *int64
	DecisionDuration *int64
}

// CompleteWorkflowExecutionAttributes carries the workflow's raw result.
type CompleteWorkflowExecutionAttributes struct {
	Result json.RawMessage
}

// TypeConfiguration is the server's notion of a registered type's defaults,
// used for the registration-diff check (ConfigurationDivergence).
type TypeConfiguration struct {
	TaskList                         string
	ExecutionStartToCloseTimeout     string // workflow only
	TaskStartToCloseTimeout          string // workflow only
	ChildPolicy                      string // workflow only
	HeartbeatTimeout                 string // activity only
	TaskScheduleToCloseTimeout       string // activity only
	TaskScheduleToStartTimeout       string // activity only
}

// ErrTypeAlreadyExists is returned by Transport.RegisterWorkflowType /
// RegisterActivityType when the type is already registered on the server.
type ErrTypeAlreadyExists struct {
	Name    string
	Version string
}

func (e *ErrTypeAlreadyExists) Error() string {
	return "type already exists: " + e.Name + "/" + e.Version
}

// Transport is the logical RPC surface the decider and activity worker
// loops consume. Production code uses HTTPTransport (http_transport.go);
// tests use an in-memory fake (faketransport_test.go).
type Transport interface {
	RegisterWorkflowType(domain string, wt WorkflowType, taskList string, childPolicy string, executionStartToClose, taskStartToClose string) error
	DescribeWorkflowType(domain string, wt WorkflowType) (TypeConfiguration, error)
	RegisterActivityType(domain string, at ActivityType, taskList, heartbeat, scheduleToClose, scheduleToStart, startToClose string) error
	DescribeActivityType(domain string, at ActivityType) (TypeConfiguration, error)

	PollForDecisionTask(domain, taskList string, nextPageToken string) (DecisionTaskResponse, error)
	PollForActivityTask(domain, taskList string) (ActivityTaskResponse, error)

	RespondDecisionTaskCompleted(taskToken string, decisions []Decision, executionContext string) error
	RespondActivityTaskCompleted(taskToken string, result json.RawMessage) error
	RespondActivityTaskFailed(taskToken string, reason string) error
	RecordActivityTaskHeartbeat(taskToken string) (bool, error)

	StartWorkflowExecution(domain, workflowID string, wt WorkflowType, taskList string, input json.RawMessage) (runID string, err error)
	TerminateWorkflowExecution(domain, workflowID, reason string) error
}
