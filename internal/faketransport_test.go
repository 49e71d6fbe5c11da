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

import "encoding/json"

// historyBuilder assembles a HistoryEvent slice for table tests, matching
// spec §8's scenario style (S1-S6): append typed events, then hand the
// result plus previousStartedEventId to ProjectHistory or a fakeTransport.
type historyBuilder struct {
	events  []HistoryEvent
	nextID  int64
}

func newHistoryBuilder() *historyBuilder {
	return &historyBuilder{nextID: 1}
}

func (b *historyBuilder) id() int64 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *historyBuilder) workflowExecutionStarted(input string) *historyBuilder {
	b.events = append(b.events, HistoryEvent{
		EventID:                                 b.id(),
		EventType:                                EventWorkflowExecutionStarted,
		WorkflowExecutionStartedEventAttributes: &WorkflowExecutionStartedAttributes{Input: json.RawMessage(input)},
	})
	return b
}

func (b *historyBuilder) decisionTaskCompleted(executionContext string) *historyBuilder {
	b.events = append(b.events, HistoryEvent{
		EventID:                              b.id(),
		EventType:                             EventDecisionTaskCompleted,
		DecisionTaskCompletedEventAttributes: &DecisionTaskCompletedAttributes{ExecutionContext: executionContext},
	})
	return b
}

func (b *historyBuilder) activityTaskScheduled(callID CallID) (int64, *historyBuilder) {
	id := b.id()
	b.events = append(b.events, HistoryEvent{
		EventID:                              id,
		EventType:                             EventActivityTaskScheduled,
		ActivityTaskScheduledEventAttributes: &ActivityTaskScheduledAttributes{ActivityID: formatCallID(callID)},
	})
	return id, b
}

func (b *historyBuilder) activityTaskCompleted(scheduledEventID int64, result string) *historyBuilder {
	b.events = append(b.events, HistoryEvent{
		EventID:                              b.id(),
		EventType:                             EventActivityTaskCompleted,
		ActivityTaskCompletedEventAttributes: &ActivityTaskCompletedAttributes{ScheduledEventID: scheduledEventID, Result: json.RawMessage(result)},
	})
	return b
}

func (b *historyBuilder) activityTaskFailed(scheduledEventID int64, reason string) *historyBuilder {
	b.events = append(b.events, HistoryEvent{
		EventID:                           b.id(),
		EventType:                          EventActivityTaskFailed,
		ActivityTaskFailedEventAttributes: &ActivityTaskFailedAttributes{ScheduledEventID: scheduledEventID, Reason: reason},
	})
	return b
}

func (b *historyBuilder) activityTaskTimedOut(scheduledEventID int64) *historyBuilder {
	b.events = append(b.events, HistoryEvent{
		EventID:                             b.id(),
		EventType:                            EventActivityTaskTimedOut,
		ActivityTaskTimedOutEventAttributes: &ActivityTaskTimedOutAttributes{ScheduledEventID: scheduledEventID},
	})
	return b
}

// fakeTransport is an in-memory Transport used across the internal test
// suite, grounded on the teacher's internal_task_handlers_test.go style of
// substituting a hand-rolled fake rather than a generated mock for the
// heavier end-to-end-ish tests; testify/mock (mocks package) is used
// for call-order/argument assertions on individual RPCs.
type fakeTransport struct {
	decisionTasks  []DecisionTaskResponse
	activityTasks  []ActivityTaskResponse
	registeredWF   map[typeKey]TypeConfiguration
	registeredAct  map[typeKey]TypeConfiguration
	completedReplies []completedDecision
	terminated     []terminatedWorkflow
	completedActivities []completedActivity
	failedActivities    []failedActivity
}

type completedDecision struct {
	TaskToken        string
	Decisions        []Decision
	ExecutionContext string
}

type terminatedWorkflow struct {
	WorkflowID string
	Reason     string
}

type completedActivity struct {
	TaskToken string
	Result    json.RawMessage
}

type failedActivity struct {
	TaskToken string
	Reason    string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		registeredWF:  make(map[typeKey]TypeConfiguration),
		registeredAct: make(map[typeKey]TypeConfiguration),
	}
}

func (f *fakeTransport) RegisterWorkflowType(domain string, wt WorkflowType, taskList, childPolicy, executionStartToClose, taskStartToClose string) error {
	key := typeKey{wt.Name, wt.Version}
	if _, exists := f.registeredWF[key]; exists {
		return &ErrTypeAlreadyExists{Name: wt.Name, Version: wt.Version}
	}
	f.registeredWF[key] = TypeConfiguration{
		TaskList: taskList, ChildPolicy: childPolicy,
		ExecutionStartToCloseTimeout: executionStartToClose, TaskStartToCloseTimeout: taskStartToClose,
	}
	return nil
}

func (f *fakeTransport) DescribeWorkflowType(domain string, wt WorkflowType) (TypeConfiguration, error) {
	return f.registeredWF[typeKey{wt.Name, wt.Version}], nil
}

func (f *fakeTransport) RegisterActivityType(domain string, at ActivityType, taskList, heartbeat, scheduleToClose, scheduleToStart, startToClose string) error {
	key := typeKey{at.Name, at.Version}
	if _, exists := f.registeredAct[key]; exists {
		return &ErrTypeAlreadyExists{Name: at.Name, Version: at.Version}
	}
	f.registeredAct[key] = TypeConfiguration{
		TaskList: taskList, HeartbeatTimeout: heartbeat,
		TaskScheduleToCloseTimeout: scheduleToClose, TaskScheduleToStartTimeout: scheduleToStart,
	}
	return nil
}

func (f *fakeTransport) DescribeActivityType(domain string, at ActivityType) (TypeConfiguration, error) {
	return f.registeredAct[typeKey{at.Name, at.Version}], nil
}

func (f *fakeTransport) PollForDecisionTask(domain, taskList, nextPageToken string) (DecisionTaskResponse, error) {
	if len(f.decisionTasks) == 0 {
		return DecisionTaskResponse{}, nil
	}
	task := f.decisionTasks[0]
	f.decisionTasks = f.decisionTasks[1:]
	return task, nil
}

func (f *fakeTransport) PollForActivityTask(domain, taskList string) (ActivityTaskResponse, error) {
	if len(f.activityTasks) == 0 {
		return ActivityTaskResponse{}, nil
	}
	task := f.activityTasks[0]
	f.activityTasks = f.activityTasks[1:]
	return task, nil
}

func (f *fakeTransport) RespondDecisionTaskCompleted(taskToken string, decisions []Decision, executionContext string) error {
	f.completedReplies = append(f.completedReplies, completedDecision{taskToken, decisions, executionContext})
	return nil
}

func (f *fakeTransport) RespondActivityTaskCompleted(taskToken string, result json.RawMessage) error {
	f.completedActivities = append(f.completedActivities, completedActivity{taskToken, result})
	return nil
}

func (f *fakeTransport) RespondActivityTaskFailed(taskToken string, reason string) error {
	f.failedActivities = append(f.failedActivities, failedActivity{taskToken, reason})
	return nil
}

func (f *fakeTransport) RecordActivityTaskHeartbeat(taskToken string) (bool, error) {
	return true, nil
}

func (f *fakeTransport) StartWorkflowExecution(domain, workflowID string, wt WorkflowType, taskList string, input json.RawMessage) (string, error) {
	return "run-" + workflowID, nil
}

func (f *fakeTransport) TerminateWorkflowExecution(domain, workflowID, reason string) error {
	f.terminated = append(f.terminated, terminatedWorkflow{workflowID, reason})
	return nil
}

var _ Transport = (*fakeTransport)(nil)
