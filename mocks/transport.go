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

// Package mocks provides a testify/mock.Mock implementation of
// internal.Transport for callers testing code built on top of this
// library (a Decider, an ActivityWorker, or a Client) without standing up
// a fake in-memory transport of their own. The internal package's own test
// suite uses a hand-rolled fakeTransport instead (cheaper to assert
// against for replay-heavy tests); this mock is for callers one level up
// who want call-order and argument expectations on individual RPCs, the
// same division of labor the teacher draws between its internal test
// fakes and its public mocks package.
package mocks

import (
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/durableflow/durableflow/internal"
)

// Transport is a mock.Mock implementing internal.Transport.
type Transport struct {
	mock.Mock
}

var _ internal.Transport = (*Transport)(nil)

func (m *Transport) RegisterWorkflowType(domain string, wt internal.WorkflowType, taskList, childPolicy, executionStartToClose, taskStartToClose string) error {
	args := m.Called(domain, wt, taskList, childPolicy, executionStartToClose, taskStartToClose)
	return args.Error(0)
}

func (m *Transport) DescribeWorkflowType(domain string, wt internal.WorkflowType) (internal.TypeConfiguration, error) {
	args := m.Called(domain, wt)
	return args.Get(0).(internal.TypeConfiguration), args.Error(1)
}

func (m *Transport) RegisterActivityType(domain string, at internal.ActivityType, taskList, heartbeat, scheduleToClose, scheduleToStart, startToClose string) error {
	args := m.Called(domain, at, taskList, heartbeat, scheduleToClose, scheduleToStart, startToClose)
	return args.Error(0)
}

func (m *Transport) DescribeActivityType(domain string, at internal.ActivityType) (internal.TypeConfiguration, error) {
	args := m.Called(domain, at)
	return args.Get(0).(internal.TypeConfiguration), args.Error(1)
}

func (m *Transport) PollForDecisionTask(domain, taskList, nextPageToken string) (internal.DecisionTaskResponse, error) {
	args := m.Called(domain, taskList, nextPageToken)
	return args.Get(0).(internal.DecisionTaskResponse), args.Error(1)
}

func (m *Transport) PollForActivityTask(domain, taskList string) (internal.ActivityTaskResponse, error) {
	args := m.Called(domain, taskList)
	return args.Get(0).(internal.ActivityTaskResponse), args.Error(1)
}

func (m *Transport) RespondDecisionTaskCompleted(taskToken string, decisions []internal.Decision, executionContext string) error {
	args := m.Called(taskToken, decisions, executionContext)
	return args.Error(0)
}

func (m *Transport) RespondActivityTaskCompleted(taskToken string, result json.RawMessage) error {
	args := m.Called(taskToken, result)
	return args.Error(0)
}

func (m *Transport) RespondActivityTaskFailed(taskToken, reason string) error {
	args := m.Called(taskToken, reason)
	return args.Error(0)
}

func (m *Transport) RecordActivityTaskHeartbeat(taskToken string) (bool, error) {
	args := m.Called(taskToken)
	return args.Bool(0), args.Error(1)
}

func (m *Transport) StartWorkflowExecution(domain, workflowID string, wt internal.WorkflowType, taskList string, input json.RawMessage) (string, error) {
	args := m.Called(domain, workflowID, wt, taskList, input)
	return args.String(0), args.Error(1)
}

func (m *Transport) TerminateWorkflowExecution(domain, workflowID, reason string) error {
	args := m.Called(domain, workflowID, reason)
	return args.Error(0)
}
