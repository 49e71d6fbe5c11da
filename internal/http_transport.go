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
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPTransport is the production Transport: a thin JSON-over-HTTP client
// against the remote workflow service's logical RPC surface (spec §6).
// Grounded on original_source/flowy/client.py's SWFClient, which is itself
// a thin wrapper posting JSON action envelopes at a single endpoint; this
// client follows the same shape (one POST per logical operation, the
// action named in the X-Amz-Target header) rather than inventing a REST
// resource hierarchy the source never had.
type HTTPTransport struct {
	Endpoint   string
	HTTPClient *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport returns a transport posting to endpoint with a
// generous client timeout suited to long-poll operations (poll calls are
// expected to block for tens of seconds).
func NewHTTPTransport(endpoint string) *HTTPTransport {
	return &HTTPTransport{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 90 * time.Second},
	}
}

func (t *HTTPTransport) post(action string, request, response interface{}) error {
	body, err := json.Marshal(request)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-amz-json-1.0")
	req.Header.Set("X-Amz-Target", action)

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		var amzErr struct {
			Type string `json:"__type"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&amzErr); decodeErr == nil && strings.HasSuffix(amzErr.Type, "TypeAlreadyExistsFault") {
			return &ErrTypeAlreadyExists{}
		}
		return fmt.Errorf("%s: bad request", action)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", action, resp.StatusCode)
	}
	if response == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(response)
}

func (t *HTTPTransport) RegisterWorkflowType(domain string, wt WorkflowType, taskList, childPolicy, executionStartToClose, taskStartToClose string) error {
	req := map[string]interface{}{
		"domain":                         domain,
		"name":                           wt.Name,
		"version":                        wt.Version,
		"defaultTaskList":                map[string]string{"name": taskList},
		"defaultChildPolicy":             childPolicy,
		"defaultExecutionStartToCloseTimeout": executionStartToClose,
		"defaultTaskStartToCloseTimeout":      taskStartToClose,
	}
	return t.post("RegisterWorkflowType", req, nil)
}

func (t *HTTPTransport) DescribeWorkflowType(domain string, wt WorkflowType) (TypeConfiguration, error) {
	req := map[string]interface{}{
		"domain":       domain,
		"workflowType": wt,
	}
	var resp struct {
		Configuration struct {
			DefaultTaskList                     struct{ Name string }
			DefaultExecutionStartToCloseTimeout string
			DefaultTaskStartToCloseTimeout       string
			DefaultChildPolicy                   string
		} `json:"configuration"`
	}
	if err := t.post("DescribeWorkflowType", req, &resp); err != nil {
		return TypeConfiguration{}, err
	}
	return TypeConfiguration{
		TaskList:                     resp.Configuration.DefaultTaskList.Name,
		ExecutionStartToCloseTimeout: resp.Configuration.DefaultExecutionStartToCloseTimeout,
		TaskStartToCloseTimeout:      resp.Configuration.DefaultTaskStartToCloseTimeout,
		ChildPolicy:                  resp.Configuration.DefaultChildPolicy,
	}, nil
}

func (t *HTTPTransport) RegisterActivityType(domain string, at ActivityType, taskList, heartbeat, scheduleToClose, scheduleToStart, startToClose string) error {
	req := map[string]interface{}{
		"domain":                             domain,
		"name":                               at.Name,
		"version":                            at.Version,
		"defaultTaskList":                    map[string]string{"name": taskList},
		"defaultTaskHeartbeatTimeout":         heartbeat,
		"defaultTaskScheduleToCloseTimeout":   scheduleToClose,
		"defaultTaskScheduleToStartTimeout":   scheduleToStart,
		"defaultTaskStartToCloseTimeout":      startToClose,
	}
	return t.post("RegisterActivityType", req, nil)
}

func (t *HTTPTransport) DescribeActivityType(domain string, at ActivityType) (TypeConfiguration, error) {
	req := map[string]interface{}{
		"domain":       domain,
		"activityType": at,
	}
	var resp struct {
		Configuration struct {
			DefaultTaskList                   struct{ Name string }
			DefaultTaskHeartbeatTimeout        string
			DefaultTaskScheduleToCloseTimeout  string
			DefaultTaskScheduleToStartTimeout  string
			DefaultTaskStartToCloseTimeout     string
		} `json:"configuration"`
	}
	if err := t.post("DescribeActivityType", req, &resp); err != nil {
		return TypeConfiguration{}, err
	}
	return TypeConfiguration{
		TaskList:                   resp.Configuration.DefaultTaskList.Name,
		HeartbeatTimeout:           resp.Configuration.DefaultTaskHeartbeatTimeout,
		TaskScheduleToCloseTimeout: resp.Configuration.DefaultTaskScheduleToCloseTimeout,
		TaskScheduleToStartTimeout: resp.Configuration.DefaultTaskScheduleToStartTimeout,
	}, nil
}

func (t *HTTPTransport) PollForDecisionTask(domain, taskList, nextPageToken string) (DecisionTaskResponse, error) {
	req := map[string]interface{}{
		"domain":        domain,
		"taskList":      map[string]string{"name": taskList},
		"reverseOrder":  true,
		"nextPageToken": nextPageToken,
	}
	var resp DecisionTaskResponse
	if err := t.post("PollForDecisionTask", req, &resp); err != nil {
		return DecisionTaskResponse{}, err
	}
	return resp, nil
}

func (t *HTTPTransport) PollForActivityTask(domain, taskList string) (ActivityTaskResponse, error) {
	req := map[string]interface{}{
		"domain":   domain,
		"taskList": map[string]string{"name": taskList},
	}
	var resp ActivityTaskResponse
	if err := t.post("PollForActivityTask", req, &resp); err != nil {
		return ActivityTaskResponse{}, err
	}
	return resp, nil
}

func (t *HTTPTransport) RespondDecisionTaskCompleted(taskToken string, decisions []Decision, executionContext string) error {
	req := map[string]interface{}{
		"taskToken":        taskToken,
		"decisions":        decisions,
		"executionContext": executionContext,
	}
	return t.post("RespondDecisionTaskCompleted", req, nil)
}

func (t *HTTPTransport) RespondActivityTaskCompleted(taskToken string, result json.RawMessage) error {
	req := map[string]interface{}{"taskToken": taskToken, "result": string(result)}
	return t.post("RespondActivityTaskCompleted", req, nil)
}

func (t *HTTPTransport) RespondActivityTaskFailed(taskToken, reason string) error {
	req := map[string]interface{}{"taskToken": taskToken, "reason": reason}
	return t.post("RespondActivityTaskFailed", req, nil)
}

func (t *HTTPTransport) RecordActivityTaskHeartbeat(taskToken string) (bool, error) {
	req := map[string]interface{}{"taskToken": taskToken}
	var resp struct {
		CancelRequested bool `json:"cancelRequested"`
	}
	if err := t.post("RecordActivityTaskHeartbeat", req, &resp); err != nil {
		return false, err
	}
	return !resp.CancelRequested, nil
}

func (t *HTTPTransport) StartWorkflowExecution(domain, workflowID string, wt WorkflowType, taskList string, input json.RawMessage) (string, error) {
	req := map[string]interface{}{
		"domain":       domain,
		"workflowId":   workflowID,
		"workflowType": wt,
		"taskList":     map[string]string{"name": taskList},
		"input":        string(input),
	}
	var resp struct {
		RunID string `json:"runId"`
	}
	if err := t.post("StartWorkflowExecution", req, &resp); err != nil {
		return "", err
	}
	return resp.RunID, nil
}

func (t *HTTPTransport) TerminateWorkflowExecution(domain, workflowID, reason string) error {
	req := map[string]interface{}{
		"domain":     domain,
		"workflowId": workflowID,
		"reason":     reason,
	}
	return t.post("TerminateWorkflowExecution", req, nil)
}
