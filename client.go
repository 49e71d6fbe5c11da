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
	"github.com/pborman/uuid"

	"github.com/durableflow/durableflow/converter"
	"github.com/durableflow/durableflow/internal"
)

// Client starts and terminates workflow executions from outside a worker
// process -- a CLI, an HTTP handler, a cron job -- anything that needs to
// kick off work without itself polling for decision or activity tasks.
type Client struct {
	Domain    string
	Transport internal.Transport
	// Converter encodes the arguments StartWorkflow/StartWorkflowKw pass
	// along; a nil value falls back to converter.Default, the same JSON
	// DataConverter every worker loop uses unless overridden.
	Converter converter.DataConverter
}

// NewClient returns a Client issuing RPCs against transport for domain.
func NewClient(domain string, transport internal.Transport) *Client {
	return &Client{Domain: domain, Transport: transport}
}

func (c *Client) converter() converter.DataConverter {
	if c.Converter == nil {
		return converter.Default
	}
	return c.Converter
}

// StartWorkflowOptions are the per-execution overrides a caller can supply;
// a zero value means "use the type's registered defaults".
type StartWorkflowOptions struct {
	// WorkflowID, if empty, is generated as a random UUID (pborman/uuid,
	// matching the dependency already pinned for this module -- nothing
	// elsewhere in this codebase imports google/uuid).
	WorkflowID string
	TaskList   string
}

// StartWorkflow starts a new execution of the named workflow type and
// returns the (workflowID, runID) pair identifying it: the workflowID is
// opts.WorkflowID or a generated UUID, the runID is assigned by the server.
func (c *Client) StartWorkflow(name, version string, opts StartWorkflowOptions, args ...interface{}) (workflowID, runID string, err error) {
	return c.StartWorkflowKw(name, version, opts, nil, args...)
}

// StartWorkflowKw is StartWorkflow with keyword arguments.
func (c *Client) StartWorkflowKw(name, version string, opts StartWorkflowOptions, kwargs map[string]interface{}, args ...interface{}) (workflowID, runID string, err error) {
	workflowID = opts.WorkflowID
	if workflowID == "" {
		workflowID = uuid.New()
	}
	input, err := c.converter().EncodeCallInput(args, kwargs)
	if err != nil {
		return "", "", err
	}
	runID, err = c.Transport.StartWorkflowExecution(
		c.Domain, workflowID,
		WorkflowType{Name: name, Version: version},
		opts.TaskList, input,
	)
	if err != nil {
		return "", "", err
	}
	return workflowID, runID, nil
}

// TerminateWorkflow force-terminates a running execution out of band,
// exactly as the decider itself does when a workflow body fails --
// TerminateWorkflowExecution is its own RPC, never a decision batched into
// RespondDecisionTaskCompleted (spec §6).
func (c *Client) TerminateWorkflow(workflowID, reason string) error {
	return c.Transport.TerminateWorkflowExecution(c.Domain, workflowID, reason)
}
