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
	"sort"
	"strconv"
)

// CallID identifies a single remote call within a workflow execution, in
// the order the workflow code requested it. Stability of this sequence
// across replays is the single most important invariant of the whole
// system: identical workflow code with identical input must always produce
// identical call-id assignments.
type CallID int64

// ExecutionState is the in-memory, call-id indexed projection of an
// execution's history, restored from (or folded into) the opaque execution
// context the server round-trips between decision turns.
type ExecutionState struct {
	EventToCallID map[int64]CallID
	Retries       map[CallID]int
	Scheduled     map[CallID]bool
	Results       map[CallID]json.RawMessage
	TimedOut      map[CallID]bool
	WithErrors    map[CallID]string
	Input         json.RawMessage
}

// NewExecutionState returns an empty, ready-to-use state.
func NewExecutionState() *ExecutionState {
	return &ExecutionState{
		EventToCallID: make(map[int64]CallID),
		Retries:       make(map[CallID]int),
		Scheduled:     make(map[CallID]bool),
		Results:       make(map[CallID]json.RawMessage),
		TimedOut:      make(map[CallID]bool),
		WithErrors:    make(map[CallID]string),
	}
}

// executionContextWire is the JSON shape round-tripped through the server
// as the opaque "executionContext" string. Field names are part of the
// wire contract and must not change independently of the remote service.
type executionContextWire struct {
	EventToCallID map[string]CallID         `json:"event_to_call_id"`
	Retries       map[string]int            `json:"retries"`
	Scheduled     []CallID                  `json:"scheduled"`
	Results       map[string]json.RawMessage `json:"results"`
	TimedOut      []CallID                  `json:"timed_out"`
	WithErrors    map[string]string          `json:"with_errors"`
	Input         json.RawMessage            `json:"input"`
}

// DecodeExecutionContext parses the opaque context string attached to the
// most recent DecisionTaskCompleted event. The transport flattens
// integer-keyed maps to string keys (a generic JSON limitation, not
// specific to this server); every map keyed by call-id must be re-coerced
// back to an integer on the way in. Getting this wrong silently drops
// retry counters and scheduled/result state, so this is covered thoroughly
// in tests.
func DecodeExecutionContext(raw string) (*ExecutionState, error) {
	if raw == "" {
		return NewExecutionState(), nil
	}
	var wire executionContextWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, &ContextDecodeFailure{Err: err}
	}

	state := NewExecutionState()
	for eventIDStr, callID := range wire.EventToCallID {
		eventID, err := parseEventID(eventIDStr)
		if err != nil {
			return nil, &ContextDecodeFailure{Err: err}
		}
		state.EventToCallID[eventID] = callID
	}
	for callIDStr, retries := range wire.Retries {
		callID, err := parseCallID(callIDStr)
		if err != nil {
			return nil, &ContextDecodeFailure{Err: err}
		}
		state.Retries[callID] = retries
	}
	for _, callID := range wire.Scheduled {
		state.Scheduled[callID] = true
	}
	for callIDStr, raw := range wire.Results {
		callID, err := parseCallID(callIDStr)
		if err != nil {
			return nil, &ContextDecodeFailure{Err: err}
		}
		state.Results[callID] = raw
	}
	for _, callID := range wire.TimedOut {
		state.TimedOut[callID] = true
	}
	for callIDStr, reason := range wire.WithErrors {
		callID, err := parseCallID(callIDStr)
		if err != nil {
			return nil, &ContextDecodeFailure{Err: err}
		}
		state.WithErrors[callID] = reason
	}
	state.Input = wire.Input
	return state, nil
}

// Serialize produces the opaque context string attached to a decision
// reply, with set-valued fields sorted so repeated serialization of
// unchanged state is byte-stable (the determinism property tests rely on
// this: "modulo set-to-list key order, which must itself be sorted or
// otherwise canonicalised").
func (s *ExecutionState) Serialize() (string, error) {
	wire := executionContextWire{
		EventToCallID: make(map[string]CallID, len(s.EventToCallID)),
		Retries:       make(map[string]int, len(s.Retries)),
		Scheduled:     sortedCallIDs(s.Scheduled),
		Results:       make(map[string]json.RawMessage, len(s.Results)),
		TimedOut:      sortedCallIDs(s.TimedOut),
		WithErrors:    make(map[string]string, len(s.WithErrors)),
		Input:         s.Input,
	}
	for eventID, callID := range s.EventToCallID {
		wire.EventToCallID[formatEventID(eventID)] = callID
	}
	for callID, retries := range s.Retries {
		wire.Retries[formatCallID(callID)] = retries
	}
	for callID, raw := range s.Results {
		wire.Results[formatCallID(callID)] = raw
	}
	for callID, reason := range s.WithErrors {
		wire.WithErrors[formatCallID(callID)] = reason
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func sortedCallIDs(set map[CallID]bool) []CallID {
	result := make([]CallID, 0, len(set))
	for callID, present := range set {
		if present {
			result = append(result, callID)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func parseCallID(s string) (CallID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return CallID(v), nil
}

func parseEventID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func formatCallID(id CallID) string {
	return strconv.FormatInt(int64(id), 10)
}

func formatEventID(id int64) string {
	return strconv.FormatInt(id, 10)
}
