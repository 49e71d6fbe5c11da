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

import "fmt"

// ProjectHistory folds a decision task's event history into an
// ExecutionState: it seeds from the execution context attached to the most
// recent DecisionTaskCompleted event (if any), then replays every event
// after previousStartedEventID in order. Events at or before
// previousStartedEventID are assumed already reflected in that context and
// are skipped, mirroring the server's own "only the new tail matters"
// contract.
//
// events must already be the fully paginated list for the task (the
// decider loop drains nextPageToken before calling this).
func ProjectHistory(events []HistoryEvent, previousStartedEventID int64) (*ExecutionState, error) {
	state, err := seedFromContext(events, previousStartedEventID)
	if err != nil {
		return nil, err
	}

	seenDecisionTaskCompleted := false
	for _, event := range events {
		if event.EventID <= previousStartedEventID {
			continue
		}
		switch event.EventType {
		case EventWorkflowExecutionStarted:
			applyWorkflowExecutionStarted(state, event)
		case EventDecisionTaskCompleted:
			if seenDecisionTaskCompleted {
				return nil, &invalidHistory{Reason: "more than one DecisionTaskCompleted event in new window"}
			}
			seenDecisionTaskCompleted = true
		case EventActivityTaskScheduled:
			if err := applyActivityTaskScheduled(state, event); err != nil {
				return nil, err
			}
		case EventActivityTaskCompleted:
			if err := applyActivityTaskCompleted(state, event); err != nil {
				return nil, err
			}
		case EventActivityTaskFailed:
			if err := applyActivityTaskFailed(state, event); err != nil {
				return nil, err
			}
		case EventActivityTaskTimedOut:
			if err := applyActivityTaskTimedOut(state, event); err != nil {
				return nil, err
			}
		}
	}
	return state, nil
}

// seedFromContext locates the last DecisionTaskCompleted event at or before
// previousStartedEventID and decodes its carried context, if any. Events
// are walked in reverse so a history with many decision turns doesn't pay
// for ones we don't need.
func seedFromContext(events []HistoryEvent, previousStartedEventID int64) (*ExecutionState, error) {
	for i := len(events) - 1; i >= 0; i-- {
		event := events[i]
		if event.EventID > previousStartedEventID {
			continue
		}
		if event.EventType != EventDecisionTaskCompleted {
			continue
		}
		if event.DecisionTaskCompletedEventAttributes == nil {
			return NewExecutionState(), nil
		}
		return DecodeExecutionContext(event.DecisionTaskCompletedEventAttributes.ExecutionContext)
	}
	return NewExecutionState(), nil
}

func applyWorkflowExecutionStarted(state *ExecutionState, event HistoryEvent) {
	if event.WorkflowExecutionStartedEventAttributes == nil {
		return
	}
	state.Input = event.WorkflowExecutionStartedEventAttributes.Input
}

func applyActivityTaskScheduled(state *ExecutionState, event HistoryEvent) error {
	attrs := event.ActivityTaskScheduledEventAttributes
	if attrs == nil {
		return &invalidHistory{Reason: fmt.Sprintf("ActivityTaskScheduled event %d missing attributes", event.EventID)}
	}
	callID, err := parseCallID(attrs.ActivityID)
	if err != nil {
		return &invalidHistory{Reason: fmt.Sprintf("ActivityTaskScheduled event %d has non-numeric activityId %q", event.EventID, attrs.ActivityID)}
	}
	state.EventToCallID[event.EventID] = callID
	state.Scheduled[callID] = true
	delete(state.TimedOut, callID)
	return nil
}

func applyActivityTaskCompleted(state *ExecutionState, event HistoryEvent) error {
	attrs := event.ActivityTaskCompletedEventAttributes
	if attrs == nil {
		return &invalidHistory{Reason: fmt.Sprintf("ActivityTaskCompleted event %d missing attributes", event.EventID)}
	}
	callID, ok := state.EventToCallID[attrs.ScheduledEventID]
	if !ok {
		return &invalidHistory{Reason: fmt.Sprintf("ActivityTaskCompleted event %d references unknown scheduled event %d", event.EventID, attrs.ScheduledEventID)}
	}
	delete(state.Scheduled, callID)
	state.Results[callID] = attrs.Result
	return nil
}

func applyActivityTaskFailed(state *ExecutionState, event HistoryEvent) error {
	attrs := event.ActivityTaskFailedEventAttributes
	if attrs == nil {
		return &invalidHistory{Reason: fmt.Sprintf("ActivityTaskFailed event %d missing attributes", event.EventID)}
	}
	callID, ok := state.EventToCallID[attrs.ScheduledEventID]
	if !ok {
		return &invalidHistory{Reason: fmt.Sprintf("ActivityTaskFailed event %d references unknown scheduled event %d", event.EventID, attrs.ScheduledEventID)}
	}
	delete(state.Scheduled, callID)
	state.WithErrors[callID] = attrs.Reason
	return nil
}

func applyActivityTaskTimedOut(state *ExecutionState, event HistoryEvent) error {
	attrs := event.ActivityTaskTimedOutEventAttributes
	if attrs == nil {
		return &invalidHistory{Reason: fmt.Sprintf("ActivityTaskTimedOut event %d missing attributes", event.EventID)}
	}
	callID, ok := state.EventToCallID[attrs.ScheduledEventID]
	if !ok {
		return &invalidHistory{Reason: fmt.Sprintf("ActivityTaskTimedOut event %d references unknown scheduled event %d", event.EventID, attrs.ScheduledEventID)}
	}
	delete(state.Scheduled, callID)
	state.TimedOut[callID] = true
	if state.Retries[callID] > 0 {
		state.Retries[callID]--
	}
	return nil
}
