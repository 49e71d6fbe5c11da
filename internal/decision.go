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

// DecisionReply is what the decider loop sends back to the server for one
// decision task: either a batch of schedule decisions plus a context
// snapshot, a workflow completion, or a workflow termination. Exactly one
// of Decisions/Result/TerminateReason is meaningful, selected by Kind.
type DecisionReply struct {
	Kind             DecisionReplyKind
	Decisions        []Decision
	ExecutionContext string
	Result           []byte
	TerminateReason  string
}

// DecisionReplyKind tags which branch of DecisionReply is populated.
type DecisionReplyKind int

const (
	DecisionReplySchedule DecisionReplyKind = iota
	DecisionReplyComplete
	DecisionReplyTerminate
)

// BuildDecisionReply turns one replay turn's outcome into the reply the
// decider loop acts on: schedule and complete replies go to
// Transport.RespondDecisionTaskCompleted, a terminate reply to
// Transport.TerminateWorkflowExecution.
//
// Precedence, matching §4.F: termination (an unhandled failure was
// signalled) wins outright; otherwise any pending schedule requests are
// emitted together with a fresh context snapshot; only when there is
// nothing pending and nothing still outstanding on the server does the
// turn complete the workflow.
func BuildDecisionReply(outcome RunOutcome, state *ExecutionState) (DecisionReply, error) {
	if outcome.Terminated {
		return DecisionReply{Kind: DecisionReplyTerminate, TerminateReason: outcome.TerminateReason}, nil
	}

	if len(outcome.Pending) > 0 {
		return buildScheduleReply(outcome, state)
	}

	if len(state.Scheduled) > 0 {
		// Nothing new to schedule this turn, but activities are still
		// outstanding on the server; re-attach the (unchanged) context so
		// the next decision task can resume without re-deriving it.
		ctx, err := state.Serialize()
		if err != nil {
			return DecisionReply{}, err
		}
		return DecisionReply{Kind: DecisionReplySchedule, ExecutionContext: ctx}, nil
	}

	if outcome.Completed {
		return DecisionReply{Kind: DecisionReplyComplete, Result: outcome.Result}, nil
	}

	// Blocked with nothing pending, nothing outstanding, and no
	// completion: the workflow made no progress this turn (e.g. it
	// dereferenced a value that can never resolve because the call was
	// never actually scheduled). Re-attach context and let the next
	// decision task retry; there is nothing new to tell the server.
	ctx, err := state.Serialize()
	if err != nil {
		return DecisionReply{}, err
	}
	return DecisionReply{Kind: DecisionReplySchedule, ExecutionContext: ctx}, nil
}

func buildScheduleReply(outcome RunOutcome, state *ExecutionState) (DecisionReply, error) {
	decisions := make([]Decision, 0, len(outcome.Pending))
	for _, p := range outcome.Pending {
		decisions = append(decisions, pendingToDecision(p))
	}
	ctx, err := state.Serialize()
	if err != nil {
		return DecisionReply{}, err
	}
	return DecisionReply{Kind: DecisionReplySchedule, Decisions: decisions, ExecutionContext: ctx}, nil
}

func pendingToDecision(p PendingCall) Decision {
	switch p.Kind {
	case PendingSubworkflow:
		return Decision{
			Type: DecisionStartChildWorkflowExecution,
			StartChildWorkflowExecutionAttributes: &StartChildWorkflowExecutionAttributes{
				WorkflowID:       formatCallID(p.CallID),
				Name:             p.Name,
				Version:          p.Version,
				Input:            p.Input,
				TaskList:         p.SubworkflowOptions.TaskList,
				WorkflowDuration: p.SubworkflowOptions.WorkflowDuration,
				DecisionDuration: p.SubworkflowOptions.DecisionDuration,
			},
		}
	default:
		return Decision{
			Type: DecisionScheduleActivityTask,
			ScheduleActivityTaskAttributes: &ScheduleActivityTaskAttributes{
				ActivityID:             formatCallID(p.CallID),
				Name:                   p.Name,
				Version:                p.Version,
				Input:                  p.Input,
				TaskList:               p.ActivityOptions.TaskList,
				HeartbeatTimeout:       p.ActivityOptions.Heartbeat,
				ScheduleToCloseTimeout: p.ActivityOptions.ScheduleToClose,
				ScheduleToStartTimeout: p.ActivityOptions.ScheduleToStart,
				StartToCloseTimeout:    p.ActivityOptions.StartToClose,
			},
		}
	}
}
