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
	"time"

	"github.com/uber-go/tally"
)

// Metric names emitted on the scope handed to WorkerOptions. Kept as named
// constants rather than scattered literals so a rename touches one place.
const (
	MetricDecisionsScheduled  = "decisions.scheduled"
	MetricActivitiesCompleted = "activities.completed"
	MetricActivitiesFailed    = "activities.failed"
	MetricActivitiesTimedOut  = "activities.timedout"
	MetricWorkflowsCompleted  = "workflows.completed"
	MetricWorkflowsTerminated = "workflows.terminated"
	MetricDecisionTurnLatency = "decision.turn.latency"
	MetricPollErrors          = "poll.errors"
)

// NopScope returns a scope that drops every metric, used as the
// zero-value default for WorkerOptions.Scope.
func NopScope() tally.Scope {
	scope, _ := tally.NewRootScope(tally.ScopeOptions{Reporter: tally.NullStatsReporter}, 0)
	return scope
}

// RecordDecisionTurn emits the counters and timer for one completed
// decider turn: how many activities/sub-workflows it scheduled and how
// long the replay itself took. Metrics are side-channel only -- nothing
// on the determinism-critical path depends on whether this call succeeds.
func RecordDecisionTurn(scope tally.Scope, scheduled int, elapsed time.Duration) {
	if scope == nil {
		return
	}
	scope.Counter(MetricDecisionsScheduled).Inc(int64(scheduled))
	scope.Timer(MetricDecisionTurnLatency).Record(elapsed)
}
