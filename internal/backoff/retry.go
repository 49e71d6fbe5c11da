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

// Package backoff implements bounded exponential backoff with jitter for
// the poll loops (spec: "the outer poll loop retries unconditionally"; this
// only bounds how long it waits between attempts, never whether it
// retries). It is deliberately narrower than a general-purpose retry
// library: there is no isRetryable predicate, because a poll failure is
// always retried regardless of kind.
package backoff

import (
	"context"
	"math/rand"
	"time"

	"github.com/facebookgo/clock"
)

// done is returned by Retrier.NextBackOff when the policy's attempt
// budget is exhausted.
const done time.Duration = -1

// RetryPolicy describes an exponential-backoff-with-jitter schedule.
type RetryPolicy struct {
	InitialInterval    time.Duration
	BackoffCoefficient float64
	MaximumInterval    time.Duration
	// MaximumAttempts caps the number of NextBackOff calls that return a
	// usable interval; zero means unlimited, matching the unbounded poll
	// loop in spec §4.G/§4.M.
	MaximumAttempts int64
	// JitterFraction is the fraction of the computed interval randomized
	// away from it, e.g. 0.2 spreads the interval +/-20%.
	JitterFraction float64
}

// NewPollRetryPolicy returns the default schedule used around
// Transport.PollForDecisionTask / PollForActivityTask: fast first retry,
// capped growth, unbounded attempts (a poll loop runs forever).
func NewPollRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    0,
		JitterFraction:     0.2,
	}
}

// Retrier tracks the mutable state (attempt count, elapsed time) of one
// RetryPolicy in use; it is not safe for concurrent use by multiple
// goroutines, matching the single poll-loop-per-instance usage here.
type Retrier struct {
	policy      RetryPolicy
	clock       clock.Clock
	startTime   time.Time
	currentAttempt int64
}

// NewRetrier returns a Retrier bound to the given clock (facebookgo/clock,
// so tests can use clock.NewMock() instead of sleeping real time).
func NewRetrier(policy RetryPolicy, c clock.Clock) *Retrier {
	if c == nil {
		c = clock.New()
	}
	return &Retrier{policy: policy, clock: c, startTime: c.Now()}
}

// Reset zeroes the attempt counter, e.g. after a successful poll.
func (r *Retrier) Reset() {
	r.currentAttempt = 0
	r.startTime = r.clock.Now()
}

// NextBackOff returns how long to wait before the next attempt, or done
// if the policy's attempt budget is exhausted.
func (r *Retrier) NextBackOff() time.Duration {
	if r.policy.MaximumAttempts > 0 && r.currentAttempt >= r.policy.MaximumAttempts {
		return done
	}
	interval := float64(r.policy.InitialInterval)
	for i := int64(0); i < r.currentAttempt; i++ {
		interval *= r.policy.BackoffCoefficient
		if time.Duration(interval) > r.policy.MaximumInterval {
			interval = float64(r.policy.MaximumInterval)
			break
		}
	}
	r.currentAttempt++

	if r.policy.JitterFraction > 0 {
		jitter := interval * r.policy.JitterFraction
		interval += jitter*2*rand.Float64() - jitter
	}
	if interval < 0 {
		interval = 0
	}
	return time.Duration(interval)
}

// Operation is the unit of work Retry wraps.
type Operation func() error

// Retry calls operation until it succeeds, ctx is cancelled, or the
// policy's attempt budget (if any) is exhausted. Every failure is
// retried unconditionally, matching the poll loop's "no backoff specified,
// implementers may add one" contract (spec §4.G) -- the addition here is
// bounded wait time between attempts, never a refusal to retry.
func Retry(ctx context.Context, operation Operation, policy RetryPolicy) error {
	r := NewRetrier(policy, nil)
	var lastErr error
	for {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		next := r.NextBackOff()
		if next == done {
			return lastErr
		}
		timer := time.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
