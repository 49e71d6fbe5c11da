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

// outcomeKind tags the tri-state result of a scheduled remote call.
type outcomeKind int

const (
	outcomePlaceholder outcomeKind = iota
	outcomeResult
	outcomeError
)

// Outcome is the value a workflow observes for every activity or
// sub-workflow call: not yet resolved (Placeholder), resolved with a value
// (Result), or resolved with a failure reason (Error). Dereferencing it with
// Result panics with a control-flow signal the replay runtime recovers.
type Outcome struct {
	kind   outcomeKind
	raw    json.RawMessage
	reason string
}

// NewPlaceholder returns an unresolved Outcome.
func NewPlaceholder() Outcome {
	return Outcome{kind: outcomePlaceholder}
}

// NewResult returns an Outcome carrying a successfully produced raw value.
func NewResult(raw json.RawMessage) Outcome {
	return Outcome{kind: outcomeResult, raw: raw}
}

// NewError returns an Outcome carrying a short human-readable failure reason.
func NewError(reason string) Outcome {
	return Outcome{kind: outcomeError, reason: reason}
}

// IsPlaceholder reports whether the call has not yet resolved.
func (o Outcome) IsPlaceholder() bool { return o.kind == outcomePlaceholder }

// IsError reports whether the call resolved with a failure.
func (o Outcome) IsError() bool { return o.kind == outcomeError }

// IsResult reports whether the call resolved with a value.
func (o Outcome) IsResult() bool { return o.kind == outcomeResult }

// Reason returns the failure reason. Only meaningful when IsError is true.
func (o Outcome) Reason() string { return o.reason }

// Raw returns the raw JSON value carried by a Result outcome, or nil.
func (o Outcome) Raw() json.RawMessage { return o.raw }

// Result decodes a successfully resolved outcome into T.
//
// Dereferencing an unresolved Outcome must abort the current replay turn
// without failing the workflow (spec: the turn ends at the first unresolved
// dereference, retaining every earlier scheduling side effect); dereferencing
// a failed one must surface as a catchable activity error. Both are
// expressed as typed panics here, recovered by Runtime.Run — the
// trampoline-vs-exception choice the design leaves open, taken in the
// exception-flavored direction the original library used so that workflow
// code reads as plain imperative Go (`x := ctx.CallActivity(...)`; `n :=
// Result[int](x)`) with no explicit "is it ready yet" branching.
func Result[T any](o Outcome) T {
	switch o.kind {
	case outcomePlaceholder:
		panic(errSyncNeeded)
	case outcomeError:
		panic(&ActivityError{Reason: o.reason})
	}
	var v T
	if len(o.raw) == 0 {
		return v
	}
	if err := json.Unmarshal(o.raw, &v); err != nil {
		panic(&DecodeError{Err: err})
	}
	return v
}
