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

// CallInput is the envelope every activity and sub-workflow input is
// serialized into on the wire: positional arguments plus keyword
// arguments, matching the remote service's own {"args":[...],"kwargs":{}}
// contract. Kwargs is always encoded as an object, `{}` when a call
// carries none.
type CallInput struct {
	Args   []json.RawMessage          `json:"args"`
	Kwargs map[string]json.RawMessage `json:"kwargs"`
}

// DataConverter encodes call arguments and decodes call results. JSON is
// the only implementation shipped, matching the wire contract; it exists
// as a named, swappable seam rather than scattering encoding/json calls
// through the scheduler and runtime.
type DataConverter interface {
	EncodeCallInput(args []interface{}, kwargs map[string]interface{}) (json.RawMessage, error)
	EncodeValue(v interface{}) (json.RawMessage, error)
}

// JSONDataConverter is the DataConverter used everywhere in this module.
type JSONDataConverter struct{}

// DefaultDataConverter is the package-wide JSON converter instance; it is
// stateless so sharing it across goroutines is safe.
var DefaultDataConverter DataConverter = JSONDataConverter{}

// EncodeCallInput marshals args/kwargs into the wire envelope. Any element
// of args that is already an Outcome is unwrapped to its underlying raw
// result first -- this is how one activity's result flows into another
// call's arguments without the workflow author doing it by hand.
func (JSONDataConverter) EncodeCallInput(args []interface{}, kwargs map[string]interface{}) (json.RawMessage, error) {
	encodedArgs := make([]json.RawMessage, len(args))
	for i, a := range args {
		raw, err := encodeArg(a)
		if err != nil {
			return nil, err
		}
		encodedArgs[i] = raw
	}
	encodedKwargs := make(map[string]json.RawMessage, len(kwargs))
	for k, v := range kwargs {
		raw, err := encodeArg(v)
		if err != nil {
			return nil, err
		}
		encodedKwargs[k] = raw
	}
	return json.Marshal(CallInput{Args: encodedArgs, Kwargs: encodedKwargs})
}

// EncodeValue marshals an arbitrary workflow/activity return value.
func (JSONDataConverter) EncodeValue(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return json.RawMessage("null"), nil
	}
	return json.Marshal(v)
}

func encodeArg(a interface{}) (json.RawMessage, error) {
	if outcome, ok := a.(Outcome); ok {
		if len(outcome.Raw()) == 0 {
			return json.RawMessage("null"), nil
		}
		return outcome.Raw(), nil
	}
	if raw, ok := a.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(a)
}
