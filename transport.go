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

import "github.com/durableflow/durableflow/internal"

// Transport is the RPC surface a Client, Worker, Decider and ActivityWorker
// all issue calls against (spec §6). HTTPTransport is the only production
// implementation shipped; tests substitute their own in-memory fake rather
// than reaching for this interface's zero value.
type Transport = internal.Transport

// HTTPTransport is a thin JSON-over-HTTP Transport, one POST per logical
// RPC with an X-Amz-Target action header -- the shape the reference
// client itself used, not an invented REST hierarchy.
type HTTPTransport = internal.HTTPTransport

// NewHTTPTransport returns an HTTPTransport posting to endpoint.
func NewHTTPTransport(endpoint string) *HTTPTransport {
	return internal.NewHTTPTransport(endpoint)
}
