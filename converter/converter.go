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

// Package converter is the public codec seam callers configure a Client
// or a Worker with, mirroring the teacher's own separate converter
// package: the SDK ships its payload conversion as an importable package
// rather than folding it into internal, so application code never needs
// to reach into internal just to pick a DataConverter. This package holds
// a single JSON implementation, narrowed to this library's actual wire
// contract ({"args": [...], "kwargs": {...}} envelopes).
package converter

import (
	"github.com/durableflow/durableflow/internal"
)

// DataConverter encodes call arguments and decodes call results.
type DataConverter = internal.DataConverter

// Default is the package-wide JSON converter, safe for concurrent use
// across every decider and activity worker loop in a process.
var Default DataConverter = internal.JSONDataConverter{}
