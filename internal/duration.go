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

import "strconv"

// durationSeconds is a whole number of seconds transmitted on the wire as
// a decimal string (spec §6: "all durations are transmitted as
// decimal-string seconds"). Keeping the conversion on one type avoids ad
// hoc strconv.Itoa calls scattered through the registry and client.
type durationSeconds int64

func (d durationSeconds) String() string { return strconv.FormatInt(int64(d), 10) }

// parseDurationSeconds parses the wire's decimal-string form back into a
// count of seconds.
func parseDurationSeconds(s string) (durationSeconds, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return durationSeconds(v), nil
}

// Default configuration per spec §6.
const (
	DefaultExecutionStartToClose int64 = 3600
	DefaultTaskStartToClose      int64 = 60
	DefaultChildPolicy                 = "TERMINATE"

	DefaultActivityHeartbeat       int64 = 60
	DefaultActivityScheduleToClose int64 = 420
	DefaultActivityScheduleToStart int64 = 120
	DefaultActivityStartToClose    int64 = 300
)
