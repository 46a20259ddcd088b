// Copyright 2026 The incplan Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package remark formats the planner's user-visible diagnostics:
// "queuing/skipping/scheduling" notes and per-job lifecycle messages,
// all at remark level rather than warning or error.
package remark

import "fmt"

// Compile describes one input's (optional) reserved output paths, used
// only to render the trailing "{compile: ...}" segment.
type Compile struct {
	OutputBasename string
	InputBasename  string
	// HasOutput is false when no output-file-map entry exists for this
	// input; the trailing segment is then omitted entirely.
	HasOutput bool
}

// Sink receives formatted remarks. cmd/incplan wires a Sink backed by
// its view logger (slog+tint, or JSON with --output json); a nil Sink (the zero value of a caller's field) means remarks are
// simply dropped.
type Sink interface {
	Remark(message string)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(message string)

// Remark implements Sink.
func (f SinkFunc) Remark(message string) { f(message) }

// Format renders message with the canonical trailing segment:
//
//	<message> {compile: <output-basename> <= <input-basename>}
//
// The segment is omitted when c.HasOutput is false.
func Format(message string, c Compile) string {
	if !c.HasOutput {
		return message
	}
	return fmt.Sprintf("%s {compile: %s <= %s}", message, c.OutputBasename, c.InputBasename)
}

// Emit formats message with c and sends it to sink, if sink is non-nil.
func Emit(sink Sink, message string, c Compile) {
	if sink == nil {
		return
	}
	sink.Remark(Format(message, c))
}

// Queuing, Skipping, and Scheduling are the canonical per-input remark
// verbs.
func Queuing(sink Sink, c Compile)    { Emit(sink, "queuing", c) }
func Skipping(sink Sink, c Compile)   { Emit(sink, "skipping", c) }
func Scheduling(sink Sink, c Compile) { Emit(sink, "scheduling", c) }

// Disabling renders one of the fixed disabling-condition messages, with
// no trailing compile segment (there is no single input to attribute
// it to).
func Disabling(sink Sink, reason string) {
	Emit(sink, "disabling incremental build: "+reason, Compile{})
}
