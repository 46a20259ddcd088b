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

package view

// ViewType selects how the CLI renders output.
type ViewType int

const (
	ViewHuman ViewType = iota
	ViewJSON
)

// ParseOutputFormat maps the -o/--output flag value to a ViewType.
func ParseOutputFormat(s string) (ViewType, error) {
	switch s {
	case "", "human":
		return ViewHuman, nil
	case "json":
		return ViewJSON, nil
	default:
		return ViewHuman, errUnknownFormat(s)
	}
}

type errUnknownFormat string

func (e errUnknownFormat) Error() string { return "unknown output format: " + string(e) }

var _ Viewer = (*HumanView)(nil)
var _ Viewer = (*JSONView)(nil)

// Viewer exposes a Logger appropriate to the chosen output format.
type Viewer interface {
	Logger() Logger
}

// NewViewer constructs the Viewer for vt.
func NewViewer(vt ViewType, s *Stream, level LogLevel) Viewer {
	switch vt {
	case ViewHuman:
		return NewHumanView(s, level)
	case ViewJSON:
		return NewJSONView(s, level)
	default:
		panic("unknown view type")
	}
}

// HumanView renders remarks and logs for a terminal.
type HumanView struct {
	*Stream
	logger Logger
}

// NewHumanView constructs a HumanView.
func NewHumanView(s *Stream, level LogLevel) *HumanView {
	var logger Logger
	if level == LogLevelSilent {
		logger = NewNopLogger()
	} else {
		logger = NewHumanLogger(s.Writer, level)
	}
	return &HumanView{Stream: s, logger: logger}
}

// Logger implements Viewer.
func (h *HumanView) Logger() Logger { return h.logger }

// JSONView renders remarks and logs as JSON lines.
type JSONView struct {
	*Stream
	logger Logger
}

// NewJSONView constructs a JSONView.
func NewJSONView(s *Stream, level LogLevel) *JSONView {
	var logger Logger
	if level == LogLevelSilent {
		logger = NewNopLogger()
	} else {
		logger = NewJSONLogger(s.Writer, level)
	}
	return &JSONView{Stream: s, logger: logger}
}

// Logger implements Viewer.
func (j *JSONView) Logger() Logger { return j.logger }

// RemarkSink adapts a Logger to internal/remark.Sink: remarks are
// always logged at Info level, regardless of the view's own debug
// verbosity, since they are the planner's primary user-facing output
// rather than a debugging aid.
type RemarkSink struct {
	Logger Logger
}

// Remark implements remark.Sink.
func (r RemarkSink) Remark(message string) { r.Logger.Info(message) }
