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

package view_test

import (
	"bytes"
	"testing"

	"github.com/buildgraph/incplan/cmd/incplan/internal/view"
)

func TestParseOutputFormat(t *testing.T) {
	cases := map[string]view.ViewType{
		"":     view.ViewHuman,
		"human": view.ViewHuman,
		"json":  view.ViewJSON,
	}
	for input, want := range cases {
		got, err := view.ParseOutputFormat(input)
		if err != nil {
			t.Fatalf("ParseOutputFormat(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseOutputFormat(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := view.ParseOutputFormat("yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNewViewer_ReturnsMatchingType(t *testing.T) {
	s := view.NewStream(&bytes.Buffer{})

	if _, ok := view.NewViewer(view.ViewHuman, s, view.LogLevelSilent).(*view.HumanView); !ok {
		t.Error("expected *HumanView for ViewHuman")
	}
	if _, ok := view.NewViewer(view.ViewJSON, s, view.LogLevelSilent).(*view.JSONView); !ok {
		t.Error("expected *JSONView for ViewJSON")
	}
}

func TestRemarkSink_ForwardsToLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	s := view.NewStream(buf)
	hv := view.NewHumanView(s, view.LogLevelInfo)

	sink := view.RemarkSink{Logger: hv.Logger()}
	sink.Remark("queuing")

	if buf.Len() == 0 {
		t.Error("expected remark to be written through the logger")
	}
}

func TestNopLogger_DiscardsOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	s := view.NewStream(buf)
	hv := view.NewHumanView(s, view.LogLevelSilent)
	hv.Logger().Info("should not appear")

	if buf.Len() != 0 {
		t.Errorf("expected silent logger to discard output, got %q", buf.String())
	}
}
