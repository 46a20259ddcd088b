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

package summary_test

import (
	"strings"
	"testing"

	"github.com/buildgraph/incplan/internal/depgraph"
	"github.com/buildgraph/incplan/internal/summary"
)

func TestParse_FullDocument(t *testing.T) {
	doc := `
definitions:
  - key: {aspect: interface, kind: topLevel, name: Widget}
    fingerprint: "a1b2c3"
  - key: {aspect: implementation, kind: member, context: Widget, name: render}
    fingerprint: "d4e5f6"
uses:
  - {aspect: interface, kind: member, context: Gadget, name: render}
externalDepends:
  - path: /usr/lib/swift/Foundation.swiftmodule
`
	parsed, err := summary.Parse(strings.NewReader(doc), depgraph.Provider("widget.swift"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(parsed.Definitions) != 2 {
		t.Fatalf("got %d definitions, want 2", len(parsed.Definitions))
	}
	if parsed.Definitions[0].Key.Designator.Kind != depgraph.TopLevel {
		t.Errorf("first definition kind = %v, want TopLevel", parsed.Definitions[0].Key.Designator.Kind)
	}
	if len(parsed.Uses) != 1 {
		t.Fatalf("got %d uses, want 1", len(parsed.Uses))
	}
	if len(parsed.ExternalDepends) != 1 || parsed.ExternalDepends[0] != "/usr/lib/swift/Foundation.swiftmodule" {
		t.Errorf("ExternalDepends = %v", parsed.ExternalDepends)
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := summary.Parse(strings.NewReader("not: valid: yaml: ["), depgraph.Provider("p"))
	if !depgraph.IsMalformedSummary(err) {
		t.Fatalf("expected MalformedSummary, got %v", err)
	}
}

func TestParse_UnknownDesignatorKind(t *testing.T) {
	doc := `
definitions:
  - key: {aspect: interface, kind: bogus, name: Widget}
    fingerprint: "x"
`
	_, err := summary.Parse(strings.NewReader(doc), depgraph.Provider("p"))
	if !depgraph.IsMalformedSummary(err) {
		t.Fatalf("expected MalformedSummary for unknown kind, got %v", err)
	}
}

func TestParse_MemberMissingContext(t *testing.T) {
	doc := `
definitions:
  - key: {aspect: interface, kind: member, name: render}
    fingerprint: "x"
`
	_, err := summary.Parse(strings.NewReader(doc), depgraph.Provider("p"))
	if !depgraph.IsMalformedSummary(err) {
		t.Fatalf("expected MalformedSummary for missing context, got %v", err)
	}
}

func TestParse_ExternalDependMissingPath(t *testing.T) {
	doc := `
externalDepends:
  - path: ""
`
	_, err := summary.Parse(strings.NewReader(doc), depgraph.Provider("p"))
	if !depgraph.IsMalformedSummary(err) {
		t.Fatalf("expected MalformedSummary for empty path, got %v", err)
	}
}

func TestParse_UnknownAspect(t *testing.T) {
	doc := `
uses:
  - {aspect: bogus, kind: topLevel, name: Widget}
`
	_, err := summary.Parse(strings.NewReader(doc), depgraph.Provider("p"))
	if !depgraph.IsMalformedSummary(err) {
		t.Fatalf("expected MalformedSummary for unknown aspect, got %v", err)
	}
}
