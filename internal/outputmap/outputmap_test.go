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

package outputmap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/buildgraph/incplan/internal/depgraph"
	"github.com/buildgraph/incplan/internal/outputmap"
)

func writeMap(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "outputmap.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_PathForAndHasEntry(t *testing.T) {
	path := writeMap(t, `
entries:
  a.swift:
    summary: build/a.swiftdeps
    object: build/a.o
`)
	m, err := outputmap.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !m.HasEntry("a.swift") {
		t.Error("expected a.swift to have an entry")
	}
	if m.HasEntry("b.swift") {
		t.Error("expected b.swift to have no entry")
	}

	summary, ok := m.PathFor("a.swift", depgraph.OutputKindSummary)
	if !ok || summary != "build/a.swiftdeps" {
		t.Errorf("PathFor(summary) = %q, %v", summary, ok)
	}
	obj, ok := m.PathFor("a.swift", depgraph.OutputKindObject)
	if !ok || obj != "build/a.o" {
		t.Errorf("PathFor(object) = %q, %v", obj, ok)
	}
}

func TestMissingOutputs(t *testing.T) {
	dir := t.TempDir()
	existingObj := filepath.Join(dir, "a.o")
	if err := os.WriteFile(existingObj, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	path := writeMap(t, `
entries:
  a.swift:
    summary: `+filepath.Join(dir, "missing.swiftdeps")+`
    object: `+existingObj+`
`)
	m, err := outputmap.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	missing := m.MissingOutputs("a.swift")
	if len(missing) != 1 {
		t.Fatalf("MissingOutputs = %v, want 1 entry", missing)
	}
}

func TestLoad_EmptyPathDisablesIncremental(t *testing.T) {
	if _, err := outputmap.Load(""); err != depgraph.ErrNoOutputFileMap {
		t.Errorf("Load(\"\") error = %v, want ErrNoOutputFileMap", err)
	}
}

func TestBasename(t *testing.T) {
	if got := outputmap.Basename("build/a.o"); got != "a.o" {
		t.Errorf("Basename = %q, want a.o", got)
	}
	if got := outputmap.Basename(""); got != "" {
		t.Errorf("Basename(\"\") = %q, want empty", got)
	}
}
