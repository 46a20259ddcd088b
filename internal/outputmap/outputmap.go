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

// Package outputmap loads the output-file map: the (inputPath,
// outputKind) -> outputPath mapping that supplies summary-file and
// object-file paths. A missing map disables incremental mode entirely.
package outputmap

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/buildgraph/incplan/internal/depgraph"
)

// Entry is the pair of output paths declared for one input.
type Entry struct {
	Summary string `yaml:"summary"`
	Object  string `yaml:"object"`
}

// OutputMap is the parsed output-file map.
type OutputMap struct {
	Entries map[string]Entry `yaml:"entries"`
}

// Load reads an output-file map from path.
func Load(path string) (*OutputMap, error) {
	if path == "" {
		return nil, depgraph.ErrNoOutputFileMap
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var m OutputMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("outputmap: failed to parse %q: %w", path, err)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]Entry)
	}
	return &m, nil
}

// PathFor returns the declared output path for (inputPath, kind), and
// whether an entry exists at all.
func (m *OutputMap) PathFor(inputPath string, kind depgraph.OutputKind) (string, bool) {
	e, ok := m.Entries[inputPath]
	if !ok {
		return "", false
	}
	switch kind {
	case depgraph.OutputKindSummary:
		return e.Summary, e.Summary != ""
	case depgraph.OutputKindObject:
		return e.Object, e.Object != ""
	default:
		return "", false
	}
}

// HasEntry reports whether inputPath has any output-file-map entry at
// all — used to detect inputs with no reserved summary-file path.
func (m *OutputMap) HasEntry(inputPath string) bool {
	_, ok := m.Entries[inputPath]
	return ok
}

// MissingOutputs reports which of inputPath's declared outputs do not
// exist on disk.
func (m *OutputMap) MissingOutputs(inputPath string) []string {
	e, ok := m.Entries[inputPath]
	if !ok {
		return nil
	}
	var missing []string
	for _, p := range []string{e.Summary, e.Object} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	return missing
}

// Basename is a small helper for remark formatting.
func Basename(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("outputmap: failed to access %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("outputmap: %q is a directory, expected an output file map", path)
	}
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("outputmap: %q must have a .yaml or .yml extension", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("outputmap: failed to read %q: %w", path, err)
	}
	return content, nil
}
