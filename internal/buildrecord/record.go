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

// Package buildrecord loads and saves the prior build record: for each
// previously-seen input, its classification status and modification
// time, plus the prior build's start time.
//
// The on-disk loader follows the usual CLI-config loading pattern:
// stat the path, reject the wrong extension, read, unmarshal into a
// typed struct, wrap every error with the path.
package buildrecord

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Status is the prior build's classification of a single input.
type Status string

const (
	UpToDate               Status = "upToDate"
	NewlyAdded             Status = "newlyAdded"
	NeedsCascadingBuild    Status = "needsCascadingBuild"
	NeedsNonCascadingBuild Status = "needsNonCascadingBuild"
)

// InputRecord is the persisted state for one input.
type InputRecord struct {
	Status          Status `yaml:"status"`
	PreviousModTime int64  `yaml:"previousModTime"` // whole seconds since epoch
}

// Record is the full prior build record.
type Record struct {
	BuildStartTime int64                  `yaml:"buildStartTime"` // whole seconds since epoch
	Inputs         map[string]InputRecord `yaml:"inputs"`
}

// New returns an empty record stamped with the given build start time.
func New(buildStartTime time.Time) *Record {
	return &Record{
		BuildStartTime: AsOfSeconds(buildStartTime),
		Inputs:         make(map[string]InputRecord),
	}
}

// AsOfSeconds truncates t to whole seconds since epoch. The prior record
// format stores seconds: implementations must compare
// in whole seconds so sub-second floating point differences never cause
// spurious rebuilds.
func AsOfSeconds(t time.Time) int64 { return t.Unix() }

// BuildStart returns the prior build's start time as a time.Time.
func (r *Record) BuildStart() time.Time { return time.Unix(r.BuildStartTime, 0) }

// Lookup returns the prior record for inputPath, and whether one exists.
// A missing prior record is treated as "newly added" by the change
// detector, not as an error here.
func (r *Record) Lookup(inputPath string) (InputRecord, bool) {
	rec, ok := r.Inputs[inputPath]
	return rec, ok
}

// Set records the outcome for inputPath, used when building the updated
// record to persist on exit.
func (r *Record) Set(inputPath string, status Status, modTime time.Time) {
	r.Inputs[inputPath] = InputRecord{Status: status, PreviousModTime: AsOfSeconds(modTime)}
}

// Load reads a build record from path.
func Load(path string) (*Record, error) {
	if path == "" {
		return nil, fmt.Errorf("buildrecord: %w", errNoPath)
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("buildrecord: failed to parse %q: %w", path, err)
	}
	if r.Inputs == nil {
		r.Inputs = make(map[string]InputRecord)
	}
	return &r, nil
}

// Save writes the record to path as YAML.
func (r *Record) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("buildrecord: failed to encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("buildrecord: failed to write %q: %w", path, err)
	}
	return nil
}

var errNoPath = fmt.Errorf("no build record path given")

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("buildrecord: failed to access %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("buildrecord: %q is a directory, expected a build record file", path)
	}
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("buildrecord: %q must have a .yaml or .yml extension", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("buildrecord: failed to read %q: %w", path, err)
	}
	return content, nil
}
