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

package buildrecord_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/buildgraph/incplan/internal/buildrecord"
)

func TestNew_StartsEmpty(t *testing.T) {
	start := time.Unix(1700000000, 0)
	rec := buildrecord.New(start)

	if rec.BuildStartTime != start.Unix() {
		t.Errorf("BuildStartTime = %d, want %d", rec.BuildStartTime, start.Unix())
	}
	if _, ok := rec.Lookup("anything.swift"); ok {
		t.Error("expected empty record to have no entries")
	}
}

func TestSetAndLookup_RoundTrips(t *testing.T) {
	rec := buildrecord.New(time.Now())
	modTime := time.Unix(1700000042, 123456789)

	rec.Set("a.swift", buildrecord.UpToDate, modTime)

	got, ok := rec.Lookup("a.swift")
	if !ok {
		t.Fatal("expected entry to be found")
	}
	if got.Status != buildrecord.UpToDate {
		t.Errorf("Status = %v, want UpToDate", got.Status)
	}
	if got.PreviousModTime != buildrecord.AsOfSeconds(modTime) {
		t.Errorf("PreviousModTime = %d, want %d", got.PreviousModTime, buildrecord.AsOfSeconds(modTime))
	}
}

func TestAsOfSeconds_TruncatesSubsecond(t *testing.T) {
	a := time.Unix(1700000000, 1)
	b := time.Unix(1700000000, 999999999)
	if buildrecord.AsOfSeconds(a) != buildrecord.AsOfSeconds(b) {
		t.Error("expected sub-second differences to be truncated away")
	}
}

func TestLoadSave_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.yaml")

	rec := buildrecord.New(time.Unix(1700000000, 0))
	rec.Set("a.swift", buildrecord.NeedsCascadingBuild, time.Unix(1700000001, 0))

	if err := rec.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := buildrecord.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := loaded.Lookup("a.swift")
	if !ok || got.Status != buildrecord.NeedsCascadingBuild {
		t.Errorf("loaded record mismatch: %+v, ok=%v", got, ok)
	}
}

func TestLoad_RejectsWrongExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.txt")
	if err := buildrecord.New(time.Now()).Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := buildrecord.Load(path); err == nil {
		t.Error("expected error loading a .txt path")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	if _, err := buildrecord.Load(""); err == nil {
		t.Error("expected error for empty path")
	}
}
