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

package changedetector_test

import (
	"testing"
	"time"

	"github.com/buildgraph/incplan/internal/buildrecord"
	"github.com/buildgraph/incplan/internal/changedetector"
)

func TestClassify_NewlyAddedWhenNoPriorRecord(t *testing.T) {
	rec := buildrecord.New(time.Now())
	got := changedetector.Classify(rec, "new.swift", time.Now())
	if got != changedetector.NewlyAdded {
		t.Errorf("Classify = %v, want NewlyAdded", got)
	}
}

func TestClassify_SkipWhenUpToDateAndUnchanged(t *testing.T) {
	modTime := time.Unix(1700000000, 0)
	rec := buildrecord.New(time.Now())
	rec.Set("a.swift", buildrecord.UpToDate, modTime)

	got := changedetector.Classify(rec, "a.swift", modTime)
	if got != changedetector.Skip {
		t.Errorf("Classify = %v, want Skip", got)
	}
}

func TestClassify_SkipIgnoresSubsecondDrift(t *testing.T) {
	rec := buildrecord.New(time.Now())
	rec.Set("a.swift", buildrecord.UpToDate, time.Unix(1700000000, 0))

	got := changedetector.Classify(rec, "a.swift", time.Unix(1700000000, 999999999))
	if got != changedetector.Skip {
		t.Errorf("Classify = %v, want Skip despite sub-second drift", got)
	}
}

func TestClassify_ChangedWhenModTimeDiffers(t *testing.T) {
	rec := buildrecord.New(time.Now())
	rec.Set("a.swift", buildrecord.UpToDate, time.Unix(1700000000, 0))

	got := changedetector.Classify(rec, "a.swift", time.Unix(1700000001, 0))
	if got != changedetector.Changed {
		t.Errorf("Classify = %v, want Changed", got)
	}
}

func TestClassify_CascadingFromPriorInterruptedBuild(t *testing.T) {
	rec := buildrecord.New(time.Now())
	rec.Set("a.swift", buildrecord.NeedsCascadingBuild, time.Unix(1700000000, 0))

	got := changedetector.Classify(rec, "a.swift", time.Unix(1700000000, 0))
	if got != changedetector.ChangedCascading {
		t.Errorf("Classify = %v, want ChangedCascading", got)
	}
	if !got.Cascading() {
		t.Error("expected ChangedCascading.Cascading() == true")
	}
}

func TestClassify_NonCascadingFromPriorInterruptedBuild(t *testing.T) {
	rec := buildrecord.New(time.Now())
	rec.Set("a.swift", buildrecord.NeedsNonCascadingBuild, time.Unix(1700000000, 0))

	got := changedetector.Classify(rec, "a.swift", time.Unix(1700000000, 0))
	if got != changedetector.ChangedNonCascading {
		t.Errorf("Classify = %v, want ChangedNonCascading", got)
	}
	if got.Cascading() {
		t.Error("expected ChangedNonCascading.Cascading() == false")
	}
}

func TestIsCompileCandidate(t *testing.T) {
	if changedetector.Skip.IsCompileCandidate() {
		t.Error("Skip should not be a compile candidate")
	}
	for _, c := range []changedetector.Classification{
		changedetector.Changed, changedetector.NewlyAdded,
		changedetector.ChangedCascading, changedetector.ChangedNonCascading,
	} {
		if !c.IsCompileCandidate() {
			t.Errorf("%v should be a compile candidate", c)
		}
	}
}
