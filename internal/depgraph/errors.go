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

package depgraph

import (
	"errors"
	"fmt"
)

// ErrIncrementalNotApplicable-family sentinels: preconditions for
// incremental mode failed. Not an error in the exceptional sense — the
// caller emits a remark and falls back to a full rebuild.
var (
	ErrNoOutputFileMap   = errors.New("no output file map")
	ErrNoBuildRecordPath = errors.New("no build record path")
	ErrInputSetMismatch  = errors.New("prior input missing from the current input list")
	ErrNoSummaryPath     = errors.New("input has no reserved summary-file path")
)

// IncrementalNotApplicable wraps one of the sentinels above with the
// concrete detail (e.g. which input was missing a summary path) so the
// remark can name it.
type IncrementalNotApplicable struct {
	Reason error
	Detail string
}

func (e *IncrementalNotApplicable) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason.Error(), e.Detail)
}

func (e *IncrementalNotApplicable) Unwrap() error { return e.Reason }

// Remark renders the user-facing explanation for falling back to a
// full rebuild.
func (e *IncrementalNotApplicable) Remark() string {
	return fmt.Sprintf("disabling incremental build: %s", e.Error())
}

// MalformedSummary reports that a per-source summary could not be
// parsed. During initial graph construction this disables incremental
// mode; during the second wave it is handled by conservatively
// scheduling every still-skipped input.
type MalformedSummary struct {
	Provider Provider
	Err      error
}

func (e *MalformedSummary) Error() string {
	return fmt.Sprintf("malformed summary for provider %q: %v", e.Provider, e.Err)
}

func (e *MalformedSummary) Unwrap() error { return e.Err }

// MissingOutput reports that an input's declared output file does not
// exist. Forces the input into the mandatory set.
type MissingOutput struct {
	Input Input
}

func (e *MissingOutput) Error() string {
	return fmt.Sprintf("missing output for input %q", e.Input.Path)
}

// InvariantViolated is the assertion-class error family: fatal in
// debug, logged and downgraded to a full rebuild in release.
// Production compilers under this model treat the underlying condition
// ("a dependent node has no provider") as possibly-defensive rather than
// a guaranteed-real invariant; this type is how callers make that call
// without guessing (see DESIGN.md Open Question #1).
type InvariantViolated struct {
	Detail string
}

func (e *InvariantViolated) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Detail)
}

// IsIncrementalNotApplicable reports whether err is (or wraps) an
// IncrementalNotApplicable.
func IsIncrementalNotApplicable(err error) bool {
	var e *IncrementalNotApplicable
	return errors.As(err, &e)
}

// IsMalformedSummary reports whether err is (or wraps) a MalformedSummary.
func IsMalformedSummary(err error) bool {
	var e *MalformedSummary
	return errors.As(err, &e)
}

// IsInvariantViolated reports whether err is (or wraps) an
// InvariantViolated.
func IsInvariantViolated(err error) bool {
	var e *InvariantViolated
	return errors.As(err, &e)
}

func notApplicable(reason error, detailFmt string, a ...any) error {
	return &IncrementalNotApplicable{Reason: reason, Detail: fmt.Sprintf(detailFmt, a...)}
}
