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

// Package config carries the planner's recognised configuration flags.
// It is a plain struct, not a CLI flag-parsing package — parsing argv
// is cmd/incplan's job, using cobra/pflag.
package config

// Flags is the planner's set of configuration options.
type Flags struct {
	ShowJobLifecycle        bool
	ShowIncremental         bool
	EmitDotAfterIntegration bool
	VerifyAfterIntegration  bool
	AlwaysRebuildDependents bool
}

// Default returns the zero-value Flags: every behavior opt-in, a
// conservative default.
func Default() Flags {
	return Flags{}
}
