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

// Provider identifies a per-source summary file. It is the planner's
// handle for "the source that produced this node" — never a filesystem
// path directly, so the node finder's indices stay independent of how
// callers chose to name their inputs.
type Provider string

// Fingerprint is an optional content hash of a declaration. Two nodes
// with equal fingerprints represent the same semantic declaration even if
// the underlying source text differs (whitespace, comments, formatting).
type Fingerprint string

// InputKind distinguishes kinds of build inputs. Only source inputs exist
// today; kept as an enum (rather than a bare bool) so a second kind never
// requires an API break.
type InputKind int

const (
	InputKindSource InputKind = iota
)

// Input is an ordered source the planner was asked to consider.
type Input struct {
	Path string
	Kind InputKind
}

// OutputKind is one of the output kinds an output-file-map entry supplies
// per input.
type OutputKind int

const (
	OutputKindSummary OutputKind = iota
	OutputKindObject
)

// Node is (key, fingerprint, provider). A node with an empty Provider is
// an expectation node: a reference to a declaration no known source
// defines locally.
type Node struct {
	Key         DependencyKey
	Fingerprint Fingerprint
	Provider    Provider
}

// IsExpectation reports whether this node has no defining provider.
func (n Node) IsExpectation() bool { return n.Provider == "" }

// Equal implements node equality: keys and providers must both match.
// Fingerprint is deliberately excluded — a fingerprint change is a
// mutation of an existing node's identity, not a different node.
func (n Node) Equal(o Node) bool {
	return n.Key == o.Key && n.Provider == o.Provider
}

// identity is the map key used internally by the node finder: (key,
// provider), matching invariant 1 ("at most one node exists for each
// (key, provider) pair").
type identity struct {
	key      DependencyKey
	provider Provider
}

func (n Node) identity() identity {
	return identity{key: n.Key, provider: n.Provider}
}
