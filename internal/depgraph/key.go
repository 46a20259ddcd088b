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

// Package depgraph implements the module dependency graph: addressable
// declaration-level dependency keys and nodes, the node finder indices,
// the integrator that merges parsed per-source summaries into the graph,
// and the tracer that expands a set of changed nodes into the set of
// providers that must (re)compile.
package depgraph

import (
	"fmt"
	"strings"
)

// Aspect marks whether a dependency key change is externally visible.
type Aspect int

const (
	// Interface changes affect every user of the key, in any source.
	Interface Aspect = iota
	// Implementation changes affect only the defining source.
	Implementation
)

// String renders the aspect the way remarks and dot snapshots expect it.
func (a Aspect) String() string {
	switch a {
	case Interface:
		return "interface"
	case Implementation:
		return "implementation"
	default:
		return "unknown"
	}
}

// DesignatorKind tags the variant held by a Designator. Kept as its own
// type (rather than a type switch over an interface) so Designator stays
// a plain comparable value usable as a map key.
type DesignatorKind int

const (
	TopLevel DesignatorKind = iota
	Nominal
	PotentialMember
	Member
	DynamicLookup
	ExternalDepend
	SourceFileProvide
)

func (k DesignatorKind) String() string {
	switch k {
	case TopLevel:
		return "topLevel"
	case Nominal:
		return "nominal"
	case PotentialMember:
		return "potentialMember"
	case Member:
		return "member"
	case DynamicLookup:
		return "dynamicLookup"
	case ExternalDepend:
		return "externalDepend"
	case SourceFileProvide:
		return "sourceFileProvide"
	default:
		return "unknown"
	}
}

// Designator is the identity portion of a DependencyKey: a tagged variant
// over seven kinds. Only the fields relevant to Kind are populated;
// callers should not read the others.
//
//   - TopLevel:           Name
//   - Nominal:            Context
//   - PotentialMember:    Context
//   - Member:             Context, Name
//   - DynamicLookup:      Name
//   - ExternalDepend:     Path
//   - SourceFileProvide:  Path
type Designator struct {
	Kind    DesignatorKind
	Name    string
	Context string
	Path    string
}

func TopLevelName(name string) Designator   { return Designator{Kind: TopLevel, Name: name} }
func NominalContext(ctx string) Designator  { return Designator{Kind: Nominal, Context: ctx} }
func PotentialMemberOf(ctx string) Designator {
	return Designator{Kind: PotentialMember, Context: ctx}
}
func MemberOf(ctx, name string) Designator {
	return Designator{Kind: Member, Context: ctx, Name: name}
}
func DynamicLookupName(name string) Designator { return Designator{Kind: DynamicLookup, Name: name} }
func ExternalDependPath(path string) Designator {
	return Designator{Kind: ExternalDepend, Path: path}
}
func SourceFileProvidePath(path string) Designator {
	return Designator{Kind: SourceFileProvide, Path: path}
}

// String renders a Designator deterministically; used for ordering and
// for dot-snapshot labels.
func (d Designator) String() string {
	switch d.Kind {
	case TopLevel:
		return fmt.Sprintf("topLevel(%s)", d.Name)
	case Nominal:
		return fmt.Sprintf("nominal(%s)", d.Context)
	case PotentialMember:
		return fmt.Sprintf("potentialMember(%s)", d.Context)
	case Member:
		return fmt.Sprintf("member(%s, %s)", d.Context, d.Name)
	case DynamicLookup:
		return fmt.Sprintf("dynamicLookup(%s)", d.Name)
	case ExternalDepend:
		return fmt.Sprintf("externalDepend(%s)", d.Path)
	case SourceFileProvide:
		return fmt.Sprintf("sourceFileProvide(%s)", d.Path)
	default:
		return "unknown()"
	}
}

// Compare gives Designator a total order: first by variant index, then by
// lexicographic content. This is a correctness requirement:
// scheduling order surfaced to humans must be deterministic.
func (d Designator) Compare(o Designator) int {
	if d.Kind != o.Kind {
		return int(d.Kind) - int(o.Kind)
	}
	if c := strings.Compare(d.Context, o.Context); c != 0 {
		return c
	}
	if c := strings.Compare(d.Name, o.Name); c != 0 {
		return c
	}
	return strings.Compare(d.Path, o.Path)
}

// DependencyKey is a (aspect, designator) pair: the addressable identity
// of a declaration or external dependency.
type DependencyKey struct {
	Aspect     Aspect
	Designator Designator
}

// Compare gives DependencyKey the same total order as Designator, with
// Aspect breaking ties first (interface before implementation).
func (k DependencyKey) Compare(o DependencyKey) int {
	if k.Aspect != o.Aspect {
		return int(k.Aspect) - int(o.Aspect)
	}
	return k.Designator.Compare(o.Designator)
}

func (k DependencyKey) String() string {
	return fmt.Sprintf("%s:%s", k.Aspect, k.Designator)
}

// Less reports whether k sorts before o under Compare; a convenience for
// slices.SortFunc call sites that read more naturally as Less.
func (k DependencyKey) Less(o DependencyKey) bool { return k.Compare(o) < 0 }
