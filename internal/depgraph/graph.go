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
	"context"
	"fmt"
	"io"
	"sort"
	"time"
)

// ExternalDependency is a path to a module outside the current module,
// attached to the modification time last observed for it.
type ExternalDependency struct {
	Path    string
	ModTime time.Time
}

// Graph owns the node finder and tracer, the source<->provider mapping
// (invariant 3), and the set of known external dependencies. It is the
// single piece of shared mutable state the planner touches: callers are
// expected to only mutate it from inside a serializing critical section
// (the scheduler owns that obligation; Graph itself holds no lock).
type Graph struct {
	Finder *NodeFinder
	Tracer *Tracer

	// Debug selects invariant-violation behavior: panic immediately
	// (Debug == true) vs. return an *InvariantViolated error and let the
	// caller fall back (Debug == false). See DESIGN.md Open Question #1.
	Debug bool

	sourceToProvider map[string]Provider
	providerToSource map[Provider]string

	externalDeps map[string]time.Time

	dotSink io.Writer
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	finder := NewNodeFinder()
	return &Graph{
		Finder:           finder,
		Tracer:           NewTracer(finder),
		sourceToProvider: make(map[string]Provider),
		providerToSource: make(map[Provider]string),
		externalDeps:     make(map[string]time.Time),
	}
}

// SetDotSink configures where EmitDotAfterIntegration snapshots are
// written; if nil, the hook is a no-op regardless of the flag.
func (g *Graph) SetDotSink(w io.Writer) { g.dotSink = w }

// RegisterSource establishes the source<->provider mapping for input,
// enforcing invariant 3 ("a source input maps to at most one provider
// and vice versa").
func (g *Graph) RegisterSource(inputPath string, provider Provider) error {
	if existing, ok := g.sourceToProvider[inputPath]; ok && existing != provider {
		return fmt.Errorf("depgraph: source %q already mapped to provider %q, cannot remap to %q", inputPath, existing, provider)
	}
	if existing, ok := g.providerToSource[provider]; ok && existing != inputPath {
		return fmt.Errorf("depgraph: provider %q already mapped to source %q, cannot remap to %q", provider, existing, inputPath)
	}
	g.sourceToProvider[inputPath] = provider
	g.providerToSource[provider] = inputPath
	return nil
}

// ProviderFor returns the provider registered for inputPath, if any.
func (g *Graph) ProviderFor(inputPath string) (Provider, bool) {
	p, ok := g.sourceToProvider[inputPath]
	return p, ok
}

// SourceFor returns the input path registered for provider, if any.
func (g *Graph) SourceFor(provider Provider) (string, bool) {
	s, ok := g.providerToSource[provider]
	return s, ok
}

// RegisterExternalDependency records the last-observed modification time
// for an external dependency path.
func (g *Graph) RegisterExternalDependency(path string, modTime time.Time) {
	g.externalDeps[path] = modTime
}

// ExternalDependencies returns a deterministic (path-sorted) snapshot of
// known external dependencies.
func (g *Graph) ExternalDependencies() []ExternalDependency {
	out := make([]ExternalDependency, 0, len(g.externalDeps))
	for path, mt := range g.externalDeps {
		out = append(out, ExternalDependency{Path: path, ModTime: mt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Integrate merges a parsed summary for provider into the graph. On
// success it returns the Delta of changed nodes and clears the traced
// flag on every user of a changed definition, restoring completeness
// for the next trace. emitDot and verify gate the optional debug hooks:
// writing a DOT snapshot and re-checking node finder invariants.
func (g *Graph) Integrate(provider Provider, parsed ParsedSummary, emitDot, verify bool) (Delta, error) {
	delta, err := integrate(g.Finder, provider, parsed)
	if err != nil {
		return Delta{}, err
	}

	for _, def := range delta.DefNodes() {
		for _, user := range g.Finder.orderedUses(def.Key) {
			g.Tracer.Untrace(user)
		}
	}

	if emitDot && g.dotSink != nil {
		_ = g.WriteDot(g.dotSink)
	}
	if verify {
		if err := g.Finder.verify(); err != nil {
			return delta, &InvariantViolated{Detail: err.Error()}
		}
	}

	return delta, nil
}

// IntegrateAndTrace re-integrates provider's freshly parsed summary and
// traces the resulting delta, returning the set of dependent inputs
// that must now compile — the second wave's
// findSourcesToCompileAfterCompiling step. Malformed summaries are
// returned unwrapped so callers can recognize them with
// depgraph.IsMalformedSummary and apply the "compile everything still
// skipped" fallback.
func (g *Graph) IntegrateAndTrace(provider Provider, parsed ParsedSummary) ([]Input, error) {
	delta, err := g.Integrate(provider, parsed, false, false)
	if err != nil {
		return nil, err
	}
	providers := g.TraceChanged(delta.DefNodes())
	return g.inputsForProviders(providers, Input{})
}

// TraceChanged runs the tracer over defs and returns the (sorted,
// deduplicated) providers it reaches — the set of source files that
// must (re)compile as a result.
func (g *Graph) TraceChanged(defs []Node) []Provider {
	return Providers(g.Tracer.Trace(defs))
}

// TraceFromExternalDependency traces from the interface-aspect node for
// an external dependency path, used by the first-wave planner's
// "externally-affected inputs" computation.
func (g *Graph) TraceFromExternalDependency(path string) []Provider {
	key := DependencyKey{Aspect: Interface, Designator: ExternalDependPath(path)}
	node := g.Finder.expectationNode(key)
	return Providers(g.Tracer.Trace([]Node{node}))
}

// DependentSourceFiles implements findDependentSourceFiles(of: input):
// the inputs whose providers are reached by tracing from every
// definition input's provider currently owns. Returns an
// InvariantViolated error if a reached provider has no registered
// source (DESIGN.md Open Question #1): callers should fall back to a
// full rebuild in release mode. ctx is checked once up front so a
// caller racing this against a cancelled build can bail out before
// walking a potentially large graph; the tracer itself has no further
// suspension points to check it against.
func (g *Graph) DependentSourceFiles(ctx context.Context, input Input) ([]Input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	provider, ok := g.ProviderFor(input.Path)
	if !ok {
		return nil, nil
	}

	defsByKey := g.Finder.nodes(provider)
	keys := make([]DependencyKey, 0, len(defsByKey))
	for k := range defsByKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	defs := make([]Node, 0, len(keys))
	for _, k := range keys {
		defs = append(defs, defsByKey[k])
	}

	providers := g.TraceChanged(defs)
	return g.inputsForProviders(providers, input)
}

// inputsForProviders maps a provider list back to registered inputs,
// excluding self, reporting InvariantViolated for any provider the graph
// has integrated but never registered a source for.
func (g *Graph) inputsForProviders(providers []Provider, exclude Input) ([]Input, error) {
	out := make([]Input, 0, len(providers))
	for _, p := range providers {
		src, ok := g.SourceFor(p)
		if !ok {
			detail := fmt.Sprintf("provider %q was traced but has no registered source input", p)
			if g.Debug {
				panic(detail)
			}
			return nil, &InvariantViolated{Detail: detail}
		}
		if src == exclude.Path {
			continue
		}
		out = append(out, Input{Path: src})
	}
	return out, nil
}

// WriteDot emits a Graphviz DOT snapshot of the current use/def graph.
// Deliberately stdlib-only — see DESIGN.md.
func (g *Graph) WriteDot(w io.Writer) error {
	fmt.Fprintln(w, "digraph depgraph {")
	var keys []DependencyKey
	for k := range g.Finder.byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	for _, k := range keys {
		for provider, n := range g.Finder.byKey[k] {
			label := k.String()
			if provider != "" {
				fmt.Fprintf(w, "  %q [label=%q];\n", nodeID(n), label)
			} else {
				fmt.Fprintf(w, "  %q [label=%q, style=dashed];\n", nodeID(n), label)
			}
		}
	}
	for defKey, users := range g.Finder.usesByDef {
		defNodes := g.Finder.byKey[defKey]
		for _, def := range defNodes {
			for _, user := range users {
				fmt.Fprintf(w, "  %q -> %q;\n", nodeID(user), nodeID(def))
			}
		}
	}
	fmt.Fprintln(w, "}")
	return nil
}

func nodeID(n Node) string {
	return fmt.Sprintf("%s|%s", n.Key, n.Provider)
}
