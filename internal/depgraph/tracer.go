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
	"sort"

	"github.com/samber/lo"
)

// Tracer computes the transitive set of previously-untraced users of a
// set of changed nodes. It owns the traced set; the guard
// it provides is also what breaks cycles in the (potentially cyclic)
// use/def graph, without extra bookkeeping.
type Tracer struct {
	finder *NodeFinder
	traced map[identity]bool
}

// NewTracer returns a Tracer with an empty traced set.
func NewTracer(finder *NodeFinder) *Tracer {
	return &Tracer{finder: finder, traced: make(map[identity]bool)}
}

// IsTraced reports whether n has been visited by this tracer already.
func (t *Tracer) IsTraced(n Node) bool { return t.traced[n.identity()] }

// Untrace clears n's traced flag. Used by Graph.Integrate to
// selectively reopen the neighborhood invalidated by a changed def.
func (t *Tracer) Untrace(n Node) { delete(t.traced, n.identity()) }

// Trace computes the transitive set of users of defs that were not
// already traced, marking them traced as it goes. The traversal is
// breadth-first in declared (deterministic) order, since the order
// affects scheduling order surfaced to humans.
//
//	result = ∅
//	work = queue(defs)
//	while work nonempty:
//	    n = work.pop()
//	    if n ∈ traced: continue
//	    traced.add(n); result.add(n)
//	    for u in nodeFinder.orderedUses(of: n): work.push(u)
//	return result
func (t *Tracer) Trace(defs []Node) []Node {
	var result []Node
	work := make([]Node, len(defs))
	copy(work, defs)

	for len(work) > 0 {
		n := work[0]
		work = work[1:]

		if t.traced[n.identity()] {
			continue
		}
		t.traced[n.identity()] = true
		result = append(result, n)

		for _, u := range t.finder.orderedUses(n.Key) {
			work = append(work, u)
		}
	}
	return result
}

// Providers returns the distinct set of providers referenced by nodes,
// in deterministic (sorted) order.
func Providers(nodes []Node) []Provider {
	providers := lo.FilterMap(nodes, func(n Node, _ int) (Provider, bool) {
		return n.Provider, n.Provider != ""
	})
	out := lo.Uniq(providers)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
