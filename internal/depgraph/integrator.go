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

// ChangeKind classifies why a node landed in a Delta.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeFingerprintChanged
	ChangeRemoved
)

// Change is one entry of an integration's Delta.
type Change struct {
	Node Node
	Kind ChangeKind
}

// Delta is the integrator's output: the union of nodes removed by this
// integration, nodes whose fingerprint changed, and newly created def
// nodes.
type Delta struct {
	Changes []Change
}

// DefNodes returns the subset of the delta that are definitions (added
// or fingerprint-changed, not removed) — step 5 of the integration
// algorithm clears tracing only for these.
func (d Delta) DefNodes() []Node {
	out := make([]Node, 0, len(d.Changes))
	for _, c := range d.Changes {
		if c.Kind != ChangeRemoved {
			out = append(out, c.Node)
		}
	}
	return out
}

// Empty reports whether the integration produced no changes at all.
func (d Delta) Empty() bool { return len(d.Changes) == 0 }

// integrate merges parsed summary S for provider p into the finder,
// six-step algorithm (steps 1-5; step 6's debug
// snapshot/verify hooks are the caller's responsibility — see Graph.Integrate).
func integrate(f *NodeFinder, p Provider, s ParsedSummary) (Delta, error) {
	prior := f.nodes(p)
	current := make(map[DependencyKey]Fingerprint, len(s.Definitions))
	for _, def := range s.Definitions {
		if def.Key.Designator.Kind < TopLevel || def.Key.Designator.Kind > SourceFileProvide {
			return Delta{}, &MalformedSummary{Provider: p, Err: errUnknownDesignatorKind(def.Key.Designator.Kind)}
		}
		current[def.Key] = def.Fingerprint
	}

	var delta Delta

	// Step 2: absent/present-equal/present-differing for each current def.
	for key, fp := range current {
		priorNode, existed := prior[key]
		switch {
		case !existed:
			n := Node{Key: key, Fingerprint: fp, Provider: p}
			if err := f.insert(n); err != nil {
				return Delta{}, err
			}
			delta.Changes = append(delta.Changes, Change{Node: n, Kind: ChangeAdded})
		case priorNode.Fingerprint != fp:
			f.remove(priorNode)
			n := Node{Key: key, Fingerprint: fp, Provider: p}
			if err := f.insert(n); err != nil {
				return Delta{}, err
			}
			delta.Changes = append(delta.Changes, Change{Node: n, Kind: ChangeFingerprintChanged})
		default:
			// unchanged, no-op
		}
	}

	// Step 3: remove defs present before but absent now.
	for key, priorNode := range prior {
		if _, stillPresent := current[key]; !stillPresent {
			f.remove(priorNode)
			delta.Changes = append(delta.Changes, Change{Node: priorNode, Kind: ChangeRemoved})
		}
	}

	// Step 4: ensure an expectation node + edge exists for every use.
	//
	// Every provider is attributed as "using" its declared keys through
	// its own sourceFileProvide(path) node: per-declaration use
	// attribution isn't part of the summary format, so the coarse,
	// whole-file node stands in as the "u" in the uses-edge from node u
	// (a use) to node d (a def). If the summary didn't declare its own
	// sourceFileProvide key explicitly, a node for that key carrying
	// provider p is still used as the user, so tracing maps the use back
	// to p; that fallback node is recorded only in the uses index, not as
	// one of p's definitions.
	selfKey := DependencyKey{Aspect: Interface, Designator: SourceFileProvidePath(string(p))}
	self, ok := f.nodeAt(selfKey, p)
	if !ok {
		self = Node{Key: selfKey, Provider: p}
	}
	for _, useKey := range s.Uses {
		f.recordUse(self, useKey)
	}
	for _, path := range s.ExternalDepends {
		f.recordUse(self, DependencyKey{Aspect: Interface, Designator: ExternalDependPath(path)})
	}

	// Step 5: clear traced flag on users of every changed *def* node.
	// (Implemented by the caller, Graph.Integrate, which owns the traced
	// set; the integrator itself is traced-set-agnostic.)

	return delta, nil
}

func errUnknownDesignatorKind(k DesignatorKind) error {
	return &malformedDesignator{kind: k}
}

type malformedDesignator struct{ kind DesignatorKind }

func (e *malformedDesignator) Error() string {
	return "unknown designator kind in summary definition"
}
