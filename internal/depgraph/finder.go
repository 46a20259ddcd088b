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
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
)

// NodeFinder owns the three indices the rest of the graph queries
// through: provider -> (key -> node), key -> (provider -> node), and
// defKey -> ordered users. It holds no locking of its own — callers
// (the Graph, which runs inside the scheduler's single critical
// section) are responsible for serializing access.
type NodeFinder struct {
	byProvider map[Provider]map[DependencyKey]Node
	// byKey maps a key to its defining nodes, keyed by provider ("" for
	// the expectation node with no provider).
	byKey map[DependencyKey]map[Provider]Node
	// usesByDef maps a definition key to the set of user nodes that
	// reference it, i.e. the reverse of "uses" edges.
	usesByDef map[DependencyKey]map[identity]Node
}

// NewNodeFinder returns an empty NodeFinder.
func NewNodeFinder() *NodeFinder {
	return &NodeFinder{
		byProvider: make(map[Provider]map[DependencyKey]Node),
		byKey:      make(map[DependencyKey]map[Provider]Node),
		usesByDef:  make(map[DependencyKey]map[identity]Node),
	}
}

// insert adds node to all indices. Returns an error if invariant 1 ("at
// most one node exists for each (key, provider) pair") would be violated
// by a differing node already present at that identity.
func (f *NodeFinder) insert(n Node) error {
	if existing, ok := f.byKey[n.Key][n.Provider]; ok && existing != n {
		return fmt.Errorf("node finder: duplicate (key=%s, provider=%q) with differing content", n.Key, n.Provider)
	}

	if n.Provider != "" {
		byKey, ok := f.byProvider[n.Provider]
		if !ok {
			byKey = make(map[DependencyKey]Node)
			f.byProvider[n.Provider] = byKey
		}
		byKey[n.Key] = n
	}

	byProvider, ok := f.byKey[n.Key]
	if !ok {
		byProvider = make(map[Provider]Node)
		f.byKey[n.Key] = byProvider
	}
	byProvider[n.Provider] = n

	return nil
}

// remove deletes node from all indices. It is not an error to remove a
// node that is not present.
func (f *NodeFinder) remove(n Node) {
	if byKey, ok := f.byProvider[n.Provider]; ok {
		delete(byKey, n.Key)
		if len(byKey) == 0 {
			delete(f.byProvider, n.Provider)
		}
	}
	if byProvider, ok := f.byKey[n.Key]; ok {
		delete(byProvider, n.Provider)
		if len(byProvider) == 0 {
			delete(f.byKey, n.Key)
		}
	}
	for defKey, users := range f.usesByDef {
		delete(users, n.identity())
		if len(users) == 0 {
			delete(f.usesByDef, defKey)
		}
	}
}

// recordUse records that user uses the declaration identified by defKey,
// creating an expectation node for defKey if no node yet claims it.
func (f *NodeFinder) recordUse(user Node, defKey DependencyKey) {
	users, ok := f.usesByDef[defKey]
	if !ok {
		users = make(map[identity]Node)
		f.usesByDef[defKey] = users
	}
	users[user.identity()] = user

	if _, ok := f.byKey[defKey]; !ok {
		// No definer known yet: materialize the expectation node so
		// nodes(for:) and verify() see a consistent picture.
		_ = f.insert(Node{Key: defKey})
	}
}

// nodeAt returns the node for (key, provider), and whether it exists.
func (f *NodeFinder) nodeAt(key DependencyKey, provider Provider) (Node, bool) {
	n, ok := f.byKey[key][provider]
	return n, ok
}

// expectationNode returns the providerless node for key, creating it if
// absent.
func (f *NodeFinder) expectationNode(key DependencyKey) Node {
	if n, ok := f.byKey[key][""]; ok {
		return n
	}
	n := Node{Key: key}
	_ = f.insert(n)
	return n
}

// nodes returns a snapshot of every node defined by provider, keyed by
// key.
func (f *NodeFinder) nodes(provider Provider) map[DependencyKey]Node {
	out := make(map[DependencyKey]Node, len(f.byProvider[provider]))
	for k, v := range f.byProvider[provider] {
		out[k] = v
	}
	return out
}

// orderedUses returns the nodes that use defNode's key, sorted
// deterministically by (provider, key) so traversal order is
// reproducible across runs.
func (f *NodeFinder) orderedUses(defKey DependencyKey) []Node {
	users := f.usesByDef[defKey]
	out := make([]Node, 0, len(users))
	for _, n := range users {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Key.Compare(out[j].Key) < 0
	})
	return out
}

// verify checks that the byProvider and byKey indices agree with each
// other (invariants 1 and 2). Invariant 3, the source<->provider
// mapping, lives on Graph and is not checked here. Intended for debug
// builds / VerifyAfterIntegration, not the hot path.
func (f *NodeFinder) verify() error {
	for provider, byKey := range f.byProvider {
		for key, n := range byKey {
			if n.Key != key {
				return fmt.Errorf("verify: byProvider[%q][%s] has mismatched key %s", provider, key, n.Key)
			}
			if n.Provider != provider {
				return fmt.Errorf("verify: byProvider[%q][%s] has mismatched provider %q", provider, key, n.Provider)
			}
			found, ok := f.byKey[key][provider]
			if !ok || found != n {
				return fmt.Errorf("verify: byKey index missing entry for (key=%s, provider=%q)", key, provider)
			}
		}
	}
	for key, byProvider := range f.byKey {
		for provider, n := range byProvider {
			if provider != "" {
				if _, ok := f.byProvider[provider][key]; !ok {
					return fmt.Errorf("verify: byProvider index missing entry for (provider=%q, key=%s)", provider, key)
				}
			}
			_ = n
		}
	}
	return nil
}

// providerKeys returns a sorted snapshot of provider's defined keys.
func (f *NodeFinder) providerKeys(provider Provider) []DependencyKey {
	keys := maps.Keys(f.byProvider[provider])
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	return keys
}
