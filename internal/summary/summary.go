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

// Package summary parses a per-source dependency summary document into
// depgraph.ParsedSummary. The document shape is a small YAML dialect:
//
//	definitions:
//	  - key: {aspect: interface, kind: topLevel, name: Widget}
//	    fingerprint: "a1b2c3"
//	uses:
//	  - {aspect: interface, kind: member, context: Widget, name: Render}
//	externalDepends:
//	  - path: /usr/lib/swift/Foundation.swiftmodule
package summary

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/buildgraph/incplan/internal/depgraph"
)

// rawKey is the wire shape of a DependencyKey.
type rawKey struct {
	Aspect  string `yaml:"aspect"`
	Kind    string `yaml:"kind"`
	Name    string `yaml:"name,omitempty"`
	Context string `yaml:"context,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

type rawDefinition struct {
	Key         rawKey `yaml:"key"`
	Fingerprint string `yaml:"fingerprint"`
}

type rawExternalDepend struct {
	Path string `yaml:"path"`
}

type document struct {
	Definitions     []rawDefinition    `yaml:"definitions"`
	Uses            []rawKey           `yaml:"uses"`
	ExternalDepends []rawExternalDepend `yaml:"externalDepends"`
}

// Parse decodes r into a depgraph.ParsedSummary for provider. Any
// malformed input — invalid YAML, an unrecognized aspect/kind tag, or a
// member/potentialMember designator missing its context — is reported
// as a *depgraph.MalformedSummary, the error type integration failure
// is expected to produce.
func Parse(r io.Reader, provider depgraph.Provider) (depgraph.ParsedSummary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return depgraph.ParsedSummary{}, &depgraph.MalformedSummary{Provider: provider, Err: err}
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return depgraph.ParsedSummary{}, &depgraph.MalformedSummary{Provider: provider, Err: err}
	}

	out := depgraph.ParsedSummary{
		Definitions: make([]depgraph.Definition, 0, len(doc.Definitions)),
		Uses:        make([]depgraph.DependencyKey, 0, len(doc.Uses)),
	}

	for _, d := range doc.Definitions {
		key, err := toKey(d.Key)
		if err != nil {
			return depgraph.ParsedSummary{}, &depgraph.MalformedSummary{Provider: provider, Err: err}
		}
		out.Definitions = append(out.Definitions, depgraph.Definition{
			Key:         key,
			Fingerprint: depgraph.Fingerprint(d.Fingerprint),
		})
	}

	for _, u := range doc.Uses {
		key, err := toKey(u)
		if err != nil {
			return depgraph.ParsedSummary{}, &depgraph.MalformedSummary{Provider: provider, Err: err}
		}
		out.Uses = append(out.Uses, key)
	}

	for _, e := range doc.ExternalDepends {
		if e.Path == "" {
			return depgraph.ParsedSummary{}, &depgraph.MalformedSummary{
				Provider: provider,
				Err:      fmt.Errorf("externalDepends entry missing path"),
			}
		}
		out.ExternalDepends = append(out.ExternalDepends, e.Path)
	}

	return out, nil
}

func toKey(rk rawKey) (depgraph.DependencyKey, error) {
	aspect, err := toAspect(rk.Aspect)
	if err != nil {
		return depgraph.DependencyKey{}, err
	}

	switch rk.Kind {
	case "topLevel":
		if rk.Name == "" {
			return depgraph.DependencyKey{}, fmt.Errorf("topLevel designator missing name")
		}
		return depgraph.DependencyKey{Aspect: aspect, Designator: depgraph.TopLevelName(rk.Name)}, nil
	case "nominal":
		if rk.Context == "" {
			return depgraph.DependencyKey{}, fmt.Errorf("nominal designator missing context")
		}
		return depgraph.DependencyKey{Aspect: aspect, Designator: depgraph.NominalContext(rk.Context)}, nil
	case "potentialMember":
		if rk.Context == "" {
			return depgraph.DependencyKey{}, fmt.Errorf("potentialMember designator missing context")
		}
		return depgraph.DependencyKey{Aspect: aspect, Designator: depgraph.PotentialMemberOf(rk.Context)}, nil
	case "member":
		if rk.Context == "" || rk.Name == "" {
			return depgraph.DependencyKey{}, fmt.Errorf("member designator missing context or name")
		}
		return depgraph.DependencyKey{Aspect: aspect, Designator: depgraph.MemberOf(rk.Context, rk.Name)}, nil
	case "dynamicLookup":
		if rk.Name == "" {
			return depgraph.DependencyKey{}, fmt.Errorf("dynamicLookup designator missing name")
		}
		return depgraph.DependencyKey{Aspect: aspect, Designator: depgraph.DynamicLookupName(rk.Name)}, nil
	case "externalDepend":
		if rk.Path == "" {
			return depgraph.DependencyKey{}, fmt.Errorf("externalDepend designator missing path")
		}
		return depgraph.DependencyKey{Aspect: aspect, Designator: depgraph.ExternalDependPath(rk.Path)}, nil
	case "sourceFileProvide":
		if rk.Path == "" {
			return depgraph.DependencyKey{}, fmt.Errorf("sourceFileProvide designator missing path")
		}
		return depgraph.DependencyKey{Aspect: aspect, Designator: depgraph.SourceFileProvidePath(rk.Path)}, nil
	default:
		return depgraph.DependencyKey{}, fmt.Errorf("unknown designator kind %q", rk.Kind)
	}
}

func toAspect(s string) (depgraph.Aspect, error) {
	switch s {
	case "interface":
		return depgraph.Interface, nil
	case "implementation":
		return depgraph.Implementation, nil
	default:
		return 0, fmt.Errorf("unknown aspect %q", s)
	}
}
