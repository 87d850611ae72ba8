// Copyright 2023 The PETSc Developers
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

package testparse

// namedDef is a generated test with the header line of the block it
// came from.
type namedDef struct {
	name string
	def  *Definition
	line int
}

// promote merges sub into a copy of parent: append keys are joined
// parent first with a space, comments included, and every other key
// of sub overrides the parent's.
func promote(parent, sub *Definition) *Definition {
	def := parent.Clone()
	for _, name := range def.Subtests {
		delete(def.children, name)
	}
	def.Subtests = nil
	for _, k := range sub.Keys() {
		v := sub.Value(k)
		if old, ok := def.Get(k); ok && k.Appends() {
			v = old + " " + v
		}
		def.Set(k, v)
	}
	return def
}

// promoteSubtests turns every subtest carrying a suffix into a test of
// its own named <parent>_<suffix>. Subtests without a suffix stay with
// their parent, which is only emitted if it keeps at least one.
func promoteSubtests(in []namedDef) []namedDef {
	var out []namedDef
	for _, nd := range in {
		if len(nd.def.Subtests) == 0 {
			out = append(out, nd)
			continue
		}
		var promoted []string
		for _, name := range nd.def.Subtests {
			sub := nd.def.Subtest(name)
			sfx, ok := sub.Get(KeySuffix)
			if !ok {
				continue
			}
			promoted = append(promoted, name)
			out = append(out, namedDef{
				name: nd.name + "_" + sfx,
				def:  promote(nd.def, sub),
				line: nd.line,
			})
		}
		if len(promoted) == len(nd.def.Subtests) {
			continue
		}
		kept := nd.def.Clone()
		for _, name := range promoted {
			kept.removeSubtest(name)
		}
		out = append(out, namedDef{name: nd.name, def: kept, line: nd.line})
	}
	return out
}
