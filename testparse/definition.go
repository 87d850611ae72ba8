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

import (
	"strings"
)

// Key is one of the keys accepted inside a test block.
type Key string

const (
	KeyTest          Key = "test"
	KeyNsize         Key = "nsize"
	KeyRequires      Key = "requires"
	KeyCommand       Key = "command"
	KeySuffix        Key = "suffix"
	KeyArgs          Key = "args"
	KeyFilter        Key = "filter"
	KeyFilterOutput  Key = "filter_output"
	KeyLocalRunFiles Key = "localrunfiles"
	KeyComments      Key = "comments"
	KeyTODO          Key = "TODO"
	KeySKIP          Key = "SKIP"
	KeyOutputFile    Key = "output_file"
)

// AcceptedKeys is the closed set of keys a test or subtest may use.
var AcceptedKeys = []Key{
	KeyTest, KeyNsize, KeyRequires, KeyCommand, KeySuffix, KeyArgs,
	KeyFilter, KeyFilterOutput, KeyLocalRunFiles, KeyComments, KeyTODO,
	KeySKIP, KeyOutputFile,
}

// lookupKey returns the Key for s if it is accepted.
func lookupKey(s string) (Key, bool) {
	for _, k := range AcceptedKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Appends reports whether repeating k concatenates values instead of
// being an error. Subtests also concatenate these onto their parent
// when promoted.
func (k Key) Appends() bool {
	switch k {
	case KeyArgs, KeyRequires, KeyComments:
		return true
	}
	return false
}

func (k Key) separator() string {
	if k == KeyComments {
		return "\n"
	}
	return " "
}

// Definition holds the values of one test or subtest.
type Definition struct {
	values map[Key]string

	// Subtests lists the nested subtest names in declaration order.
	Subtests []string
	children map[string]*Definition

	// Loops holds the shared sweeps which are iterated at run time,
	// in the order they appear. SubArgs is the templated argument
	// fragment referencing them and LabelSuffix the matching
	// diff label suffix.
	Loops       []LoopSpec
	SubArgs     string
	LabelSuffix string
}

// NewDefinition returns an empty definition.
func NewDefinition() *Definition {
	return &Definition{
		values:   make(map[Key]string),
		children: make(map[string]*Definition),
	}
}

// Get returns the value of k and whether it was set.
func (d *Definition) Get(k Key) (string, bool) {
	v, ok := d.values[k]
	return v, ok
}

// Value returns the value of k or "".
func (d *Definition) Value(k Key) string {
	return d.values[k]
}

// Has reports whether k was set.
func (d *Definition) Has(k Key) bool {
	_, ok := d.values[k]
	return ok
}

// Set stores v under k, replacing any previous value.
func (d *Definition) Set(k Key, v string) {
	d.values[k] = v
}

// Delete removes k.
func (d *Definition) Delete(k Key) {
	delete(d.values, k)
}

// appendValue concatenates v onto an existing value of k using the
// key's separator, or sets it.
func (d *Definition) appendValue(k Key, v string) {
	if old, ok := d.values[k]; ok {
		d.values[k] = old + k.separator() + v
		return
	}
	d.values[k] = v
}

// Keys returns the keys set on d in AcceptedKeys order.
func (d *Definition) Keys() []Key {
	var keys []Key
	for _, k := range AcceptedKeys {
		if _, ok := d.values[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Subtest returns the named subtest or nil.
func (d *Definition) Subtest(name string) *Definition {
	return d.children[name]
}

func (d *Definition) addSubtest(name string) *Definition {
	sub := NewDefinition()
	d.Subtests = append(d.Subtests, name)
	d.children[name] = sub
	return sub
}

func (d *Definition) removeSubtest(name string) {
	for i, s := range d.Subtests {
		if s == name {
			d.Subtests = append(d.Subtests[:i:i], d.Subtests[i+1:]...)
			break
		}
	}
	delete(d.children, name)
}

// Clone returns a deep copy of d.
func (d *Definition) Clone() *Definition {
	n := NewDefinition()
	for k, v := range d.values {
		n.values[k] = v
	}
	n.Subtests = append([]string(nil), d.Subtests...)
	for name, sub := range d.children {
		n.children[name] = sub.Clone()
	}
	for _, l := range d.Loops {
		n.Loops = append(n.Loops, l.clone())
	}
	n.SubArgs = d.SubArgs
	n.LabelSuffix = d.LabelSuffix
	return n
}

// Nsize returns the execution size, "1" when unset.
func (d *Definition) Nsize() string {
	if v, ok := d.values[KeyNsize]; ok && v != "" {
		return v
	}
	return "1"
}

// Args returns the full argument string: the plain arguments followed
// by any templated loop arguments.
func (d *Definition) Args() string {
	return strings.TrimSpace(strings.TrimSpace(d.values[KeyArgs]) + " " + d.SubArgs)
}

// Requires returns the requirement tokens.
func (d *Definition) Requires() []string {
	return strings.Fields(d.values[KeyRequires])
}

// LocalRunFiles returns the run-time data files to copy next to the
// run script.
func (d *Definition) LocalRunFiles() []string {
	return strings.Fields(d.values[KeyLocalRunFiles])
}

// BuildMetadata holds the keys of the /*T ... T*/ block which describe
// how a source file is built rather than how its tests run.
type BuildMetadata struct {
	Requires string `json:"requires,omitempty" yaml:"requires,omitempty"`
	TODO     string `json:"TODO,omitempty" yaml:"TODO,omitempty"`
	SKIP     string `json:"SKIP,omitempty" yaml:"SKIP,omitempty"`
	Depends  string `json:"depends,omitempty" yaml:"depends,omitempty"`
}

// BuildKeys are the reserved keys read from the build block.
var BuildKeys = []string{"requires", "TODO", "SKIP", "depends"}

func (b *BuildMetadata) set(key, val string) {
	switch key {
	case "requires":
		b.Requires = val
	case "TODO":
		b.TODO = val
	case "SKIP":
		b.SKIP = val
	case "depends":
		b.Depends = val
	}
}

// Empty reports whether no build key was found.
func (b BuildMetadata) Empty() bool {
	return b == BuildMetadata{}
}
