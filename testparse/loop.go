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
	"fmt"
	"strings"
)

// Mode says how a loop fans out.
type Mode int

const (
	// Shared loops stay in one test whose run script iterates over
	// the values.
	Shared Mode = iota
	// Separate loops generate one test per value.
	Separate
)

func (m Mode) String() string {
	if m == Separate {
		return "separate"
	}
	return "shared"
}

const (
	loopOpen       = "{{"
	defaultLoopVar = "nsize"
)

// LoopSpec is a parsed {{v1 v2 ...}} or {{v1 v2 ...}separate} marker.
type LoopSpec struct {
	Var    string
	Values []string
	Mode   Mode
	// Field is the key the marker was found in, KeyArgs or KeyNsize.
	Field Key
}

func (l LoopSpec) clone() LoopSpec {
	l.Values = append([]string(nil), l.Values...)
	return l
}

// Placeholder is the shell reference the run script substitutes for
// a shared loop.
func (l LoopSpec) Placeholder() string {
	return "${" + l.Var + "}"
}

// ParseLoop parses one flag segment holding a loop marker, e.g.
// "ksp_type {{gmres cg}separate}". It returns the loop and any text
// following the marker. Repeated values are dropped.
func ParseLoop(segment string) (LoopSpec, string, error) {
	return parseLoop("", segment)
}

func parseLoop(file, segment string) (LoopSpec, string, error) {
	var l LoopSpec
	open := strings.Index(segment, loopOpen)
	if open < 0 {
		return l, "", &FormatError{File: file, Msg: "no loop in " + segment}
	}
	l.Var = strings.TrimSpace(segment[:open])
	if l.Var == "" {
		l.Var = defaultLoopVar
	}

	inner := segment[open+len(loopOpen):]
	end := strings.IndexByte(inner, '}')
	if end < 0 {
		return l, "", &FormatError{File: file, Msg: "unterminated loop in " + segment}
	}
	seen := make(map[string]bool)
	for _, v := range strings.Fields(inner[:end]) {
		if !seen[v] {
			seen[v] = true
			l.Values = append(l.Values, v)
		}
	}

	after := inner[end+1:]
	stop := strings.IndexByte(after, '}')
	if stop < 0 {
		return l, "", &FormatError{File: file, Msg: "unterminated loop in " + segment}
	}
	switch modifier := strings.TrimSpace(after[:stop]); modifier {
	case "", "shared":
		l.Mode = Shared
	case "separate":
		l.Mode = Separate
	default:
		return l, "", &FormatError{File: file, Msg: fmt.Sprintf("unknown loop modifier %q in %s", modifier, segment)}
	}
	return l, strings.TrimSpace(after[stop+1:]), nil
}

// splitFlags splits an argument string before every '-' that starts a
// flag, i.e. is followed by a letter. Loop markers are never split;
// braces outside of a marker are plain text. Segments are trimmed; the
// text before the first flag is its own segment.
func splitFlags(s string) []string {
	var segs []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case depth == 0 && strings.HasPrefix(s[i:], loopOpen):
			depth = 2
			i++
		case c == '{' && depth > 0:
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == '-' && depth == 0 && i+1 < len(s) && isLetter(s[i+1]) && (i == 0 || s[i-1] == ' ' || s[i-1] == '\t'):
			if seg := strings.TrimSpace(s[start:i]); seg != "" {
				segs = append(segs, seg)
			}
			start = i
		}
	}
	if seg := strings.TrimSpace(s[start:]); seg != "" {
		segs = append(segs, seg)
	}
	return segs
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// argPart is one flag segment of an argument string; loop is set when
// the segment holds a marker.
type argPart struct {
	text string
	loop *LoopSpec
	rest string
}

func (p argPart) render(val string) string {
	return strings.TrimSpace(fmt.Sprintf("-%s %s %s", p.loop.Var, val, p.rest))
}

func parseArgs(file, args string) ([]argPart, error) {
	var parts []argPart
	for _, seg := range splitFlags(args) {
		p := argPart{text: seg}
		if strings.Contains(seg, loopOpen) {
			l, rest, err := parseLoop(file, strings.TrimPrefix(seg, "-"))
			if err != nil {
				return nil, err
			}
			l.Field = KeyArgs
			p.loop, p.rest = &l, rest
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func parseNsize(file, nsize string) (*LoopSpec, error) {
	if !strings.Contains(nsize, loopOpen) {
		return nil, nil
	}
	l, _, err := parseLoop(file, nsize)
	if err != nil {
		return nil, err
	}
	l.Var, l.Field = defaultLoopVar, KeyNsize
	return &l, nil
}

// loopFields holds the parsed loop-bearing fields of a definition.
type loopFields struct {
	nsize *LoopSpec
	args  []argPart
}

func parseLoopFields(file string, def *Definition) (*loopFields, error) {
	var lf loopFields
	var err error
	if lf.nsize, err = parseNsize(file, def.Value(KeyNsize)); err != nil {
		return nil, err
	}
	if lf.args, err = parseArgs(file, def.Value(KeyArgs)); err != nil {
		return nil, err
	}
	return &lf, nil
}

// loops returns the markers matching keep, nsize first.
func (lf *loopFields) loops(keep func(LoopSpec) bool) []*LoopSpec {
	var ls []*LoopSpec
	if lf.nsize != nil && keep(*lf.nsize) {
		ls = append(ls, lf.nsize)
	}
	for _, p := range lf.args {
		if p.loop != nil && keep(*p.loop) {
			ls = append(ls, p.loop)
		}
	}
	return ls
}

func separateOnly(l LoopSpec) bool { return l.Mode == Separate }
func anyMode(LoopSpec) bool        { return true }

// SeparateVars lists the loops of def which split it into separate
// tests, nsize first and then in argument order.
func SeparateVars(def *Definition) ([]LoopSpec, error) {
	lf, err := parseLoopFields("", def)
	if err != nil {
		return nil, err
	}
	var out []LoopSpec
	for _, l := range lf.loops(separateOnly) {
		out = append(out, l.clone())
	}
	return out, nil
}

// binding is one value chosen for one loop.
type binding struct {
	loop *LoopSpec
	val  string
}

// product enumerates every combination of values of loops, the first
// loop varying slowest.
func product(file string, loops []*LoopSpec) ([][]binding, error) {
	combos := [][]binding{nil}
	for _, l := range loops {
		if len(l.Values) == 0 {
			return nil, &LoopResolutionError{File: file, Var: l.Var}
		}
		var next [][]binding
		for _, c := range combos {
			for _, v := range l.Values {
				n := append(append([]binding(nil), c...), binding{l, v})
				next = append(next, n)
			}
		}
		combos = next
	}
	return combos, nil
}

func suffixFor(combo []binding) string {
	var sb strings.Builder
	for _, b := range combo {
		fmt.Fprintf(&sb, "_%s-%s", b.loop.Var, b.val)
	}
	return sb.String()
}

// bind substitutes the values of combo into def, which must be a copy.
// Segments without a bound loop are copied through unchanged.
func (lf *loopFields) bind(def *Definition, combo []binding) {
	bound := make(map[*LoopSpec]string)
	for _, b := range combo {
		bound[b.loop] = b.val
	}
	if lf.nsize != nil {
		if v, ok := bound[lf.nsize]; ok {
			def.Set(KeyNsize, v)
		}
	}
	if !def.Has(KeyArgs) {
		return
	}
	var args []string
	for _, p := range lf.args {
		if p.loop != nil {
			if v, ok := bound[p.loop]; ok {
				args = append(args, p.render(v))
				continue
			}
		}
		args = append(args, p.text)
	}
	def.Set(KeyArgs, strings.Join(args, " "))
}

// expandSeparate splits a test into one test per combination of its
// separate loop values. Each generated test is named and suffixed with
// _<var>-<value> for every loop, in declaration order.
func expandSeparate(file string, in []namedDef) ([]namedDef, error) {
	var out []namedDef
	for _, nd := range in {
		lf, err := parseLoopFields(file, nd.def)
		if err != nil {
			return nil, err
		}
		loops := lf.loops(separateOnly)
		if len(loops) == 0 {
			out = append(out, nd)
			continue
		}
		combos, err := product(file, loops)
		if err != nil {
			return nil, err
		}
		for _, combo := range combos {
			def := nd.def.Clone()
			lf.bind(def, combo)
			gen := suffixFor(combo)
			if sfx, ok := def.Get(KeySuffix); ok && sfx != "" {
				def.Set(KeySuffix, sfx+gen)
			} else {
				def.Set(KeySuffix, strings.TrimPrefix(gen, "_"))
			}
			out = append(out, namedDef{name: nd.name + gen, def: def, line: nd.line})
		}
	}
	return out, nil
}

// expandShared turns the remaining loops of a top-level test into run
// time loops: the marker segments move from args to SubArgs as
// "-<var> ${<var>}" and the loops are recorded on the definition.
func expandShared(file string, def *Definition) error {
	lf, err := parseLoopFields(file, def)
	if err != nil {
		return err
	}
	loops := lf.loops(anyMode)
	if len(loops) == 0 {
		return nil
	}
	var label, args, subargs []string
	if lf.nsize != nil {
		def.Set(KeyNsize, lf.nsize.Placeholder())
	}
	for _, l := range loops {
		if len(l.Values) == 0 {
			return &LoopResolutionError{File: file, Var: l.Var}
		}
		def.Loops = append(def.Loops, l.clone())
		label = append(label, l.Var+"-"+l.Placeholder())
	}
	for _, p := range lf.args {
		if p.loop == nil {
			args = append(args, p.text)
			continue
		}
		subargs = append(subargs, p.render(p.loop.Placeholder()))
	}
	if def.Has(KeyArgs) {
		def.Set(KeyArgs, strings.Join(args, " "))
	}
	def.SubArgs = strings.Join(subargs, " ")
	def.LabelSuffix = "_" + strings.Join(label, "_")
	return nil
}

// expandSubtestLoops resolves every loop of the nested subtests of def
// into concrete subtests, one per combination of values, named
// <subtest>_<var>-<value>. Nested subtests run inside their parent's
// script so no run time placeholder is left behind.
func expandSubtestLoops(file string, def *Definition) error {
	var names []string
	for _, name := range def.Subtests {
		sub := def.Subtest(name)
		lf, err := parseLoopFields(file, sub)
		if err != nil {
			return err
		}
		loops := lf.loops(anyMode)
		if len(loops) == 0 {
			names = append(names, name)
			continue
		}
		combos, err := product(file, loops)
		if err != nil {
			return err
		}
		delete(def.children, name)
		for _, combo := range combos {
			n := sub.Clone()
			lf.bind(n, combo)
			n.LabelSuffix = suffixFor(combo)
			gen := name + n.LabelSuffix
			def.children[gen] = n
			names = append(names, gen)
		}
	}
	def.Subtests = names
	return nil
}
