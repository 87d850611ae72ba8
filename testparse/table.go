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
	"path/filepath"
	"strings"

	"github.com/coreos/pkg/capnslog"
)

var plog = capnslog.NewPackageLogger("github.com/petsc/testgen", "testparse")

// Test is one entry of a file's expanded test table. Line is the header
// line of the test block it was generated from.
type Test struct {
	Name string
	Def  *Definition
	Line int
}

// File is the parse result of one source file.
type File struct {
	// Name is the base name of the source file.
	Name  string
	Path  string
	Build BuildMetadata
	// Tests is in generation order; names are unique.
	Tests []Test
}

// Lookup returns the definition of the named test or nil.
func (f *File) Lookup(name string) *Definition {
	for _, t := range f.Tests {
		if t.Name == name {
			return t.Def
		}
	}
	return nil
}

// Names returns the test names in generation order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Tests))
	for _, t := range f.Tests {
		names = append(names, t.Name)
	}
	return names
}

// ParseFile extracts and parses the test and build blocks of a source
// file. It returns nil without error if the file declares no tests.
func ParseFile(path string, src []byte) (*File, error) {
	text := string(src)
	blocks, err := ExtractBlocks(path, text)
	if err != nil {
		return nil, err
	}
	lines := joinBlocks(blocks)
	empty := true
	for _, l := range lines {
		if !isBlank(strings.TrimPrefix(l.Text, "!")) {
			empty = false
			break
		}
	}
	if empty {
		plog.Debugf("No test found in: %s", path)
		return nil, nil
	}

	tests, err := ParseTests(path, lines)
	if err != nil {
		return nil, err
	}
	return &File{
		Name:  filepath.Base(path),
		Path:  path,
		Build: ExtractBuildMetadata(text),
		Tests: tests,
	}, nil
}

// testBlock is the body of one test or testset header.
type testBlock struct {
	line  int
	lines []Line
}

// splitBlocks cuts the stripped test section at every top-level test
// or testset header. Text after the header's colon starts the body.
func splitBlocks(lines []Line) []testBlock {
	var blocks []testBlock
	for _, l := range lines {
		header := !strings.HasPrefix(l.Text, " ") && !isComment(l.Text) && isTestHeader(lineKey(l.Text))
		if header {
			b := testBlock{line: l.Num}
			if rest := l.Text[strings.IndexByte(l.Text, ':')+1:]; !isBlank(rest) {
				b.lines = append(b.lines, Line{Num: l.Num, Text: rest})
			}
			blocks = append(blocks, b)
			continue
		}
		if len(blocks) == 0 {
			continue
		}
		last := &blocks[len(blocks)-1]
		last.lines = append(last.lines, l)
	}
	return blocks
}

// ParseTests parses the concatenated test blocks of srcfile into its
// expanded test table.
func ParseTests(srcfile string, lines []Line) ([]Test, error) {
	stripped, err := stripIndent(lines, srcfile, true)
	if err != nil {
		return nil, err
	}

	var tests []Test
	seen := make(map[string]int)
	for _, b := range splitBlocks(stripped) {
		name, def, err := parseTest(b.lines, srcfile)
		if err != nil {
			return nil, err
		}
		expanded, err := splitTests(srcfile, namedDef{name: name, def: def, line: b.line})
		if err != nil {
			return nil, err
		}
		for _, nd := range expanded {
			if prev, ok := seen[nd.name]; ok {
				return nil, &NameCollisionError{File: srcfile, Name: nd.name, Line: nd.line, PrevLine: prev}
			}
			seen[nd.name] = nd.line
			tests = append(tests, Test{Name: nd.name, Def: nd.def, Line: nd.line})
		}
	}
	return tests, nil
}

// splitTests expands one parsed test block into the tests it declares.
// The order matters: separate loops of the parent are split first so
// promoted subtests compose their suffix after the loop suffix, then
// subtests are promoted, then separate loops brought in by promoted
// subtests are split. Remaining loops become run time loops.
func splitTests(srcfile string, nd namedDef) ([]namedDef, error) {
	tests, err := expandSeparate(srcfile, []namedDef{nd})
	if err != nil {
		return nil, err
	}
	tests = promoteSubtests(tests)
	if tests, err = expandSeparate(srcfile, tests); err != nil {
		return nil, err
	}
	for _, t := range tests {
		if err := expandShared(srcfile, t.def); err != nil {
			return nil, err
		}
		if err := expandSubtestLoops(srcfile, t.def); err != nil {
			return nil, err
		}
	}
	return tests, nil
}
