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
	"path/filepath"
	"strings"
)

// DefaultName is the name a test of srcfile gets without a suffix:
// "run" followed by the base name without a "new_" prefix and without
// its extension.
func DefaultName(srcfile string) string {
	base := strings.TrimPrefix(filepath.Base(srcfile), "new_")
	return "run" + strings.TrimSuffix(base, filepath.Ext(base))
}

// cursor is the parser state while scanning the lines of one test
// block: the definition being filled and the open subtest, if any.
type cursor struct {
	file   string
	name   string
	parent *Definition
	open   string
	next   int
}

func (c *cursor) openSubtest() {
	name := fmt.Sprintf("test%d", c.next)
	c.next++
	c.parent.addSubtest(name)
	c.open = name
}

func (c *cursor) set(def *Definition, key Key, val string, line int) error {
	if !def.Has(key) {
		def.Set(key, val)
		return nil
	}
	if !key.Appends() {
		return &DuplicateKeyError{File: c.file, Line: line, Key: key}
	}
	def.appendValue(key, val)
	return nil
}

func (c *cursor) line(l Line) error {
	code := l.Text
	idx := strings.IndexByte(code, ':')
	if idx < 0 {
		return &FormatError{File: c.file, Line: l.Num, Msg: "missing : in line: " + strings.TrimSpace(code)}
	}
	key, ok := lookupKey(strings.TrimSpace(code[:idx]))
	if !ok {
		return &UnknownKeyError{File: c.file, Line: l.Num, Key: strings.TrimSpace(code[:idx])}
	}
	val := strings.TrimSpace(code[idx+1:])

	switch {
	case strings.HasPrefix(code, " "):
		if c.open == "" {
			return &FormatError{File: c.file, Line: l.Num, Msg: "indented key " + string(key) + " outside of a subtest"}
		}
		if key == KeyTest {
			return &FormatError{File: c.file, Line: l.Num, Msg: "subtests cannot be nested"}
		}
		return c.set(c.parent.Subtest(c.open), key, val, l.Num)
	case key == KeyTest:
		c.openSubtest()
		return nil
	default:
		if err := c.set(c.parent, key, val, l.Num); err != nil {
			return err
		}
		if key == KeySuffix && val != "" {
			c.name += "_" + val
		}
		return nil
	}
}

// splitComment separates the code of a line from a trailing comment.
func splitComment(s string) (string, string) {
	idx := strings.IndexByte(s, '#')
	if idx < 0 {
		return s, ""
	}
	return strings.TrimRight(s[:idx], " \t"), strings.TrimSpace(s[idx+1:])
}

// parseTest parses the body of one test or testset header into the
// test name and its definition. Subtests are named test0, test1, ... in
// declaration order.
func parseTest(block []Line, srcfile string) (string, *Definition, error) {
	c := &cursor{
		file:   srcfile,
		name:   DefaultName(srcfile),
		parent: NewDefinition(),
	}

	lines, err := stripIndent(block, srcfile, false)
	if err != nil {
		return "", nil, err
	}

	var comments []string
	for _, l := range lines {
		code, comment := splitComment(l.Text)
		if comment != "" {
			comments = append(comments, comment)
		}
		if isBlank(code) {
			continue
		}
		plog.Debugf("%s:%d: %s", srcfile, l.Num, code)
		if err := c.line(Line{Num: l.Num, Text: code}); err != nil {
			return "", nil, err
		}
	}
	if len(comments) > 0 {
		c.parent.appendValue(KeyComments, strings.Join(comments, "\n"))
	}
	return c.name, c.parent, nil
}
