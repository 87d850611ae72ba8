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

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isComment(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "#")
}

func indentOf(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}

// lineKey returns the text before the first colon, trimmed.
func lineKey(s string) string {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func isTestHeader(key string) bool {
	return key == "test" || key == "testset"
}

// stripIndent removes one level of indentation from a block. The width
// is taken from the first line which is neither blank nor a comment.
// Blank lines are dropped, comment lines are kept verbatim and trailing
// whitespace is removed. A leading '!' (Fortran comments) is dropped
// from every line first.
//
// In strict mode the whole test section of a file is checked: every
// line at column 0 must be a test or testset header and all nested
// headers must share one indentation.
func stripIndent(lines []Line, file string, strict bool) ([]Line, error) {
	nspace := -1
	for _, l := range lines {
		text := strings.TrimPrefix(l.Text, "!")
		if isBlank(text) || isComment(text) {
			continue
		}
		if strict && !isTestHeader(lineKey(text)) {
			return nil, &FormatError{File: file, Line: l.Num, Msg: "cannot find test"}
		}
		nspace = indentOf(text)
		break
	}
	if nspace < 0 {
		nspace = 0
	}

	var out []Line
	subIndent := -1
	for _, l := range lines {
		text := strings.TrimPrefix(l.Text, "!")
		if isBlank(text) {
			continue
		}
		if isComment(text) {
			out = append(out, Line{Num: l.Num, Text: text})
			continue
		}
		if indentOf(text) < nspace {
			return nil, &FormatError{File: file, Line: l.Num, Msg: "check indentation: line is outdented from its block"}
		}
		stripped := strings.TrimRight(text[nspace:], " \t\r")
		out = append(out, Line{Num: l.Num, Text: stripped})

		if !strict {
			continue
		}
		key := lineKey(stripped)
		if !strings.HasPrefix(stripped, " ") {
			if !isTestHeader(key) {
				return nil, &FormatError{File: file, Line: l.Num, Msg: "check indentation: expected test or testset at top level, found " + key}
			}
			continue
		}
		if isTestHeader(key) {
			if subIndent < 0 {
				subIndent = indentOf(text)
			} else if subIndent != indentOf(text) {
				return nil, &FormatError{File: file, Line: l.Num, Msg: "check indentation: subtest indented inconsistently"}
			}
		}
	}
	return out, nil
}
