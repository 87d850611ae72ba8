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

const (
	testBlockStart  = "/*TEST"
	testBlockEnd    = "TEST*/"
	buildBlockStart = "/*T"
	buildBlockEnd   = "T*/"
)

// Line is one line of block text with its 1-based source line number.
type Line struct {
	Num  int
	Text string
}

// RawBlock is the verbatim text between a /*TEST marker and its TEST*/
// terminator. StartLine is the line following the marker and EndLine
// the line holding the terminator.
type RawBlock struct {
	Text      string
	StartLine int
	EndLine   int
}

// Lines splits the block into numbered lines.
func (b RawBlock) Lines() []Line {
	var lines []Line
	for i, l := range strings.Split(b.Text, "\n") {
		lines = append(lines, Line{Num: b.StartLine + i, Text: l})
	}
	return lines
}

// ExtractBlocks returns the test blocks of a source file in file order.
// A marker line must contain nothing but the marker after it; a block
// without a terminator is a FormatError.
func ExtractBlocks(file, src string) ([]RawBlock, error) {
	var blocks []RawBlock
	lines := strings.Split(src, "\n")
	for i := 0; i < len(lines); i++ {
		idx := strings.Index(lines[i], testBlockStart)
		if idx < 0 || strings.TrimSpace(lines[i][idx+len(testBlockStart):]) != "" {
			continue
		}
		start := i + 1
		var body []string
		closed := false
		for i++; i < len(lines); i++ {
			if end := strings.Index(lines[i], testBlockEnd); end >= 0 {
				if pre := lines[i][:end]; strings.TrimSpace(pre) != "" {
					body = append(body, pre)
				}
				closed = true
				break
			}
			body = append(body, lines[i])
		}
		if !closed {
			return nil, &FormatError{File: file, Line: start, Msg: "missing " + testBlockEnd + " terminator"}
		}
		blocks = append(blocks, RawBlock{
			Text:      strings.Join(body, "\n"),
			StartLine: start + 1,
			EndLine:   i + 1,
		})
	}
	return blocks, nil
}

// joinBlocks concatenates the lines of all blocks in file order.
func joinBlocks(blocks []RawBlock) []Line {
	var lines []Line
	for _, b := range blocks {
		lines = append(lines, b.Lines()...)
	}
	return lines
}

// ExtractBuildMetadata reads the build keys of the first /*T ... T*/
// block. The first occurrence of each key wins.
func ExtractBuildMetadata(src string) BuildMetadata {
	var meta BuildMetadata
	start := -1
	for _, marker := range []string{buildBlockStart + "\n", buildBlockStart + " "} {
		if idx := strings.Index(src, marker); idx >= 0 && (start < 0 || idx < start) {
			start = idx
		}
	}
	if start < 0 {
		return meta
	}
	info := src[start+len(buildBlockStart):]
	if end := strings.Index(info, buildBlockEnd); end >= 0 {
		info = info[:end]
	}
	for _, key := range BuildKeys {
		idx := strings.Index(info, key+":")
		if idx < 0 {
			continue
		}
		val := info[idx+len(key)+1:]
		if nl := strings.IndexByte(val, '\n'); nl >= 0 {
			val = val[:nl]
		}
		meta.set(key, strings.TrimSpace(val))
	}
	return meta
}
