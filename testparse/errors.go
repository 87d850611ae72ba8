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
)

// FormatError reports a malformed block: a missing terminator, a bad
// top-level key or inconsistent subtest indentation. Line is 0 when the
// position is unknown.
type FormatError struct {
	File string
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: formatting error: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: formatting error: %s", e.File, e.Msg)
}

// UnknownKeyError reports a key outside of AcceptedKeys.
type UnknownKeyError struct {
	File string
	Line int
	Key  string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("%s:%d: not a defined key: %q", e.File, e.Line, e.Key)
}

// DuplicateKeyError reports a non-append key given twice in one block.
type DuplicateKeyError struct {
	File string
	Line int
	Key  Key
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s:%d: %s entered twice", e.File, e.Line, e.Key)
}

// LoopResolutionError reports a loop variable without any values.
type LoopResolutionError struct {
	File string
	Var  string
}

func (e *LoopResolutionError) Error() string {
	return fmt.Sprintf("%s: could not find separate_testvar: %s", e.File, e.Var)
}

// NameCollisionError reports two generated tests of one file sharing a
// name. Line and PrevLine are the header lines of the test blocks that
// produced the new and the existing entry.
type NameCollisionError struct {
	File     string
	Name     string
	Line     int
	PrevLine int
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("%s: multiple test names specified: %s (test at line %d collides with test at line %d)",
		e.File, e.Name, e.Line, e.PrevLine)
}

// MissingDataError reports an expected output file which is not in the
// source tree. It is never fatal; the test may be skipped anyway.
type MissingDataError struct {
	File string
	Path string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("%s: %s not found", e.File, e.Path)
}
