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

// Package natsort orders test and file names the way a person reads
// them: runs of decimal digits compare on their numeric value, so
// runex1_2 sorts before runex1_10 and ex9 before ex10.
package natsort

import (
	"slices"
)

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// digitRun returns the end of the run of digits starting at i.
func digitRun(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return +1
	}
	return 0
}

// cmpNumber compares two digit runs on their value. Runs of equal value
// order by the number of leading zeros, fewer first.
func cmpNumber(a, b string) int {
	ta, tb := trimZeros(a), trimZeros(b)
	if len(ta) != len(tb) {
		return sign(len(ta) - len(tb))
	}
	for i := 0; i < len(ta); i++ {
		if ta[i] != tb[i] {
			return sign(int(ta[i]) - int(tb[i]))
		}
	}
	return sign(len(a) - len(b))
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

// Compare returns -1, 0 or +1 as a sorts before, with or after b.
func Compare(a, b string) int {
	var ai, bi int
	for ai < len(a) && bi < len(b) {
		if isDigit(a[ai]) && isDigit(b[bi]) {
			ae, be := digitRun(a, ai), digitRun(b, bi)
			if r := cmpNumber(a[ai:ae], b[bi:be]); r != 0 {
				return r
			}
			ai, bi = ae, be
			continue
		}
		if a[ai] != b[bi] {
			return sign(int(a[ai]) - int(b[bi]))
		}
		ai++
		bi++
	}
	return sign((len(a) - ai) - (len(b) - bi))
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Strings natural sorts a slice of strings.
func Strings(s []string) {
	slices.SortStableFunc(s, Compare)
}

// StringsAreSorted tests whether a slice of strings is natural sorted.
func StringsAreSorted(s []string) bool {
	return slices.IsSortedFunc(s, Compare)
}

// Sorted returns the keys of m natural sorted.
func Sorted[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	Strings(keys)
	return keys
}
