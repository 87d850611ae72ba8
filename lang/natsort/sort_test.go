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

package natsort

import (
	"strings"
	"testing"
)

func testCompare(t *testing.T, a, b string) {
	t.Helper()
	if result := Compare(a, b); result != -1 {
		t.Errorf("Compare(%q, %q) = %+d, expected -1", a, b, result)
	}
	if result := Compare(b, a); result != +1 {
		t.Errorf("Compare(%q, %q) = %+d, expected +1", b, a, result)
	}
}

func testList(t *testing.T, l []string) {
	t.Helper()
	for i := 0; i < len(l)-1; i++ {
		testCompare(t, l[i], l[i+1])
	}
}

func TestCompareEqual(t *testing.T) {
	for _, s := range []string{"", "runex1", "runex1_2"} {
		if r := Compare(s, s); r != 0 {
			t.Errorf("Compare(%q, %q) = %+d, expected 0", s, s, r)
		}
	}
}

func TestCompareNumbers(t *testing.T) {
	testCompare(t, "2", "10")
	testCompare(t, "2", "02")
	testCompare(t, "100a", "120")
}

func TestCompareTestNames(t *testing.T) {
	testList(t, strings.Fields("runex1 runex1_2 runex1_10 runex1_a runex2 runex10"))
}

func TestCompareLoopSuffixes(t *testing.T) {
	testList(t, strings.Fields("runex5_nsize-1 runex5_nsize-2 runex5_nsize-16 runex5_nsize-16_pc_type-ilu"))
}

func TestStrings(t *testing.T) {
	s := strings.Fields("ex10.c ex2.c ex1.c ex1f.F90")
	Strings(s)
	if got, want := strings.Join(s, " "), "ex1.c ex1f.F90 ex2.c ex10.c"; got != want {
		t.Errorf("Strings() = %q, expected %q", got, want)
	}
	if !StringsAreSorted(s) {
		t.Errorf("StringsAreSorted(%q) = false", s)
	}
}

func TestSorted(t *testing.T) {
	m := map[string]int{"test10": 0, "test2": 0, "test0": 0}
	if got := strings.Join(Sorted(m), " "); got != "test0 test2 test10" {
		t.Errorf("Sorted() = %q", got)
	}
}

func BenchmarkCompare(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Compare("runex1_nsize-16_pc_type-ilu", "runex1_nsize-16_pc_type-jacobi")
	}
}
