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
	"errors"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func block(body string) string {
	return "int main(void) { return 0; }\n\n/*TEST\n" + body + "\nTEST*/\n"
}

func mustParse(t *testing.T, path, src string) *File {
	t.Helper()
	f, err := ParseFile(path, []byte(src))
	if err != nil {
		t.Fatalf("ParseFile(%s): %v", path, err)
	}
	if f == nil {
		t.Fatalf("ParseFile(%s): no tests", path)
	}
	return f
}

func TestDefaultName(t *testing.T) {
	for _, tt := range []struct{ in, want string }{
		{"ex1.c", "runex1"},
		{"src/ksp/examples/tests/new_ex2.c", "runex2"},
		{"ex22f.F90", "runex22f"},
		{"_ex1.c", "run_ex1"},
	} {
		if got := DefaultName(tt.in); got != tt.want {
			t.Errorf("DefaultName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSingleEntry(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"default", "   test:\n      args: -pc_type jacobi\n", "runex1"},
		{"suffix", "   test:\n      suffix: 2\n      args: -pc_type jacobi\n", "runex1_2"},
		{"testset", "   testset:\n      nsize: 4\n", "runex1"},
		{"empty", "   test:\n", "runex1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustParse(t, "ex1.c", block(tt.body))
			if diff := pretty.Compare(f.Names(), []string{tt.want}); diff != "" {
				t.Errorf("names differ (-got +want):\n%s", diff)
			}
		})
	}
}

func TestIdempotent(t *testing.T) {
	src := block(`   testset:
      suffix: mg
      nsize: {{1 2}separate}
      args: -pc_type mg -ksp_type {{gmres cg}} # multigrid
      test:
         suffix: a
         args: -pc_mg_levels 2
      test:
         args: -mg_levels_ksp_type {{richardson chebyshev}}
`)
	a := mustParse(t, "ex1.c", src)
	b := mustParse(t, "ex1.c", src)
	if diff := pretty.Compare(a, b); diff != "" {
		t.Errorf("second parse differs:\n%s", diff)
	}
}

func TestSeparateLoop(t *testing.T) {
	f := mustParse(t, "ex1.c", block("   test:\n      nsize: 2\n      args: -pc_type mg -ksp_type {{gmres cg}separate}\n"))
	if diff := pretty.Compare(f.Names(), []string{"runex1_ksp_type-gmres", "runex1_ksp_type-cg"}); diff != "" {
		t.Fatalf("names differ (-got +want):\n%s", diff)
	}
	for _, tt := range []struct{ name, args string }{
		{"runex1_ksp_type-gmres", "-pc_type mg -ksp_type gmres"},
		{"runex1_ksp_type-cg", "-pc_type mg -ksp_type cg"},
	} {
		def := f.Lookup(tt.name)
		if def.Nsize() != "2" {
			t.Errorf("%s: nsize = %q, want 2", tt.name, def.Nsize())
		}
		if got := def.Args(); got != tt.args {
			t.Errorf("%s: args = %q, want %q", tt.name, got, tt.args)
		}
		if strings.Contains(def.Args(), "{{") || len(def.Loops) != 0 {
			t.Errorf("%s: loop syntax left behind: %q %v", tt.name, def.Args(), def.Loops)
		}
	}
}

func TestSeparateLoopStrayBrace(t *testing.T) {
	f := mustParse(t, "ex1.c", block("   test:\n      args: -f {x -ksp_type {{a b}separate}\n"))
	if diff := pretty.Compare(f.Names(), []string{"runex1_ksp_type-a", "runex1_ksp_type-b"}); diff != "" {
		t.Fatalf("names differ (-got +want):\n%s", diff)
	}
	if got, want := f.Lookup("runex1_ksp_type-b").Args(), "-f {x -ksp_type b"; got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestSeparateLoopCount(t *testing.T) {
	f := mustParse(t, "ex2.c", block("   test:\n      suffix: s\n      nsize: {{1 2 4}separate}\n      args: -n 8 -da_refine {{0 1}separate} -log_view\n"))
	want := []string{
		"runex2_s_nsize-1_da_refine-0",
		"runex2_s_nsize-1_da_refine-1",
		"runex2_s_nsize-2_da_refine-0",
		"runex2_s_nsize-2_da_refine-1",
		"runex2_s_nsize-4_da_refine-0",
		"runex2_s_nsize-4_da_refine-1",
	}
	if diff := pretty.Compare(f.Names(), want); diff != "" {
		t.Fatalf("names differ (-got +want):\n%s", diff)
	}
	def := f.Lookup("runex2_s_nsize-4_da_refine-1")
	if def.Nsize() != "4" || def.Args() != "-n 8 -da_refine 1 -log_view" {
		t.Errorf("got nsize %q args %q", def.Nsize(), def.Args())
	}
	if got := def.Value(KeySuffix); got != "s_nsize-4_da_refine-1" {
		t.Errorf("suffix = %q", got)
	}
}

func TestSharedLoop(t *testing.T) {
	f := mustParse(t, "ex1.c", block("   test:\n      nsize: {{1 3}}\n      args: -bs {{1 2 3}} -pc_type {{cholesky sor}shared} -ksp_monitor\n"))
	if diff := pretty.Compare(f.Names(), []string{"runex1"}); diff != "" {
		t.Fatalf("names differ (-got +want):\n%s", diff)
	}
	def := f.Lookup("runex1")
	if got, want := def.Args(), "-ksp_monitor -bs ${bs} -pc_type ${pc_type}"; got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
	if def.Nsize() != "${nsize}" {
		t.Errorf("nsize = %q", def.Nsize())
	}
	if got, want := def.LabelSuffix, "_nsize-${nsize}_bs-${bs}_pc_type-${pc_type}"; got != want {
		t.Errorf("label suffix = %q, want %q", got, want)
	}
	want := []LoopSpec{
		{Var: "nsize", Values: []string{"1", "3"}, Mode: Shared, Field: KeyNsize},
		{Var: "bs", Values: []string{"1", "2", "3"}, Mode: Shared, Field: KeyArgs},
		{Var: "pc_type", Values: []string{"cholesky", "sor"}, Mode: Shared, Field: KeyArgs},
	}
	if diff := pretty.Compare(def.Loops, want); diff != "" {
		t.Errorf("loops differ (-got +want):\n%s", diff)
	}
}

func TestSeparateThenShared(t *testing.T) {
	f := mustParse(t, "ex1.c", block("   test:\n      suffix: a\n      nsize: {{1 2}separate}\n      args: -x {{p q}}\n"))
	if diff := pretty.Compare(f.Names(), []string{"runex1_a_nsize-1", "runex1_a_nsize-2"}); diff != "" {
		t.Fatalf("names differ (-got +want):\n%s", diff)
	}
	def := f.Lookup("runex1_a_nsize-2")
	if def.Nsize() != "2" || def.Args() != "-x ${x}" || len(def.Loops) != 1 {
		t.Errorf("got nsize %q args %q loops %v", def.Nsize(), def.Args(), def.Loops)
	}
}

func TestPromotion(t *testing.T) {
	f := mustParse(t, "_ex1.c", block(`   testset:
      args: -a 1
      requires: complex
      output_file: output/ex1.out
      test:
         suffix: 2
         args: -b 2
         requires: !single
         output_file: output/ex1_2.out
`))
	if diff := pretty.Compare(f.Names(), []string{"run_ex1_2"}); diff != "" {
		t.Fatalf("names differ (-got +want):\n%s", diff)
	}
	def := f.Lookup("run_ex1_2")
	for k, want := range map[Key]string{
		KeyArgs:       "-a 1 -b 2",
		KeyRequires:   "complex !single",
		KeyOutputFile: "output/ex1_2.out",
		KeySuffix:     "2",
	} {
		if got := def.Value(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if len(def.Subtests) != 0 {
		t.Errorf("promoted test kept subtests %v", def.Subtests)
	}
}

func TestPromotionJoinsComments(t *testing.T) {
	f := mustParse(t, "ex1.c", block(`   testset:
      comments: parent note
      test:
         suffix: a
         comments: child note
`))
	if got, want := f.Lookup("runex1_a").Value(KeyComments), "parent note child note"; got != want {
		t.Errorf("comments = %q, want %q", got, want)
	}
}

func TestPromotionKeepsNested(t *testing.T) {
	f := mustParse(t, "ex3.c", block(`   testset:
      args: -da_grid_x 4
      test:
         suffix: a
      test:
         args: -snes_monitor
      test:
         args: -pc_type {{jacobi sor}}
`))
	if diff := pretty.Compare(f.Names(), []string{"runex3_a", "runex3"}); diff != "" {
		t.Fatalf("names differ (-got +want):\n%s", diff)
	}
	parent := f.Lookup("runex3")
	want := []string{"test1", "test2_pc_type-jacobi", "test2_pc_type-sor"}
	if diff := pretty.Compare(parent.Subtests, want); diff != "" {
		t.Fatalf("subtests differ (-got +want):\n%s", diff)
	}
	sub := parent.Subtest("test2_pc_type-sor")
	if sub.Args() != "-pc_type sor" || sub.LabelSuffix != "_pc_type-sor" {
		t.Errorf("subtest args %q label %q", sub.Args(), sub.LabelSuffix)
	}
	if got := f.Lookup("runex3_a").Value(KeyArgs); got != "-da_grid_x 4" {
		t.Errorf("promoted args = %q", got)
	}
}

func TestSuffixComposition(t *testing.T) {
	f := mustParse(t, "ex1.c", block(`   testset:
      suffix: p
      args: -n {{1 2}separate}
      test:
         suffix: s
         args: -m {{x y}separate}
`))
	want := []string{
		"runex1_p_n-1_s_m-x",
		"runex1_p_n-1_s_m-y",
		"runex1_p_n-2_s_m-x",
		"runex1_p_n-2_s_m-y",
	}
	if diff := pretty.Compare(f.Names(), want); diff != "" {
		t.Fatalf("names differ (-got +want):\n%s", diff)
	}
	if got := f.Lookup("runex1_p_n-2_s_m-x").Args(); got != "-n 2 -m x" {
		t.Errorf("args = %q", got)
	}
}

func TestDuplicateKeys(t *testing.T) {
	f := mustParse(t, "ex1.c", block("   test:\n      args: -a 1\n      args: -b 2\n      requires: x\n      requires: y\n"))
	def := f.Lookup("runex1")
	if got := def.Value(KeyArgs); got != "-a 1 -b 2" {
		t.Errorf("args = %q", got)
	}
	if diff := pretty.Compare(def.Requires(), []string{"x", "y"}); diff != "" {
		t.Errorf("requires differ:\n%s", diff)
	}

	for _, body := range []string{
		"   test:\n      suffix: a\n      suffix: b\n",
		"   testset:\n      test:\n         nsize: 1\n         nsize: 2\n",
	} {
		_, err := ParseFile("ex1.c", []byte(block(body)))
		var dup *DuplicateKeyError
		if !errors.As(err, &dup) {
			t.Errorf("expected DuplicateKeyError, got %v", err)
		}
	}
}

func TestComments(t *testing.T) {
	f := mustParse(t, "ex1.c", block("   test:\n      # first\n      comments: explicit\n      args: -a 1 # second\n"))
	if got, want := f.Lookup("runex1").Value(KeyComments), "explicit\nfirst\nsecond"; got != want {
		t.Errorf("comments = %q, want %q", got, want)
	}
}

func TestFortranBlock(t *testing.T) {
	src := "      program main\n!/*TEST\n!\n!   test:\n!      suffix: f\n!      args: -a 1\n!\n!TEST*/\n"
	f := mustParse(t, "ex1f.F90", src)
	if diff := pretty.Compare(f.Names(), []string{"runex1f_f"}); diff != "" {
		t.Errorf("names differ (-got +want):\n%s", diff)
	}
}

func TestBuildMetadata(t *testing.T) {
	src := "/*T\n   Concepts: KSP^solving a system\n   requires: complex\n   depends: ex1dep.c\n   requires: x\nT*/\n" + block("   test:\n")
	f := mustParse(t, "ex1.c", src)
	want := BuildMetadata{Requires: "complex", Depends: "ex1dep.c"}
	if diff := pretty.Compare(f.Build, want); diff != "" {
		t.Errorf("build metadata differs (-got +want):\n%s", diff)
	}
}

func TestNoTests(t *testing.T) {
	for _, src := range []string{"int main(void);\n", "/*TEST\n\nTEST*/\n"} {
		f, err := ParseFile("ex1.c", []byte(src))
		if err != nil || f != nil {
			t.Errorf("ParseFile(%q) = %v, %v", src, f, err)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(error) bool
	}{
		{"missing terminator", "int x;\n/*TEST\n   test:\n", func(err error) bool {
			var fe *FormatError
			return errors.As(err, &fe) && fe.Line == 2
		}},
		{"no test header", block("   args: -a\n"), func(err error) bool {
			var fe *FormatError
			return errors.As(err, &fe)
		}},
		{"bad top level key", block("   test:\n      args: -a\nnsize: 2\n"), func(err error) bool {
			var fe *FormatError
			return errors.As(err, &fe)
		}},
		{"inconsistent subtests", "/*TEST\n   testset:\n      test:\n         args: -a\n   testset:\n        test:\n          args: -b\nTEST*/\n", func(err error) bool {
			var fe *FormatError
			return errors.As(err, &fe) && fe.Line == 6
		}},
		{"unknown key", block("   test:\n      argz: -a\n"), func(err error) bool {
			var uk *UnknownKeyError
			return errors.As(err, &uk) && uk.Key == "argz"
		}},
		{"missing colon", block("   test:\n      args -a\n"), func(err error) bool {
			var fe *FormatError
			return errors.As(err, &fe)
		}},
		{"empty loop", block("   test:\n      args: -ksp_type {{}separate}\n"), func(err error) bool {
			var le *LoopResolutionError
			return errors.As(err, &le) && le.Var == "ksp_type"
		}},
		{"bad modifier", block("   test:\n      args: -ksp_type {{cg}apart}\n"), func(err error) bool {
			var fe *FormatError
			return errors.As(err, &fe)
		}},
		{"collision", block("   test:\n      args: -a\n\n   test:\n      args: -b\n"), func(err error) bool {
			var nc *NameCollisionError
			return errors.As(err, &nc) && nc.Name == "runex1" && nc.PrevLine == 4 && nc.Line == 7
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile("ex1.c", []byte(tt.src))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error %T: %v", err, err)
			}
		})
	}
}
