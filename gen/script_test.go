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

package gen

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coreos/pkg/capnslog"
	"github.com/kylelemons/godebug/diff"

	"github.com/petsc/testgen/harness/testresult"
	"github.com/petsc/testgen/testparse"
	"github.com/petsc/testgen/requires"
)

const tutorials = "src/ksp/examples/tutorials"

func testGenerator(t *testing.T, conf *requires.Config) *Generator {
	t.Helper()
	if conf == nil {
		conf = requires.NewConfig()
	}
	opts := DefaultOptions()
	opts.PetscDir = t.TempDir()
	opts.PetscArch = "arch-test"
	opts.SrcDir = ""
	opts.Jobs = 2
	g, err := New(opts, conf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

// writeTree creates files below root, keyed by slash separated path.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, data := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func results(t *testing.T, g *Generator, name, body string) *FileResult {
	t.Helper()
	f := mustParse(t, tutorials+"/"+name, block(body))
	return g.Results(tutorials, f)
}

func TestDefRoot(t *testing.T) {
	for in, want := range map[string]string{
		"runex1":         "ex1_1",
		"runex1_2":       "ex1_2",
		"runex1_nsize-2": "ex1_nsize-2",
		"runex12f_rungs": "ex12f_rungs",
	} {
		if got := defRoot(in); got != want {
			t.Errorf("defRoot(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNameSpace(t *testing.T) {
	for _, tt := range []struct{ name, dir, want string }{
		{"runex1", "src/ksp/examples/tests", "ksp_tests-runex1"},
		{"ex1_1", "src/ksp/examples/tutorials", "ksp_tutorials-ex1_1"},
		{"ex2_1", "src/snes/examples/tutorials/network", "snes_tutorials_network-ex2_1"},
		{"ex3_1", "/home/petsc/src/dm/examples/tests/", "dm_tests-ex3_1"},
	} {
		if got := nameSpace(tt.name, tt.dir); got != tt.want {
			t.Errorf("nameSpace(%q, %q) = %q, want %q", tt.name, tt.dir, got, tt.want)
		}
	}
}

func TestScript(t *testing.T) {
	g := testGenerator(t, nil)
	p := g.opts.PetscDir
	writeTree(t, p, map[string]string{
		tutorials + "/output/ex1_1.out":     "",
		tutorials + "/output/ex1_1_alt.out": "",
	})
	fr := results(t, g, "ex1.c", `   test:
      # Sweep the preconditioner.
      args: -ksp_type cg -pc_type {{jacobi sor}}
`)
	data, err := g.Script(fr, fr.Tests[0])
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(p, tutorials, "output")
	want := `#! /usr/bin/env bash
# Generated from src/ksp/examples/tutorials/ex1.c, do not edit.
# Sweep the preconditioner.

exec=../ex1
testname=runex1
label=ksp_tutorials-ex1_1
runfiles=''
wPETSC_DIR=` + p + `
petsc_dir=` + p + `
petsc_arch=arch-test
srcdir=` + filepath.Join(p, tutorials) + `
testroot=` + filepath.Join(p, "arch-test", "tests") + `
DATAFILESPATH=${DATAFILESPATH:-''}
index_size=32
scalar_size=''
mpiexec=mpiexec
diff_exe=diff

. "${petsc_dir}/config/petsc_harness.sh"

for pc_type in jacobi sor; do
   petsc_testrun "${mpiexec} -n 1 ${exec} -ksp_type cg -pc_type ${pc_type}" ex1_1.tmp ${testname}.err "${label}_pc_type-${pc_type}"
   petsc_testrun "${diff_exe} ` + out + `/ex1_1.out ex1_1.tmp > diff-${testname}-0.out 2> diff-${testname}-0.out || ${diff_exe} ` + out + `/ex1_1_alt.out ex1_1.tmp > diff-${testname}-1.out 2> diff-${testname}-1.out" diff-${testname}.out diff-${testname}.out "diff-${label}_pc_type-${pc_type}" ""
done

petsc_testend ` + filepath.Join(p, "arch-test", "tests") + `
`
	if got := string(data); got != want {
		t.Errorf("script differs (-got +want):\n%s", diff.Diff(got, want))
	}
}

func TestScriptSubtests(t *testing.T) {
	conf := requires.NewConfig()
	conf.Set("MPIEXEC", "/usr/bin/mpiexec")
	g := testGenerator(t, conf)
	fr := results(t, g, "ex2.c", `   testset:
      args: -a
      filter: grep -v Norm
      test:
         args: -b
      test:
         nsize: 2
         args: -c
         command: ./check.sh
         output_file: output/ex2_c.out
`)
	data, err := g.Script(fr, fr.Tests[0])
	if err != nil {
		t.Fatal(err)
	}
	script := string(data)
	out := filepath.Join(g.opts.PetscDir, tutorials, "output")
	for _, line := range []string{
		"mpiexec=/usr/bin/mpiexec",
		`petsc_testrun "${mpiexec} -n 1 ${exec} -a -b" ex2_1.tmp ${testname}.err "${label}" 'grep -v Norm'`,
		`petsc_testrun "${diff_exe} ` + out + `/ex2_1.out ex2_1.tmp" diff-${testname}.out diff-${testname}.out "diff-${label}" ""`,
		`petsc_testrun "./check.sh" ex2_1.tmp ${testname}.err "cmd-${label}" 'grep -v Norm'`,
		`petsc_testrun "${diff_exe} ` + out + `/ex2_c.out ex2_1.tmp" diff-${testname}.out diff-${testname}.out "diff-${label}" ""`,
	} {
		if !strings.Contains(script, line+"\n") {
			t.Errorf("script is missing %q:\n%s", line, script)
		}
	}
}

func TestScriptReported(t *testing.T) {
	g := testGenerator(t, nil)
	fr := results(t, g, "ex3.c", `   test:
      TODO: broken
   test:
      suffix: 2
      requires: cuda
   test:
      suffix: 3
      requires: datafilespath
      args: -f ${DATAFILESPATH}/matrices/small
`)
	for _, tt := range []struct {
		status testresult.Status
		lines  []string
	}{
		{testresult.Todo, []string{
			`printf "ok ${label} # TODO broken\n"`,
			"total=1; todo=1",
			"exit",
		}},
		{testresult.Skip, []string{
			`printf "ok ${label} # SKIP PETSC_HAVE_CUDA requirement not met\n"`,
			"total=1; skip=1",
		}},
		{testresult.Deferred, []string{
			`if test -z "${DATAFILESPATH}"; then`,
			`   printf "ok ${label} # SKIP Requires DATAFILESPATH\n"`,
			"   exit",
			"fi",
			`petsc_testrun "${mpiexec} -n 1 ${exec} -f ${DATAFILESPATH}/matrices/small" ex3_3.tmp ${testname}.err "${label}"`,
		}},
	} {
		var test *Test
		for _, ft := range fr.Tests {
			if ft.Status == tt.status {
				test = ft
			}
		}
		if test == nil {
			t.Fatalf("no %s test in %v", tt.status, fr.Tests)
		}
		data, err := g.Script(fr, test)
		if err != nil {
			t.Fatal(err)
		}
		for _, line := range tt.lines {
			if !strings.Contains(string(data), line+"\n") {
				t.Errorf("%s: script is missing %q:\n%s", test.Name, line, data)
			}
		}
	}
}

func TestWriteScript(t *testing.T) {
	g := testGenerator(t, nil)
	p := g.opts.PetscDir
	writeTree(t, p, map[string]string{
		tutorials + "/matrix.dat":       "1 0\n0 1\n",
		tutorials + "/output/ex4_1.out": "",
	})
	fr := results(t, g, "ex4.c", `   test:
      localrunfiles: matrix.dat
`)
	if err := g.WriteScript(fr, fr.Tests[0]); err != nil {
		t.Fatal(err)
	}
	runDir := filepath.Join(g.opts.TestRoot(), tutorials)
	info, err := os.Stat(filepath.Join(runDir, "runex4.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("script mode %v, want 0755", info.Mode().Perm())
	}
	if data, err := os.ReadFile(filepath.Join(runDir, "matrix.dat")); err != nil || string(data) != "1 0\n0 1\n" {
		t.Errorf("run file copy = %q, %v", data, err)
	}
}

func TestMissingOutput(t *testing.T) {
	var logs bytes.Buffer
	capnslog.SetFormatter(capnslog.NewStringFormatter(&logs))
	capnslog.SetGlobalLogLevel(capnslog.WARNING)
	defer capnslog.SetFormatter(capnslog.NewStringFormatter(os.Stderr))

	g := testGenerator(t, nil)
	p := g.opts.PetscDir
	writeTree(t, p, map[string]string{
		tutorials + "/output/ex6_1_alt.out": "",
	})
	fr := results(t, g, "ex6.c", `   test:
      args: -pc_type none
`)
	test := fr.Tests[0]
	srcdir := filepath.Join(p, tutorials)

	files, err := g.outputFiles(fr, defRoot(test.Name), "")
	var missing *testparse.MissingDataError
	if !errors.As(err, &missing) {
		t.Fatalf("outputFiles error %v, want a MissingDataError", err)
	}
	if missing.Path != "output/ex6_1.out" {
		t.Errorf("missing path %q", missing.Path)
	}
	want := []string{
		filepath.Join(srcdir, "output", "ex6_1.out"),
		filepath.Join(srcdir, "output", "ex6_1_alt.out"),
	}
	if d := diff.Diff(strings.Join(want, "\n"), strings.Join(files, "\n")); d != "" {
		t.Errorf("output files differ:\n%s", d)
	}

	if err := g.WriteScript(fr, test); err != nil {
		t.Fatalf("missing output should not fail the script: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(g.opts.TestRoot(), test.Script))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), want[0]) {
		t.Errorf("script does not diff against %s:\n%s", want[0], data)
	}
	if !strings.Contains(logs.String(), "output/ex6_1.out not found") {
		t.Errorf("no warning logged, got %q", logs.String())
	}

	logs.Reset()
	fr = results(t, g, "ex7.c", `   test:
      TODO: not ready
`)
	if fr.Tests[0].Status != testresult.Todo {
		t.Fatalf("status %s, want TODO", fr.Tests[0].Status)
	}
	if err := g.WriteScript(fr, fr.Tests[0]); err != nil {
		t.Fatal(err)
	}
	if logs.Len() != 0 {
		t.Errorf("TODO test logged %q", logs.String())
	}
}
