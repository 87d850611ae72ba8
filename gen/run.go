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
	"path/filepath"
	"strconv"

	"github.com/petsc/testgen/harness/testresult"
	"github.com/petsc/testgen/requires"
	"github.com/petsc/testgen/testparse"
)

// Language returns the makefile language of a source file, or "" if
// it is not a compiled example.
func Language(file string) string {
	switch filepath.Ext(file) {
	case ".c":
		return "c"
	case ".cxx":
		return "cxx"
	case ".cu":
		return "cu"
	case ".F":
		return "F"
	case ".F90":
		return "F90"
	}
	return ""
}

// languageSkips lists what the configuration lacks to compile lang.
func languageSkips(conf *requires.Config, lang string) []string {
	switch {
	case (lang == "F" || lang == "F90") && !conf.Has("PETSC_HAVE_FORTRAN"):
		return []string{"Fortran required for this test"}
	case lang == "cu" && !conf.Has("PETSC_HAVE_CUDA"):
		return []string{"CUDA required for this test"}
	case lang == "cxx" && !conf.Has("PETSC_HAVE_CXX"):
		return []string{"C++ required for this test"}
	}
	return nil
}

// fileSkips decides whether a source file can be compiled. The reasons
// apply to every test of the file.
func fileSkips(conf *requires.Config, lang string, build testparse.BuildMetadata) (skips []string, built bool) {
	skips = languageSkips(conf, lang)
	if build.TODO != "" {
		return skips, false
	}
	if build.Requires != "" {
		skips = append(skips, conf.EvaluateString(build.Requires).Reasons...)
	}
	return skips, len(skips) == 0
}

// parallel reports whether a test needs more than one process.
func parallel(def *testparse.Definition) bool {
	for _, l := range def.Loops {
		if l.Field != testparse.KeyNsize {
			continue
		}
		for _, v := range l.Values {
			if n, err := strconv.Atoi(v); err == nil && n > 1 {
				return true
			}
		}
		return false
	}
	n, err := strconv.Atoi(def.Nsize())
	return err == nil && n > 1
}

// allRequires returns the requirements of a test and all its subtests.
func allRequires(def *testparse.Definition) []string {
	reqs := def.Requires()
	for _, name := range def.Subtests {
		reqs = append(reqs, def.Subtest(name).Requires()...)
	}
	return reqs
}

// testSkips lists why a test cannot run on conf.
func testSkips(conf *requires.Config, def *testparse.Definition) []string {
	var skips []string
	par := parallel(def)
	for _, name := range def.Subtests {
		par = par || parallel(def.Subtest(name))
	}
	if par && conf.MPIUni {
		skips = append(skips, "Parallel test with serial build")
	}
	return append(skips, conf.Evaluate(allRequires(def)...).Reasons...)
}

// todos lists the TODO notes of a file and a test.
func todos(build testparse.BuildMetadata, def *testparse.Definition) []string {
	var out []string
	for _, s := range []string{build.TODO, def.Value(testparse.KeyTODO)} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// deferredOnly reports whether every reason is checked at run time.
func deferredOnly(reasons []string) bool {
	for _, r := range reasons {
		if r != requires.DataFilesPathReason {
			return false
		}
	}
	return len(reasons) > 0
}

// decide returns the status of a test and the reasons it does not run.
// A TODO wins over skips; a test only lacking DATAFILESPATH is
// deferred to run time.
func decide(conf *requires.Config, fr *FileResult, def *testparse.Definition) (testresult.Status, []string) {
	if todo := todos(fr.Build, def); len(todo) > 0 {
		return testresult.Todo, todo
	}
	reasons := append(append([]string(nil), fr.Skips...), testSkips(conf, def)...)
	if sk := def.Value(testparse.KeySKIP); sk != "" {
		reasons = append(reasons, sk)
	}
	switch {
	case len(reasons) == 0:
		return testresult.Run, nil
	case deferredOnly(reasons):
		return testresult.Deferred, reasons
	}
	return testresult.Skip, reasons
}
