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
	"path"
	"strings"

	"github.com/petsc/testgen/harness/reporters"
	"github.com/petsc/testgen/harness/testresult"
	"github.com/petsc/testgen/lang/natsort"
	"github.com/petsc/testgen/testparse"
)

var (
	// Packages are the library packages in build order.
	Packages = []string{"sys", "vec", "mat", "dm", "ksp", "snes", "ts", "tao"}
	// Languages are the source languages, keyed by the names used in
	// makefile variables.
	Languages = []string{"c", "cxx", "cu", "F", "F90"}
)

// Test is one generated test of a source file.
type Test struct {
	Name    string
	Def     *testparse.Definition
	Status  testresult.Status
	Reasons []string
	// Script is the run script path relative to the test root.
	Script   string
	ArgLabel string
}

// FileResult is what was generated for one source file.
type FileResult struct {
	// Dir is the example directory relative to PETSC_DIR.
	Dir  string
	Name string
	Pkg  string
	Lang string
	Exec string
	// Built is set when the configuration can compile the file.
	Built bool
	// Tested is set when at least one test is run.
	Tested bool
	// Skips are the reasons that apply to every test of the file.
	Skips     []string
	Build     testparse.BuildMetadata
	DependObj string
	Tests     []*Test
}

// Source is the source file path relative to PETSC_DIR.
func (fr *FileResult) Source() string {
	return path.Join(fr.Dir, fr.Name)
}

// Object is the object file of the source in the makefile's test tree.
func (fr *FileResult) Object() string {
	return "${TESTDIR}/" + path.Join(fr.Dir, strings.TrimSuffix(fr.Name, path.Ext(fr.Name))) + ".o"
}

// Compiled reports whether the source is listed for compilation.
func (fr *FileResult) Compiled() bool {
	return fr.Built && fr.Tested
}

// Aggregate collects the results of a walk. It is filled by the caller
// from the per file results, never by the workers.
type Aggregate struct {
	Files []*FileResult
	byPkg map[string]map[string][]*FileResult
}

func NewAggregate() *Aggregate {
	return &Aggregate{byPkg: make(map[string]map[string][]*FileResult)}
}

// Add records a file result.
func (a *Aggregate) Add(fr *FileResult) {
	a.Files = append(a.Files, fr)
	if fr.Lang == "" {
		return
	}
	langs, ok := a.byPkg[fr.Pkg]
	if !ok {
		langs = make(map[string][]*FileResult)
		a.byPkg[fr.Pkg] = langs
	}
	langs[fr.Lang] = append(langs[fr.Lang], fr)
}

// Packages returns the known packages followed by any other package
// seen, in natural order.
func (a *Aggregate) Packages() []string {
	pkgs := append([]string(nil), Packages...)
	var extra []string
	for pkg := range a.byPkg {
		if !contains(Packages, pkg) {
			extra = append(extra, pkg)
		}
	}
	natsort.Strings(extra)
	return append(pkgs, extra...)
}

// FilesOf returns the results of one package and language.
func (a *Aggregate) FilesOf(pkg, lang string) []*FileResult {
	return a.byPkg[pkg][lang]
}

// Sources returns the sources of pkg and lang that are compiled.
func (a *Aggregate) Sources(pkg, lang string) []string {
	var srcs []string
	for _, fr := range a.FilesOf(pkg, lang) {
		if fr.Compiled() {
			srcs = append(srcs, fr.Source())
		}
	}
	return srcs
}

// Objects returns the object files of the compiled sources of pkg.
func (a *Aggregate) Objects(pkg string) []string {
	var objs []string
	for _, lang := range Languages {
		for _, fr := range a.FilesOf(pkg, lang) {
			if fr.Compiled() {
				objs = append(objs, fr.Object())
			}
		}
	}
	return objs
}

// Stats counts files and tests by outcome.
type Stats struct {
	Files, Compiled, Tests int
	ByStatus            map[testresult.Status]int
}

func (a *Aggregate) Stats() Stats {
	s := Stats{ByStatus: make(map[testresult.Status]int)}
	for _, fr := range a.Files {
		s.Files++
		if fr.Compiled() {
			s.Compiled++
		}
		for _, t := range fr.Tests {
			s.Tests++
			s.ByStatus[t.Status]++
		}
	}
	return s
}

// Report converts the aggregate for the reporters, directories in
// natural order.
func (a *Aggregate) Report(petscDir, petscArch string) *reporters.Report {
	r := &reporters.Report{PetscDir: petscDir, PetscArch: petscArch}
	dirs := make(map[string][]*FileResult)
	for _, fr := range a.Files {
		dirs[fr.Dir] = append(dirs[fr.Dir], fr)
	}
	for _, dir := range natsort.Sorted(dirs) {
		d := reporters.Dir{Path: dir}
		for _, fr := range dirs[dir] {
			f := reporters.File{Name: fr.Name, Built: fr.Compiled()}
			for _, t := range fr.Tests {
				f.Tests = append(f.Tests, reporters.Test{
					Name:     t.Name,
					Status:   t.Status,
					Nsize:    t.Def.Nsize(),
					Args:     t.Def.Args(),
					Requires: t.Def.Value(testparse.KeyRequires),
					Script:   t.Script,
					Reasons:  t.Reasons,
				})
			}
			d.Files = append(d.Files, f)
		}
		r.Dirs = append(r.Dirs, d)
	}
	return r
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
