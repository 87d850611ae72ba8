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
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/petsc/testgen/harness/testresult"
	"github.com/petsc/testgen/testparse"
	"github.com/petsc/testgen/util"
)

const scriptIndent = "   "

// scriptWriter accumulates a run script. The first template error
// sticks and later writes are dropped.
type scriptWriter struct {
	buf   bytes.Buffer
	depth int
	err   error
}

func (w *scriptWriter) line(s string) {
	for _, l := range strings.Split(s, "\n") {
		if l != "" {
			w.buf.WriteString(strings.Repeat(scriptIndent, w.depth))
			w.buf.WriteString(l)
		}
		w.buf.WriteByte('\n')
	}
}

func (w *scriptWriter) exec(t *template.Template, data any) {
	if w.err != nil {
		return
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		w.err = errors.Wrapf(err, "executing %s template", t.Name())
		return
	}
	w.line(strings.TrimSuffix(sb.String(), "\n"))
}

type scriptHeader struct {
	Source        string
	Comments      []string
	Exec          string
	TestName      string
	Label         string
	RunFiles      string
	WPetscDir     string
	PetscDir      string
	PetscArch     string
	SrcDir        string
	TestRoot      string
	DataFilesPath string
	IndexSize     string
	ScalarSize    string
	MPIExec       string
	Diff          string
}

type reported struct {
	Directive string
	Counter   string
	Reasons   []string
	TestRoot  string
}

// runStep is one executable run of a script and the comparison of its
// output.
type runStep struct {
	Nsize        string
	Args         string
	Command      string
	Filter       string
	FilterOutput string
	RedirectFile string
	LabelSuffix  string
	OutputFiles  []string
}

// defRoot is the test name without its "run" prefix, with "_1"
// appended if it has no underscore.
func defRoot(testname string) string {
	root := strings.TrimPrefix(testname, "run")
	if !strings.Contains(root, "_") {
		root += "_1"
	}
	return root
}

// nameSpace prefixes a test label with its package and example kind,
// e.g. "src/ksp/examples/tests" gives "ksp_tests-<name>".
func nameSpace(name, dir string) string {
	d := filepath.ToSlash(dir)
	if i := strings.Index(d, "src/"); i >= 0 {
		d = d[i+len("src/"):]
	} else if strings.HasPrefix(d, "src") {
		d = strings.TrimPrefix(d, "src")
	}
	d = strings.Trim(d, "/")
	d = strings.ReplaceAll(d, "/examples/", "_")
	d = strings.ReplaceAll(d, "/", "_")
	return d + "-" + name
}

// execName is the makefile target running the tests of a source file.
func (g *Generator) execName(fr *FileResult) string {
	if g.opts.SingleExecutable {
		return fr.Pkg + "-ex"
	}
	return strings.TrimSuffix(fr.Name, path.Ext(fr.Name))
}

func (g *Generator) confValue(name, def string) string {
	if v := g.conf.Get(name); v != "" {
		return v
	}
	return def
}

func (g *Generator) header(fr *FileResult, t *Test) scriptHeader {
	h := scriptHeader{
		Source:        fr.Source(),
		Exec:          "../" + fr.Exec,
		TestName:      t.Name,
		Label:         nameSpace(defRoot(t.Name), fr.Dir),
		RunFiles:      strings.Join(runFiles(t.Def), " "),
		WPetscDir:     g.confValue("wPETSC_DIR", g.opts.PetscDir),
		PetscDir:      g.opts.PetscDir,
		PetscArch:     g.opts.PetscArch,
		SrcDir:        filepath.Join(g.opts.PetscDir, fr.Dir),
		TestRoot:      g.opts.TestRoot(),
		DataFilesPath: g.confValue("DATAFILESPATH", ""),
		IndexSize:     g.confValue("PETSC_INDEX_SIZE", strconv.Itoa(g.conf.IntSize*8)),
		ScalarSize:    g.confValue("PETSC_SCALAR_SIZE", ""),
		MPIExec:       g.confValue("MPIEXEC", "mpiexec"),
		Diff:          g.confValue("DIFF", "diff"),
	}
	if g.opts.Valgrind() {
		h.MPIExec = "petsc_mpiexec_valgrind " + h.MPIExec
	}
	if c := t.Def.Value(testparse.KeyComments); c != "" {
		h.Comments = strings.Split(c, "\n")
	}
	return h
}

// runFiles lists the local run files of a test and its subtests.
func runFiles(def *testparse.Definition) []string {
	files := def.LocalRunFiles()
	for _, name := range def.Subtests {
		for _, f := range def.Subtest(name).LocalRunFiles() {
			if !contains(files, f) {
				files = append(files, f)
			}
		}
	}
	return files
}

// outputFiles resolves the expected output of a run and the
// alternatives the diff may fall back to. The error is a
// MissingDataError if the expected output does not exist.
func (g *Generator) outputFiles(fr *FileResult, defroot, out string) ([]string, error) {
	if out == "" {
		out = path.Join("output", defroot+".out")
	}
	srcdir := filepath.Join(g.opts.PetscDir, fr.Dir)
	files := []string{filepath.Join(srcdir, out)}
	var err error
	if ok, _ := util.PathExists(files[0]); !ok {
		err = &testparse.MissingDataError{File: fr.Source(), Path: out}
	}
	stem := strings.TrimSuffix(out, path.Ext(out))
	for _, alt := range []string{stem + "_alt.out", stem + "_alt_2.out"} {
		p := filepath.Join(srcdir, alt)
		if ok, _ := util.PathExists(p); ok {
			files = append(files, p)
		}
	}
	return files, err
}

// step builds the run of a test, or of one subtest of it when sub is
// not nil. Subtest arguments follow the parent's; every other key of
// the subtest replaces the parent's.
func (g *Generator) step(fr *FileResult, t *Test, sub *testparse.Definition) runStep {
	parent := t.Def
	get := func(k testparse.Key) string {
		if sub != nil && sub.Has(k) {
			return sub.Value(k)
		}
		return parent.Value(k)
	}
	defroot := defRoot(t.Name)
	s := runStep{
		Nsize:        parent.Nsize(),
		Args:         parent.Args(),
		Command:      get(testparse.KeyCommand),
		Filter:       get(testparse.KeyFilter),
		FilterOutput: get(testparse.KeyFilterOutput),
		RedirectFile: defroot + ".tmp",
		LabelSuffix:  parent.LabelSuffix,
	}
	if sub != nil {
		if sub.Has(testparse.KeyNsize) {
			s.Nsize = sub.Nsize()
		}
		s.Args = strings.TrimSpace(s.Args + " " + sub.Args())
		s.LabelSuffix += sub.LabelSuffix
	}
	files, err := g.outputFiles(fr, defroot, get(testparse.KeyOutputFile))
	if err != nil && t.Status != testresult.Todo {
		plog.Warningf("%v", err)
	}
	s.OutputFiles = files
	return s
}

func writeStep(w *scriptWriter, s runStep) {
	if s.Command != "" {
		w.exec(commandTmpl, s)
	} else {
		w.exec(mpiTmpl, s)
	}
	if s.FilterOutput != "" {
		w.exec(filterDiffTmpl, s)
	} else {
		w.exec(diffTmpl, s)
	}
}

// Script renders the run script of a test. Tests that are not run
// report their status and exit before the runs, which are still
// written out for reference.
func (g *Generator) Script(fr *FileResult, t *Test) ([]byte, error) {
	w := &scriptWriter{}
	w.exec(headerTmpl, g.header(fr, t))
	w.line("")

	rep := reported{
		Directive: t.Status.Directive(),
		Counter:   t.Status.Counter(),
		Reasons:   t.Reasons,
		TestRoot:  g.opts.TestRoot(),
	}
	switch t.Status {
	case testresult.Todo, testresult.Skip:
		w.exec(reportedTmpl, rep)
		w.line("")
	case testresult.Deferred:
		rep.Directive, rep.Counter = testresult.Skip.Directive(), testresult.Skip.Counter()
		w.line(deferredHead)
		w.depth++
		w.exec(reportedTmpl, rep)
		w.depth--
		w.line(deferredFoot)
		w.line("")
	}

	for _, l := range t.Def.Loops {
		w.exec(loopHeadTmpl, l)
		w.depth++
	}
	if len(t.Def.Subtests) == 0 {
		writeStep(w, g.step(fr, t, nil))
	}
	for _, name := range t.Def.Subtests {
		writeStep(w, g.step(fr, t, t.Def.Subtest(name)))
	}
	for range t.Def.Loops {
		w.depth--
		w.line(loopFoot)
	}
	w.line("")
	w.exec(footerTmpl, g.opts.TestRoot())
	return w.buf.Bytes(), w.err
}

// WriteScript writes the run script of a test below the test root and
// copies its local run files next to it.
func (g *Generator) WriteScript(fr *FileResult, t *Test) error {
	data, err := g.Script(fr, t)
	if err != nil {
		return errors.Wrapf(err, "%s: %s", fr.Source(), t.Name)
	}
	runDir := filepath.Join(g.opts.TestRoot(), fr.Dir)
	for _, f := range runFiles(t.Def) {
		src := filepath.Join(g.opts.PetscDir, fr.Dir, f)
		dest := filepath.Join(runDir, filepath.Dir(f))
		if err := os.MkdirAll(dest, 0755); err != nil {
			return err
		}
		if err := util.CopyFile(src, dest); err != nil {
			return errors.Wrapf(err, "%s: copying run file", t.Name)
		}
	}
	return util.WriteFile(filepath.Join(g.opts.TestRoot(), t.Script), data, 0755)
}
