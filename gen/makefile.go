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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/petsc/testgen/util"
)

var (
	loopMarkerRe = regexp.MustCompile(`\{\{.*?\}\}|\$\{.*?\}`)
	labelDropRe  = regexp.MustCompile(`[-0-9+]`)
	spacesRe     = regexp.MustCompile(` +`)
)

// ArgLabel condenses the arguments of a test and its subtests into a
// string of option words that make can search, e.g.
// "-ksp_type cg -pc_type {{jacobi sor}}" gives "ksp_type cg pc_type".
func ArgLabel(args ...string) string {
	var words []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a == "" {
			continue
		}
		if split, err := shellquote.Split(a); err == nil {
			a = strings.Join(split, " ")
		}
		words = append(words, a)
	}
	s := loopMarkerRe.ReplaceAllString(strings.Join(words, " "), "")
	s = labelDropRe.ReplaceAllString(s, " ")
	s = strings.NewReplacer(".", "", ",", "", "'", "").Replace(s)
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// argLabel is ArgLabel of a test definition and all of its subtests.
func argLabel(t *Test) string {
	args := []string{t.Def.Args()}
	for _, name := range t.Def.Subtests {
		args = append(args, t.Def.Subtest(name).Args())
	}
	return ArgLabel(args...)
}

// execPath is the executable a file's tests run in the makefile's test
// tree.
func execPath(fr *FileResult) string {
	return "${TESTDIR}/" + path.Join(fr.Dir, fr.Exec)
}

// WriteMakefile writes the testfiles makefile fragment: the sources
// and objects to compile per package, one target per test and the
// extra object dependencies of examples.
func (g *Generator) WriteMakefile(a *Aggregate) error {
	var buf bytes.Buffer
	if err := g.makefile(&buf, a); err != nil {
		return err
	}
	return util.WriteFile(g.opts.MakefilePath(), buf.Bytes(), 0644)
}

func (g *Generator) makefile(out io.Writer, a *Aggregate) error {
	w := bufio.NewWriter(out)
	pkgs := a.Packages()
	for _, pkg := range pkgs {
		for _, lang := range Languages {
			fmt.Fprintf(w, "testsrcs-%s.%s := %s\n", pkg, lang, strings.Join(a.Sources(pkg, lang), " "))
		}
	}
	for _, pkg := range pkgs {
		fmt.Fprintf(w, "testobjs-%s := %s\n", pkg, strings.Join(a.Objects(pkg), " "))
	}

	fmt.Fprintf(w, "\n#Tests and executables\n")
	for _, pkg := range pkgs {
		for _, lang := range Languages {
			files := a.FilesOf(pkg, lang)
			var names []string
			for _, fr := range files {
				for _, t := range fr.Tests {
					names = append(names, nameSpace(t.Name, fr.Dir))
				}
			}
			fmt.Fprintf(w, "test-%s.%s := %s\n", pkg, lang, strings.Join(names, " "))
			fmt.Fprintf(w, "test-%s.%s : $(test-%s.%s)\n", pkg, lang, pkg, lang)

			for _, fr := range files {
				dep := path.Join(g.opts.PetscDir, fr.Source())
				if fr.Compiled() {
					dep = execPath(fr)
				}
				for _, t := range fr.Tests {
					nm := nameSpace(t.Name, fr.Dir)
					fmt.Fprintf(w, "$(TESTDIR)/counts/%s.counts : ${TESTDIR}/%s %s\n", nm, t.Script, dep)
					fmt.Fprintf(w, "%s_ARGS := '%s'\n", nm, t.ArgLabel)
				}
			}
		}
	}

	var depends []string
	for _, fr := range a.Files {
		if fr.DependObj != "" && fr.Compiled() {
			depends = append(depends, fmt.Sprintf("%s : ${TESTDIR}/%s\n", execPath(fr), path.Join(fr.Dir, fr.DependObj)))
		}
	}
	if len(depends) > 0 {
		fmt.Fprintf(w, "\n#Extra objects\n")
		for _, d := range depends {
			io.WriteString(w, d)
		}
	}
	return w.Flush()
}
