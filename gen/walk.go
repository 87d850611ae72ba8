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
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/petsc/testgen/harness/testresult"
	"github.com/petsc/testgen/lang/natsort"
	"github.com/petsc/testgen/lang/worker"
	"github.com/petsc/testgen/testparse"
)

// ExampleDirs returns the example directories below root in natural
// order: directories named tests or tutorials, below an examples
// directory, holding a makefile.
func ExampleDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if base := d.Name(); base != "tests" && base != "tutorials" {
			return nil
		}
		if rel, err := filepath.Rel(root, p); err != nil || !strings.Contains(filepath.ToSlash(rel), "examples") {
			return nil
		}
		if info, err := os.Stat(filepath.Join(p, "makefile")); err != nil || !info.Mode().IsRegular() {
			return nil
		}
		dirs = append(dirs, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	natsort.Strings(dirs)
	return dirs, nil
}

// exampleFiles lists the example sources of dir: files named ex* in a
// compiled language.
func exampleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasPrefix(name, "ex") || Language(name) == "" {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	natsort.Strings(files)
	return files, nil
}

// pkgOf is the library package of an example directory, e.g. "ksp" for
// src/ksp/examples/tests.
func pkgOf(dir string) string {
	parts := strings.Split(dir, "/")
	if parts[0] == "src" && len(parts) > 1 {
		return parts[1]
	}
	return parts[0]
}

// Walk parses every example below the source root, writes the run
// scripts and aggregates the results. Files are processed concurrently
// but the aggregate is always in natural order of the sources. With
// KeepGoing set the aggregate holds every file that succeeded, even if
// the returned error is not nil.
func (g *Generator) Walk(ctx context.Context) (*Aggregate, error) {
	dirs, err := ExampleDirs(g.opts.SourceRoot())
	if err != nil {
		return nil, err
	}
	var files []string
	for _, dir := range dirs {
		exs, err := exampleFiles(dir)
		if err != nil {
			return nil, err
		}
		files = append(files, exs...)
	}
	plog.Infof("Generating tests for %d sources in %d directories", len(files), len(dirs))

	results := make([]*FileResult, len(files))
	wg := worker.NewGroup(ctx, g.opts.Jobs, worker.KeepGoing(g.opts.KeepGoing))
	for i, file := range files {
		i, file := i, file
		job := func(context.Context) error {
			fr, err := g.ProcessFile(file)
			results[i] = fr
			return err
		}
		if err := wg.Start(g.relPath(file), job); err != nil {
			return nil, wg.WaitError(err)
		}
	}
	err = wg.Wait()
	if err != nil && !g.opts.KeepGoing {
		return nil, err
	}

	agg := NewAggregate()
	for _, fr := range results {
		if fr != nil {
			agg.Add(fr)
		}
	}
	return agg, err
}

func (g *Generator) relPath(p string) string {
	rel, err := filepath.Rel(g.opts.PetscDir, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

// ProcessFile parses one source file and writes the run scripts of its
// tests. It returns nil if the file declares no tests.
func (g *Generator) ProcessFile(file string) (*FileResult, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	rel := g.relPath(file)
	if strings.HasPrefix(rel, "../") {
		return nil, errors.Errorf("%s is outside of PETSC_DIR", file)
	}
	parsed, err := testparse.ParseFile(rel, src)
	if err != nil || parsed == nil {
		return nil, err
	}
	fr := g.Results(path.Dir(rel), parsed)
	for _, t := range fr.Tests {
		if err := g.WriteScript(fr, t); err != nil {
			return nil, err
		}
	}
	return fr, nil
}

// Results decides what is built and run for a parsed source file of
// the example directory dir, relative to PETSC_DIR.
func (g *Generator) Results(dir string, parsed *testparse.File) *FileResult {
	fr := &FileResult{
		Dir:   dir,
		Name:  parsed.Name,
		Pkg:   pkgOf(dir),
		Lang:  Language(parsed.Name),
		Build: parsed.Build,
	}
	fr.Exec = g.execName(fr)
	if d := parsed.Build.Depends; d != "" {
		fr.DependObj = strings.TrimSuffix(d, path.Ext(d)) + ".o"
	}
	fr.Skips, fr.Built = fileSkips(g.conf, fr.Lang, parsed.Build)

	for _, pt := range parsed.Tests {
		t := &Test{
			Name:   pt.Name,
			Def:    pt.Def,
			Script: path.Join(dir, pt.Name+".sh"),
		}
		t.Status, t.Reasons = decide(g.conf, fr, pt.Def)
		t.ArgLabel = argLabel(t)
		if t.Status == testresult.Run || t.Status == testresult.Deferred {
			fr.Tested = true
		}
		fr.Tests = append(fr.Tests, t)
	}
	return fr
}
