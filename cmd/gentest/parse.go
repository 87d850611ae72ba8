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

package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/petsc/testgen/testparse"
)

var (
	cmdParse = &cobra.Command{
		Use:   "parse [source...]",
		Short: "Print the tests a source file declares",
		Long: `Parse the test blocks of source files and print every generated
test with its keys, run time loops and subtests.`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runParse,
		SilenceUsage: true,
	}

	parseYAML bool
)

func init() {
	root.AddCommand(cmdParse)
	cmdParse.Flags().BoolVar(&parseYAML, "yaml", false, "print YAML instead of text")
}

type dumpLoop struct {
	Var    string   `yaml:"var"`
	Mode   string   `yaml:"mode"`
	Values []string `yaml:"values"`
}

type dumpTest struct {
	Name        string            `yaml:"name"`
	Line        int               `yaml:"line,omitempty"`
	Keys        map[string]string `yaml:"keys,omitempty"`
	SubArgs     string            `yaml:"subargs,omitempty"`
	LabelSuffix string            `yaml:"label_suffix,omitempty"`
	Loops       []dumpLoop        `yaml:"loops,omitempty"`
	Subtests    []dumpTest        `yaml:"subtests,omitempty"`
}

type dumpFile struct {
	Path  string                  `yaml:"path"`
	Build testparse.BuildMetadata `yaml:"build,omitempty"`
	Tests []dumpTest              `yaml:"tests"`
}

func dumpDefinition(name string, line int, def *testparse.Definition) dumpTest {
	d := dumpTest{
		Name:        name,
		Line:        line,
		Keys:        make(map[string]string),
		SubArgs:     def.SubArgs,
		LabelSuffix: def.LabelSuffix,
	}
	for _, k := range def.Keys() {
		d.Keys[string(k)] = def.Value(k)
	}
	for _, l := range def.Loops {
		d.Loops = append(d.Loops, dumpLoop{Var: l.Var, Mode: l.Mode.String(), Values: l.Values})
	}
	for _, sub := range def.Subtests {
		d.Subtests = append(d.Subtests, dumpDefinition(sub, 0, def.Subtest(sub)))
	}
	return d
}

func runParse(cmd *cobra.Command, args []string) error {
	var files []*testparse.File
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		f, err := testparse.ParseFile(path, src)
		if err != nil {
			return err
		}
		if f == nil {
			plog.Noticef("%s declares no tests", path)
			continue
		}
		files = append(files, f)
	}

	if !parseYAML {
		return testparse.Fprint(cmd.OutOrStdout(), files...)
	}
	var dump []dumpFile
	for _, f := range files {
		df := dumpFile{Path: f.Path, Build: f.Build}
		for _, t := range f.Tests {
			df.Tests = append(df.Tests, dumpDefinition(t.Name, t.Line, t.Def))
		}
		dump = append(dump, df)
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(dump); err != nil {
		return errors.Wrap(err, "encoding tests")
	}
	return enc.Close()
}
