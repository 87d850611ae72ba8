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
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/petsc/testgen/cli"
	"github.com/petsc/testgen/gen"
	"github.com/petsc/testgen/harness/testresult"
)

var (
	cmdGenerate = &cobra.Command{
		Use:   "generate",
		Short: "Write run scripts, the testfiles makefile and reports",
		Long: `Walk the example directories of a PETSc tree and write one run
script per test below $PETSC_DIR/$PETSC_ARCH/tests, the makefile
fragment $PETSC_DIR/$PETSC_ARCH/lib/petsc/conf/testfiles and a summary
of what is run and skipped.

Flags override the values of an --options file, which override
PETSC_DIR and PETSC_ARCH from the environment.
`,
		RunE:         runGenerate,
		SilenceUsage: true,
	}

	genOpts     = gen.DefaultOptions()
	optionsFile string
)

func init() {
	root.AddCommand(cmdGenerate)
	sv := cmdGenerate.Flags().StringVar
	bv := cmdGenerate.Flags().BoolVar

	sv(&optionsFile, "options", "", "YAML file of generation options")
	sv(&genOpts.SrcDir, "src-dir", "", "directory to search for examples (default $PETSC_DIR/src)")
	sv(&genOpts.ConfigFile, "config", "", "YAML configuration description used instead of the arch's configuration")
	cmdGenerate.Flags().IntVarP(&genOpts.Jobs, "jobs", "j", genOpts.Jobs, "number of source files processed at once")
	bv(&genOpts.KeepGoing, "keep-going", false, "generate what can be generated when sources fail to parse")
	bv(&genOpts.SingleExecutable, "single-executable", false, "build one executable per example directory")
	bv(&genOpts.Summarize, "summarize", genOpts.Summarize, "write a plain text summary")
	bv(&genOpts.DumpJSON, "dump-json", false, "write a JSON report")
}

// options merges the options file under the flags given explicitly.
func options(cmd *cobra.Command) (gen.Options, error) {
	opts := genOpts
	if optionsFile != "" {
		opts = gen.DefaultOptions()
		if err := gen.LoadOptionsFile(optionsFile, &opts); err != nil {
			return opts, err
		}
	}
	override(cmd.Flags(), cli.CurrentTree(), &opts)
	return opts, nil
}

// override copies the flags set on the command line over opts. The
// tree flags belong to the root command.
func override(flags *pflag.FlagSet, tree cli.Tree, opts *gen.Options) {
	for name, apply := range map[string]func(){
		"petsc-dir":         func() { opts.PetscDir = tree.Dir },
		"petsc-arch":        func() { opts.PetscArch = tree.Arch },
		"src-dir":           func() { opts.SrcDir = genOpts.SrcDir },
		"config":            func() { opts.ConfigFile = genOpts.ConfigFile },
		"jobs":              func() { opts.Jobs = genOpts.Jobs },
		"keep-going":        func() { opts.KeepGoing = genOpts.KeepGoing },
		"single-executable": func() { opts.SingleExecutable = genOpts.SingleExecutable },
		"summarize":         func() { opts.Summarize = genOpts.Summarize },
		"dump-json":         func() { opts.DumpJSON = genOpts.DumpJSON },
	} {
		if flags.Changed(name) {
			apply()
		}
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errors.Errorf("unexpected arguments: %v", args)
	}
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	g, err := gen.New(opts, nil)
	if err != nil {
		return err
	}
	plog.Infof("Generating tests of %s for %s", opts.PetscDir, opts.PetscArch)
	agg, err := g.Generate(cmd.Context())
	if agg != nil {
		printStats(cmd.OutOrStdout(), agg.Stats())
	}
	return err
}

func printStats(w io.Writer, st gen.Stats) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "sources\t%d (%d compiled)\n", st.Files, st.Compiled)
	for _, s := range []testresult.Status{testresult.Run, testresult.Deferred, testresult.Skip, testresult.Todo} {
		fmt.Fprintf(tw, "%s\t%d\n", s.Display(), st.ByStatus[s])
	}
	tw.Flush()
}
