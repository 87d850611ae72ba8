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

// Package cli sets up the root of the gentest command tree: the PETSc
// tree every subcommand acts on, logging and the version command.
package cli

import (
	"os"

	"github.com/coreos/pkg/capnslog"
	"github.com/spf13/cobra"

	"github.com/petsc/testgen/version"
)

// Tree is the PETSc source tree and configuration a command acts on.
type Tree struct {
	Dir  string
	Arch string
}

var (
	tree Tree

	logLevel   = capnslog.NOTICE
	logVerbose bool
	logDebug   bool

	plog = capnslog.NewPackageLogger("github.com/petsc/testgen", "cli")
)

// CurrentTree returns the tree selected by --petsc-dir and
// --petsc-arch, PETSC_DIR and PETSC_ARCH when those are not given.
func CurrentTree() Tree {
	return tree
}

// Execute runs main and exits. Failures are fatal.
func Execute(main *cobra.Command) {
	setup(main)
	if err := main.Execute(); err != nil {
		plog.Fatal(err)
	}
	os.Exit(0)
}

// setup adds the root flags and the version command to main.
func setup(main *cobra.Command) {
	pf := main.PersistentFlags()
	pf.StringVar(&tree.Dir, "petsc-dir", os.Getenv("PETSC_DIR"), "PETSc source tree (default $PETSC_DIR)")
	pf.StringVar(&tree.Arch, "petsc-arch", os.Getenv("PETSC_ARCH"), "PETSc configuration (default $PETSC_ARCH)")
	pf.Var(&logLevel, "log-level", "Set global log level.")
	pf.BoolVarP(&logVerbose, "verbose", "v", false, "Alias for --log-level=INFO")
	pf.BoolVarP(&logDebug, "debug", "d", false, "Alias for --log-level=DEBUG")

	// Subcommands may add their own persistent hooks without
	// losing this one.
	cobra.EnableTraverseRunHooks = true
	main.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		startLogging(cmd)
		plog.Debugf("PETSc tree %q, arch %q", tree.Dir, tree.Arch)
	}

	main.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number and exit.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s version %s\n", cmd.Root().Name(), version.Version)
		},
	})
}

func startLogging(cmd *cobra.Command) {
	switch {
	case logDebug:
		logLevel = capnslog.DEBUG
	case logVerbose:
		logLevel = capnslog.INFO
	}
	capnslog.SetFormatter(capnslog.NewStringFormatter(cmd.ErrOrStderr()))
	capnslog.SetGlobalLogLevel(logLevel)
}
