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
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/petsc/testgen/cli"
	"github.com/petsc/testgen/gen"
	"github.com/petsc/testgen/requires"
)

var (
	cmdRequires = &cobra.Command{
		Use:   "requires [token...]",
		Short: "Evaluate requirement tokens against a configuration",
		Long: `Evaluate requirement tokens such as "cuda !complex define(PETSC_USE_LOG)"
against the configuration of PETSC_ARCH, or of --config, and print the
verdict of each.

The command fails if any token is unmet.`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runRequires,
		SilenceUsage: true,
	}

	reqConfig string
)

func init() {
	root.AddCommand(cmdRequires)
	cmdRequires.Flags().StringVar(&reqConfig, "config", "", "YAML configuration description")
}

func loadConfig() (*requires.Config, error) {
	tree := cli.CurrentTree()
	opts := gen.DefaultOptions()
	opts.PetscDir, opts.PetscArch = tree.Dir, tree.Arch
	opts.ConfigFile = reqConfig
	if reqConfig == "" {
		if err := opts.Validate(); err != nil {
			return nil, err
		}
	}
	return opts.LoadConfig()
}

func runRequires(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	res := conf.Evaluate(args...)
	for _, v := range res.Verdicts {
		cmd.Println(v)
	}
	if !res.OK() && !res.Deferred() {
		return errors.New("requirements not met")
	}
	return nil
}
