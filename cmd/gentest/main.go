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
	"github.com/coreos/pkg/capnslog"
	"github.com/spf13/cobra"

	"github.com/petsc/testgen/cli"
)

var (
	plog = capnslog.NewPackageLogger("github.com/petsc/testgen", "gentest")

	root = &cobra.Command{
		Use:   "gentest [command]",
		Short: "Generate the PETSc test harness from the test blocks of example sources",
	}
)

func main() {
	cli.Execute(root)
}
