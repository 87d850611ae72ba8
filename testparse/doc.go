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

// Package testparse reads the test descriptions embedded in example
// source files and expands them into the table of tests to generate.
//
// A source file carries one or more blocks such as
//
//	/*TEST
//
//	   test:
//	      suffix: 1
//	      nsize: {{1 2}separate}
//	      args: -ksp_type {{cg gmres}} -pc_type jacobi
//	      requires: !single
//
//	   testset:
//	      args: -da_grid_x 4
//	      test:
//	         suffix: a
//	      test:
//	         args: -snes_monitor
//
//	TEST*/
//
// and optionally a build block /*T ... T*/ holding requires, TODO, SKIP
// and depends keys for the whole file.
//
// Every test is named "run" plus the source base name, extended by its
// suffix. A {{...}separate} marker generates one test per value named
// with _<var>-<value>; a bare {{...}} marker keeps one test whose run
// script loops over the values. A subtest with a suffix is promoted to
// a test of its own; other subtests run inside their parent's script.
package testparse
