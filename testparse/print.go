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

package testparse

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/petsc/testgen/lang/natsort"
)

const printIndent = "   "

// Fprint writes a human readable dump of the parsed files to w, tests
// in natural order. It is meant for debugging test blocks.
func Fprint(w io.Writer, files ...*File) error {
	bw := bufio.NewWriter(w)
	for _, f := range files {
		if f == nil {
			continue
		}
		fmt.Fprintln(bw, f.Path)
		for _, kv := range [][2]string{
			{"requires", f.Build.Requires},
			{"TODO", f.Build.TODO},
			{"SKIP", f.Build.SKIP},
			{"depends", f.Build.Depends},
		} {
			if kv[1] != "" {
				fmt.Fprintf(bw, "%s%s: %s\n", printIndent, kv[0], kv[1])
			}
		}
		names := f.Names()
		natsort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(bw, printIndent+name)
			printDefinition(bw, f.Lookup(name), 2)
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}

func printDefinition(w io.Writer, def *Definition, depth int) {
	indent := strings.Repeat(printIndent, depth)
	for _, k := range def.Keys() {
		val := strings.ReplaceAll(def.Value(k), "\n", "\n"+indent+printIndent)
		fmt.Fprintf(w, "%s%s: %s\n", indent, k, val)
	}
	if def.SubArgs != "" {
		fmt.Fprintf(w, "%ssubargs: %s\n", indent, def.SubArgs)
	}
	for _, l := range def.Loops {
		fmt.Fprintf(w, "%sloop %s (%s): %s\n", indent, l.Var, l.Mode, strings.Join(l.Values, " "))
	}
	if def.LabelSuffix != "" {
		fmt.Fprintf(w, "%slabel_suffix: %s\n", indent, def.LabelSuffix)
	}
	for _, name := range def.Subtests {
		fmt.Fprintln(w, indent+name)
		printDefinition(w, def.Subtest(name), depth+1)
	}
}
