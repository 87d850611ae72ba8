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

package reporters

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/petsc/testgen/harness/testresult"
)

const summaryIndent = "   "

// SummaryFilename is where the summary is written in the test root.
const SummaryFilename = "GenPetscTests_summarize.txt"

type summaryReporter struct{}

func (summaryReporter) Filename() string {
	return SummaryFilename
}

func (summaryReporter) Output(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	for _, d := range r.Dirs {
		fmt.Fprintln(bw, d.Path)
		for _, f := range d.Files {
			built := " Is NOT built"
			if f.Built {
				built = " Is built"
			}
			fmt.Fprintln(bw, summaryIndent+f.Name+strings.Repeat(summaryIndent, 4)+built)
			for _, t := range f.Tests {
				fmt.Fprintln(bw, strings.Repeat(summaryIndent, 2)+t.Name)
				line := func(key, val string) {
					fmt.Fprintf(bw, "%s%s: %s\n", strings.Repeat(summaryIndent, 3), key, val)
				}
				line("isrun", fmt.Sprint(t.Status == testresult.Run))
				line("status", string(t.Status))
				line("nsize", t.Nsize)
				if t.Args != "" {
					line("args", t.Args)
				}
				if t.Requires != "" {
					line("requires", t.Requires)
				}
				line("script", t.Script)
				if len(t.Reasons) > 0 {
					line("reasons", strings.Join(t.Reasons, ", "))
				}
				fmt.Fprintln(bw)
			}
			fmt.Fprintln(bw)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
