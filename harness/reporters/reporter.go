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

// Package reporters writes the record of a generation run.
package reporters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/petsc/testgen/harness/testresult"
)

// Report is everything a generation run decided, by example directory
// and source file.
type Report struct {
	PetscDir  string `json:"petsc_dir"`
	PetscArch string `json:"petsc_arch"`
	Dirs      []Dir  `json:"dirs"`
}

type Dir struct {
	Path  string `json:"path"`
	Files []File `json:"files"`
}

type File struct {
	Name  string `json:"name"`
	Built bool   `json:"built"`
	Tests []Test `json:"tests"`
}

type Test struct {
	Name     string            `json:"name"`
	Status   testresult.Status `json:"status"`
	Nsize    string            `json:"nsize"`
	Args     string            `json:"args,omitempty"`
	Requires string            `json:"requires,omitempty"`
	Script   string            `json:"script"`
	Reasons  []string          `json:"reasons,omitempty"`
}

// Kind selects an output format.
type Kind int

const (
	// KindSummary is the indented plain text summary.
	KindSummary Kind = iota
	// KindJSON is the canonical JSON dump.
	KindJSON
)

var kindNames = map[Kind]string{
	KindSummary: "summary",
	KindJSON:    "json",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown report kind %q", s)
}

// Reporter formats a Report.
type Reporter interface {
	// Filename is the name of the file Output is written to.
	Filename() string
	Output(w io.Writer, r *Report) error
}

// New returns the reporter for kind.
func New(kind Kind) (Reporter, error) {
	switch kind {
	case KindSummary:
		return summaryReporter{}, nil
	case KindJSON:
		return jsonReporter{}, nil
	}
	return nil, fmt.Errorf("unknown report kind %v", kind)
}

type Reporters []Reporter

// Output writes every report into dir.
func (reps Reporters) Output(dir string, r *Report) error {
	for _, rep := range reps {
		if err := writeReport(filepath.Join(dir, rep.Filename()), rep, r); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(path string, rep Reporter, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rep.Output(f, r); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}
