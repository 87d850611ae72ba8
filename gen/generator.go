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
	"os"

	"github.com/pkg/errors"

	"github.com/petsc/testgen/harness/reporters"
	"github.com/petsc/testgen/harness/testresult"
	"github.com/petsc/testgen/requires"
)

// Generator writes the test harness of a PETSc tree for one
// configuration.
type Generator struct {
	opts Options
	conf *requires.Config
}

// New creates a generator. If conf is nil the configuration is loaded
// as the options describe.
func New(opts Options, conf *requires.Config) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if conf == nil {
		var err error
		if conf, err = opts.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &Generator{opts: opts, conf: conf}, nil
}

func (g *Generator) Options() Options {
	return g.opts
}

func (g *Generator) Config() *requires.Config {
	return g.conf
}

// reporters returns the reports the options ask for.
func (g *Generator) reporters() (reporters.Reporters, error) {
	var kinds []reporters.Kind
	if g.opts.Summarize {
		kinds = append(kinds, reporters.KindSummary)
	}
	if g.opts.DumpJSON {
		kinds = append(kinds, reporters.KindJSON)
	}
	var reps reporters.Reporters
	for _, k := range kinds {
		r, err := reporters.New(k)
		if err != nil {
			return nil, err
		}
		reps = append(reps, r)
	}
	return reps, nil
}

// Generate walks the source tree, writing every run script, the
// makefile fragment and the reports. With KeepGoing set the outputs
// cover every file that could be processed and the parse failures are
// returned afterwards.
func (g *Generator) Generate(ctx context.Context) (*Aggregate, error) {
	agg, walkErr := g.Walk(ctx)
	if agg == nil {
		return nil, walkErr
	}
	if err := g.WriteMakefile(agg); err != nil {
		return nil, errors.Wrap(err, "writing makefile")
	}

	reps, err := g.reporters()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(g.opts.TestRoot(), 0755); err != nil {
		return nil, err
	}
	if err := reps.Output(g.opts.TestRoot(), agg.Report(g.opts.PetscDir, g.opts.PetscArch)); err != nil {
		return nil, err
	}

	st := agg.Stats()
	plog.Noticef("Generated %d tests from %d sources (%d compiled): %d run, %d deferred, %d skipped, %d todo",
		st.Tests, st.Files, st.Compiled,
		st.ByStatus[testresult.Run], st.ByStatus[testresult.Deferred],
		st.ByStatus[testresult.Skip], st.ByStatus[testresult.Todo])
	return agg, walkErr
}
