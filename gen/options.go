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
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/petsc/testgen/requires"
)

var plog = capnslog.NewPackageLogger("github.com/petsc/testgen", "gen")

// Options controls a generation run.
type Options struct {
	PetscDir  string `yaml:"petsc_dir"`
	PetscArch string `yaml:"petsc_arch"`
	// SrcDir is searched for example directories, PetscDir/src when
	// empty.
	SrcDir string `yaml:"src_dir"`
	// SingleExecutable names every test of a directory after one
	// executable, <pkg>-ex, instead of one per source file.
	SingleExecutable bool `yaml:"single_executable"`
	Jobs             int  `yaml:"jobs"`
	// KeepGoing generates what it can when some source files fail to
	// parse, and reports every failure at the end.
	KeepGoing bool `yaml:"keep_going"`
	Summarize bool `yaml:"summarize"`
	DumpJSON  bool `yaml:"dump_json"`
	// ConfigFile is a YAML configuration description used instead of
	// the configuration of PetscArch.
	ConfigFile string `yaml:"config"`
}

// DefaultOptions takes PETSC_DIR and PETSC_ARCH from the environment.
func DefaultOptions() Options {
	return Options{
		PetscDir:  os.Getenv("PETSC_DIR"),
		PetscArch: os.Getenv("PETSC_ARCH"),
		Jobs:      runtime.GOMAXPROCS(0),
		Summarize: true,
	}
}

// LoadOptions overrides opts with the keys present in a YAML options
// file. Unknown keys are an error.
func LoadOptions(r io.Reader, opts *Options) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil && err != io.EOF {
		return errors.Wrap(err, "decoding options")
	}
	return nil
}

// LoadOptionsFile is LoadOptions on the file at path.
func LoadOptionsFile(path string, opts *Options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return errors.Wrapf(LoadOptions(f, opts), "%s", path)
}

// Validate checks the options are complete.
func (o *Options) Validate() error {
	if o.PetscDir == "" {
		return errors.New("PETSC_DIR is not set")
	}
	if o.PetscArch == "" && o.ConfigFile == "" {
		return errors.New("PETSC_ARCH is not set")
	}
	if o.Jobs < 1 {
		o.Jobs = 1
	}
	return nil
}

func (o *Options) ArchDir() string {
	return filepath.Join(o.PetscDir, o.PetscArch)
}

// TestRoot is where run scripts are generated.
func (o *Options) TestRoot() string {
	return filepath.Join(o.ArchDir(), "tests")
}

// MakefilePath is the generated makefile fragment.
func (o *Options) MakefilePath() string {
	return filepath.Join(o.ArchDir(), "lib", "petsc", "conf", "testfiles")
}

func (o *Options) SourceRoot() string {
	if o.SrcDir != "" {
		return o.SrcDir
	}
	return filepath.Join(o.PetscDir, "src")
}

// Valgrind reports whether the arch runs tests under valgrind.
func (o *Options) Valgrind() bool {
	return strings.Contains(o.PetscArch, "valgrind")
}

// LoadConfig reads the configuration tests are generated for.
func (o *Options) LoadConfig() (*requires.Config, error) {
	if o.ConfigFile == "" {
		return requires.Load(o.ArchDir())
	}
	f, err := os.Open(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	conf, err := requires.FromYAML(f)
	return conf, errors.Wrapf(err, "%s", o.ConfigFile)
}
