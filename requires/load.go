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

package requires

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	confHeader    = "include/petscconf.h"
	confVariables = "lib/petsc/conf/petscvariables"
)

// ParseConfHeader reads the #define lines of a petscconf.h.
func ParseConfHeader(r io.Reader) (map[string]string, error) {
	defs := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || fields[0] != "#define" {
			continue
		}
		defs[fields[1]] = strings.Join(fields[2:], " ")
	}
	return defs, sc.Err()
}

// ParseVariables reads the NAME = value assignments of a
// petscvariables make fragment. Comments and lines without an
// assignment are ignored.
func ParseVariables(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(strings.TrimRight(line[:idx], ":+?"))
		if name == "" || strings.ContainsAny(name, " \t") {
			continue
		}
		vars[name] = strings.TrimSpace(line[idx+1:])
	}
	return vars, sc.Err()
}

func parseFile(path string, parse func(io.Reader) (map[string]string, error)) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return m, nil
}

// Load reads the configuration of the build in archDir,
// $PETSC_DIR/$PETSC_ARCH. Variables override defines of the same name.
func Load(archDir string) (*Config, error) {
	c := NewConfig()
	defs, err := parseFile(filepath.Join(archDir, confHeader), ParseConfHeader)
	if err != nil {
		return nil, errors.Wrapf(err, "loading configuration")
	}
	for k, v := range defs {
		c.Set(k, v)
	}
	vars, err := parseFile(filepath.Join(archDir, confVariables), ParseVariables)
	switch {
	case os.IsNotExist(errors.Cause(err)):
		plog.Warningf("no %s in %s", confVariables, archDir)
	case err != nil:
		return nil, errors.Wrapf(err, "loading configuration")
	}
	for k, v := range vars {
		c.Set(k, v)
	}
	c.derive()
	return c, nil
}

// FromYAML reads a configuration description such as
//
//	precision: single
//	sizeof_int: 8
//	mpiuni: true
//	defines:
//	  PETSC_HAVE_FORTRAN: "1"
//
// Fields left out are derived from the defines like Load does, so a
// description may give PETSC_USE_REAL_SINGLE instead of precision, and
// default to NewConfig's values otherwise.
func FromYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if c.Defines == nil {
		c.Defines = make(map[string]string)
	}
	precision, intSize := c.Precision, c.IntSize
	c.derive()
	switch {
	case precision != "":
		c.Precision = precision
	case c.Precision == "":
		c.Precision = "double"
	}
	switch {
	case intSize != 0:
		c.IntSize = intSize
	case c.IntSize == 0:
		c.IntSize = 4
	}
	return &c, nil
}
