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

// Package requires decides whether the requirement tokens of a test
// are met by a configured build.
package requires

import (
	"strconv"
	"strings"

	"github.com/coreos/pkg/capnslog"
)

var plog = capnslog.NewPackageLogger("github.com/petsc/testgen", "requires")

// Config describes the build the tests are generated for.
type Config struct {
	// Precision is the real number precision: single, double,
	// __float128 or int32.
	Precision string `yaml:"precision"`
	// IntSize is the byte width of an index, 4 or 8.
	IntSize int `yaml:"sizeof_int"`
	// MPIUni is set for builds without a real MPI.
	MPIUni bool `yaml:"mpiuni"`
	// Defines holds every define of petscconf.h and every variable of
	// petscvariables. A bare define has an empty value.
	Defines map[string]string `yaml:"defines"`
}

// NewConfig returns a double precision, 32 bit index configuration
// without any define.
func NewConfig() *Config {
	return &Config{
		Precision: "double",
		IntSize:   4,
		Defines:   make(map[string]string),
	}
}

// Has reports whether name is defined, whatever its value.
func (c *Config) Has(name string) bool {
	_, ok := c.Defines[name]
	return ok
}

// Get returns the value of name or "".
func (c *Config) Get(name string) string {
	return c.Defines[name]
}

// Set defines name.
func (c *Config) Set(name, value string) {
	if c.Defines == nil {
		c.Defines = make(map[string]string)
	}
	c.Defines[name] = value
}

// Truthy reports whether name is defined to something other than a
// false value. A bare define is true.
func (c *Config) Truthy(name string) bool {
	v, ok := c.Defines[name]
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "no":
		return false
	}
	return true
}

// derive fills Precision, IntSize and MPIUni from the defines.
func (c *Config) derive() {
	switch {
	case c.Get("PETSC_PRECISION") != "":
		c.Precision = c.Get("PETSC_PRECISION")
	case c.Truthy("PETSC_USE_REAL_SINGLE"):
		c.Precision = "single"
	case c.Truthy("PETSC_USE_REAL___FLOAT128"):
		c.Precision = "__float128"
	case c.Truthy("PETSC_USE_REAL_DOUBLE"):
		c.Precision = "double"
	}

	if n, err := strconv.Atoi(c.Get("PETSC_SIZEOF_INT")); err == nil && n > 0 {
		c.IntSize = n
	} else if c.Truthy("PETSC_USE_64BIT_INDICES") {
		c.IntSize = 8
	}

	c.MPIUni = c.MPIUni || c.Has("MPI_IS_MPIUNI")
	plog.Debugf("precision %s, index size %d, mpiuni %t", c.Precision, c.IntSize, c.MPIUni)
}
