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

// Package testresult names what a generated run script does with its
// test.
package testresult

import "os"

const (
	// Run scripts execute the test and compare its output.
	Run Status = "RUN"
	// Skip scripts report the test skipped, with reasons.
	Skip Status = "SKIP"
	// Todo scripts report the test as known to be broken.
	Todo Status = "TODO"
	// Deferred scripts skip unless DATAFILESPATH is set when they run.
	Deferred Status = "DEFERRED"
)

type Status string

// Directive is the TAP directive a script prints for s, or "" if the
// test runs.
func (s Status) Directive() string {
	switch s {
	case Skip, Deferred:
		return string(Skip)
	case Todo:
		return string(Todo)
	}
	return ""
}

// Counter is the name of the shell counter a script increments when
// it reports s instead of running.
func (s Status) Counter() string {
	switch s {
	case Skip, Deferred:
		return "skip"
	case Todo:
		return "todo"
	}
	return ""
}

func (s Status) Display() string {
	if term, has_term := os.LookupEnv("TERM"); !has_term || term == "" {
		return string(s)
	}

	yellow := "\033[33m"
	blue := "\033[34m"
	green := "\033[32m"
	reset := "\033[0m"

	switch s {
	case Todo:
		return yellow + string(s) + reset
	case Skip, Deferred:
		return blue + string(s) + reset
	}
	return green + string(s) + reset
}
