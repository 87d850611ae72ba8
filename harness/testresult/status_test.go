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

package testresult

import "testing"

func TestDirective(t *testing.T) {
	for _, tt := range []struct {
		s                  Status
		directive, counter string
	}{
		{Run, "", ""},
		{Skip, "SKIP", "skip"},
		{Deferred, "SKIP", "skip"},
		{Todo, "TODO", "todo"},
	} {
		if got := tt.s.Directive(); got != tt.directive {
			t.Errorf("%s.Directive() = %q, want %q", tt.s, got, tt.directive)
		}
		if got := tt.s.Counter(); got != tt.counter {
			t.Errorf("%s.Counter() = %q, want %q", tt.s, got, tt.counter)
		}
	}
}

func TestDisplay(t *testing.T) {
	t.Setenv("TERM", "")
	if got := Skip.Display(); got != "SKIP" {
		t.Errorf("Display() = %q without a terminal", got)
	}
	t.Setenv("TERM", "xterm")
	if got := Todo.Display(); got != "\033[33mTODO\033[0m" {
		t.Errorf("Display() = %q", got)
	}
}
