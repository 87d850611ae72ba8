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
	"fmt"
	"strings"
)

// DataFilesPath is the requirement that is only known at run time.
const DataFilesPath = "datafilespath"

// DataFilesPathReason is the skip reason recorded for DataFilesPath.
const DataFilesPathReason = "Requires DATAFILESPATH"

var (
	precisions = []string{"single", "double", "__float128"}
	intWidths  = map[string]int{"int32": 4, "int64": 8}
)

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Verdict is the outcome of one requirement token.
type Verdict struct {
	Token string
	OK    bool
	// Deferred is set when the requirement can only be checked when
	// the test runs.
	Deferred bool
	Reason   string
}

// Result accumulates the verdicts of several tokens.
type Result struct {
	Verdicts []Verdict
	// Reasons lists why each unmet token is unmet, in token order.
	Reasons []string
}

// OK reports whether every token was met.
func (r *Result) OK() bool {
	return len(r.Reasons) == 0
}

// Deferred reports whether the only unmet tokens are checked at run
// time.
func (r *Result) Deferred() bool {
	if r.OK() {
		return false
	}
	for _, v := range r.Verdicts {
		if !v.OK && !v.Deferred {
			return false
		}
	}
	return true
}

// negate returns the verdict for a token given whether its condition
// holds. pos is the reason used when a required condition is missing
// and neg when a forbidden one is present.
func negate(token string, holds, negated bool, pos, neg string) Verdict {
	v := Verdict{Token: token, OK: holds != negated}
	if !v.OK {
		if negated {
			v.Reason = neg
		} else {
			v.Reason = pos
		}
	}
	return v
}

// Satisfied evaluates one requirement token, optionally prefixed with
// '!' to require the opposite.
func (c *Config) Satisfied(token string) Verdict {
	negated := strings.HasPrefix(token, "!")
	req := strings.TrimPrefix(token, "!")

	switch {
	case contains(precisions, req), req == "int32" && c.Precision == "int32":
		return negate(token, c.Precision == req, negated,
			req+" required", "not "+req+" required")
	case intWidths[req] != 0:
		return negate(token, c.IntSize == intWidths[req], negated,
			req+" required", "not "+req+" required")
	case req == DataFilesPath:
		return Verdict{Token: token, Deferred: true, Reason: DataFilesPathReason}
	case strings.HasPrefix(strings.ToLower(req), "define("):
		name := strings.TrimSuffix(req[len("define("):], ")")
		return negate(token, c.Has(name), negated,
			"Required: "+req, "Null requirement not met: "+req)
	}

	flag := "PETSC_HAVE_" + strings.ToUpper(req)
	if req == "complex" {
		flag = "PETSC_USE_COMPLEX"
	}
	return negate(token, c.Truthy(flag), negated,
		flag+" requirement not met", "Not "+flag+" requirement not met")
}

// Evaluate ANDs the tokens. Every token is evaluated so all reasons
// are reported together.
func (c *Config) Evaluate(tokens ...string) *Result {
	r := &Result{}
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" || tok == "!" {
			continue
		}
		v := c.Satisfied(tok)
		r.Verdicts = append(r.Verdicts, v)
		if !v.OK {
			r.Reasons = append(r.Reasons, v.Reason)
		}
	}
	return r
}

// EvaluateString is Evaluate on a space separated requires value.
func (c *Config) EvaluateString(requires string) *Result {
	return c.Evaluate(strings.Fields(requires)...)
}

func (v Verdict) String() string {
	switch {
	case v.OK:
		return fmt.Sprintf("%s: ok", v.Token)
	case v.Deferred:
		return fmt.Sprintf("%s: deferred (%s)", v.Token, v.Reason)
	}
	return fmt.Sprintf("%s: %s", v.Token, v.Reason)
}
