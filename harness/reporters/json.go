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
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/coreos/pkg/multierror"
	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/pkg/errors"
	schema "github.com/xeipuuv/gojsonschema"
)

// JSONFilename is where the JSON dump is written in the test root.
const JSONFilename = "GenPetscTests.json"

// SchemaJSON is the JSON Schema every dump is checked against.
//
//go:embed schema.json
var SchemaJSON string

type jsonReporter struct{}

func (jsonReporter) Filename() string {
	return JSONFilename
}

// Output writes r as canonical JSON so dumps of the same tree compare
// byte for byte.
func (jsonReporter) Output(w io.Writer, r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Marshal returns the canonical JSON encoding of r after validating it.
func Marshal(r *Report) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return jsoncanonicalizer.Transform(data)
}

// Validate checks a JSON dump against SchemaJSON.
func Validate(data []byte) error {
	if len(data) == 0 {
		return errors.New("report data is empty")
	}
	result, err := schema.Validate(
		schema.NewStringLoader(SchemaJSON),
		schema.NewBytesLoader(data),
	)
	if err != nil {
		return errors.Wrap(err, "validating report")
	}
	if result.Valid() {
		return nil
	}
	var errs multierror.Error
	for _, desc := range result.Errors() {
		errs = append(errs, fmt.Errorf("invalid: %s", desc))
	}
	return errs.AsError()
}

// DeserialiseReport reads back a JSON dump.
func DeserialiseReport(filename string) (*Report, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", filename)
	}
	return &r, nil
}
