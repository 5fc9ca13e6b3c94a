// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package input handles document input from the command line.
package input

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/icza/dyno"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/go-couchdb2/couchdb2"
	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/errors"
)

// Input reads document data from an inline argument, a file, or stdin, as
// JSON or YAML.
type Input struct {
	data string
	file string
	yaml bool
}

// New returns an empty Input. Call ConfigFlags to wire it to a command.
func New() *Input {
	return &Input{}
}

// ConfigFlags sets up the CLI flags for document input.
func (i *Input) ConfigFlags(pf *pflag.FlagSet) {
	pf.StringVar(&i.data, "data", "", "Inline document data.")
	pf.StringVarP(&i.file, "data-file", "D", "", "Read document data from the named file. Use - for stdin. Assumed to be JSON, unless the file extension is .yaml or .yml, or the --yaml flag is used.")
	pf.BoolVar(&i.yaml, "yaml", false, "Treat input data as YAML")
}

// HasInput returns true if some input has been provided.
func (i *Input) HasInput() bool {
	return i.data != "" || i.file != ""
}

// Document returns the input parsed into a document.
func (i *Input) Document() (couchdb2.Document, error) {
	r, err := i.RawData()
	if err != nil {
		return nil, err
	}
	defer r.Close() // nolint:errcheck
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Code(errors.ErrIO, err)
	}
	if i.isYAML() {
		var raw interface{}
		if err := yaml.Unmarshal(buf, &raw); err != nil {
			return nil, errors.Code(errors.ErrData, err)
		}
		doc, ok := dyno.ConvertMapI2MapS(raw).(map[string]interface{})
		if !ok {
			return nil, errors.Code(errors.ErrData, "document must be a YAML mapping")
		}
		return couchdb2.Document(doc), nil
	}
	var doc couchdb2.Document
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, errors.Code(errors.ErrData, err)
	}
	return doc, nil
}

func (i *Input) isYAML() bool {
	if i.yaml {
		return true
	}
	return strings.HasSuffix(i.file, ".yaml") || strings.HasSuffix(i.file, ".yml")
}

// RawData returns the input as an unparsed stream.
func (i *Input) RawData() (io.ReadCloser, error) {
	if i.data != "" {
		return io.NopCloser(strings.NewReader(i.data)), nil
	}
	switch i.file {
	case "-":
		return os.Stdin, nil
	case "":
	default:
		f, err := os.Open(i.file)
		return f, errors.Code(errors.ErrNoInput, err)
	}
	return nil, errors.Code(errors.ErrUsage, "no document data provided")
}
