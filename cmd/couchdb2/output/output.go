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

// Package output handles program output.
package output

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/errors"
)

// Formatter manages output formatting.
type Formatter struct {
	format    string
	output    string
	overwrite bool
	indent    int
}

// New returns an output formatter instance.
func New() *Formatter {
	return &Formatter{}
}

// ConfigFlags sets up the CLI flags for the formatter.
func (f *Formatter) ConfigFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.format, "format", "f", "json", "Output format. One of: json|yaml|raw")
	fs.StringVarP(&f.output, "output", "o", "", "Output file. Defaults to stdout.")
	fs.BoolVarP(&f.overwrite, "overwrite", "F", false, "Overwrite output file")
	fs.IntVar(&f.indent, "indent", 2, "Indentation level for JSON output")
}

// Write renders v in the configured format to the configured destination.
func (f *Formatter) Write(v interface{}) error {
	out, err := f.writer()
	if err != nil {
		return errors.WithCode(err, errors.ErrCantCreate)
	}
	if c, ok := out.(io.Closer); ok {
		defer c.Close() // nolint:errcheck
	}
	switch f.format {
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", strings.Repeat(" ", f.indent))
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close() // nolint:errcheck
		return enc.Encode(v)
	case "raw":
		if r, ok := v.(io.Reader); ok {
			_, err := io.Copy(out, r)
			return err
		}
		enc := json.NewEncoder(out)
		return enc.Encode(v)
	}
	return errors.Codef(errors.ErrUsage, "unrecognized output format option: %s", f.format)
}

// WriteRaw copies r to the configured destination, ignoring the format
// setting. It is meant for non-JSON payloads such as attachments.
func (f *Formatter) WriteRaw(r io.Reader) error {
	out, err := f.writer()
	if err != nil {
		return errors.WithCode(err, errors.ErrCantCreate)
	}
	if c, ok := out.(io.Closer); ok {
		defer c.Close() // nolint:errcheck
	}
	_, err = io.Copy(out, r)
	return err
}

// OK reports success of an operation that returns no data.
func (f *Formatter) OK() error {
	return f.Write(map[string]bool{"ok": true})
}

// UpdateResult reports the id and new revision of a written document.
func (f *Formatter) UpdateResult(id, rev string) error {
	return f.Write(struct {
		OK  bool   `json:"ok" yaml:"ok"`
		ID  string `json:"id" yaml:"id"`
		Rev string `json:"rev" yaml:"rev"`
	}{
		OK:  true,
		ID:  id,
		Rev: rev,
	})
}

func (f *Formatter) writer() (io.Writer, error) {
	switch f.output {
	case "", "-":
		return os.Stdout, nil
	}
	if f.overwrite {
		return os.Create(f.output)
	}
	return os.OpenFile(f.output, os.O_EXCL|os.O_CREATE|os.O_WRONLY, 0o666)
}
