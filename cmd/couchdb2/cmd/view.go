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

package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/go-couchdb2/couchdb2"
	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/errors"
)

type view struct {
	*root
	key         string
	startKey    string
	endKey      string
	skip        int
	limit       int
	descending  bool
	group       bool
	groupLevel  int
	reduce      bool
	noReduce    bool
	includeDocs bool
	update      string
}

func viewCmd(r *root) *cobra.Command {
	c := &view{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "view design-document view",
		Short: "Query a view",
		Long: `Query a view of the named design document. Key arguments are JSON
values: quote strings accordingly.`,
		Args: cobra.ExactArgs(2),
		RunE: c.RunE,
	}
	f := cmd.Flags()
	f.StringVar(&c.key, "key", "", "Return only rows matching this key")
	f.StringVar(&c.startKey, "start-key", "", "Return rows starting with this key")
	f.StringVar(&c.endKey, "end-key", "", "Stop returning rows at this key")
	f.IntVar(&c.skip, "skip", 0, "Skip this number of rows")
	f.IntVar(&c.limit, "limit", 0, "Limit the number of returned rows. 0 means no limit.")
	f.BoolVar(&c.descending, "descending", false, "Return the rows in descending order")
	f.BoolVar(&c.group, "group", false, "Group the results using the reduce function")
	f.IntVar(&c.groupLevel, "group-level", 0, "Group level to use; implies --group")
	f.BoolVar(&c.reduce, "reduce", false, "Force use of the view's reduce function")
	f.BoolVar(&c.noReduce, "no-reduce", false, "Disable the view's reduce function")
	f.BoolVar(&c.includeDocs, "include-docs", false, "Include the emitting document with each row; disables reduce")
	f.StringVar(&c.update, "update", "", `Refresh policy for the view: "true", "false" or "lazy"`)
	return cmd
}

func (c *view) options() (*couchdb2.ViewOptions, error) {
	opts := &couchdb2.ViewOptions{
		Descending:  c.descending,
		Group:       c.group,
		IncludeDocs: c.includeDocs,
		Update:      c.update,
	}
	for _, kv := range []struct {
		arg    string
		target *interface{}
	}{
		{c.key, &opts.Key},
		{c.startKey, &opts.StartKey},
		{c.endKey, &opts.EndKey},
	} {
		if kv.arg == "" {
			continue
		}
		var key interface{}
		if err := json.Unmarshal([]byte(kv.arg), &key); err != nil {
			return nil, errors.Codef(errors.ErrUsage, "invalid key %q: %s", kv.arg, err)
		}
		*kv.target = key
	}
	if c.skip > 0 {
		opts.Skip = &c.skip
	}
	if c.limit > 0 {
		opts.Limit = &c.limit
	}
	if c.groupLevel > 0 {
		opts.Group = true
		opts.GroupLevel = &c.groupLevel
	}
	if c.reduce && c.noReduce {
		return nil, errors.Code(errors.ErrUsage, "--reduce and --no-reduce are mutually exclusive")
	}
	if c.reduce || c.noReduce {
		reduce := c.reduce
		opts.Reduce = &reduce
	}
	return opts, nil
}

func (c *view) RunE(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	opts, err := c.options()
	if err != nil {
		return err
	}
	return c.retry(func() error {
		result, err := db.View(cmd.Context(), args[0], args[1], opts)
		if err != nil {
			return err
		}
		return c.fmt.Write(result)
	})
}
