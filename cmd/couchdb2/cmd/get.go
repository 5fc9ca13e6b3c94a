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
	"github.com/spf13/cobra"

	"github.com/go-couchdb2/couchdb2"
)

type get struct {
	*root
	rev       string
	revsInfo  bool
	conflicts bool
}

func getCmd(r *root) *cobra.Command {
	c := &get{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "get document",
		Short: "Get a document",
		Args:  cobra.ExactArgs(1),
		RunE:  c.RunE,
	}
	f := cmd.Flags()
	f.StringVar(&c.rev, "rev", "", "Retrieve the document at the specified revision")
	f.BoolVar(&c.revsInfo, "revs-info", false, "Include detailed information for all known revisions")
	f.BoolVar(&c.conflicts, "conflicts", false, "Include information about conflicts")
	return cmd
}

func (c *get) RunE(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	c.log.Debugf("will fetch document %s/%s", db.Name(), args[0])
	return c.retry(func() error {
		doc, err := db.MustGet(cmd.Context(), args[0], &couchdb2.GetOptions{
			Rev:       c.rev,
			RevsInfo:  c.revsInfo,
			Conflicts: c.conflicts,
		})
		if err != nil {
			return err
		}
		return c.fmt.Write(doc)
	})
}
