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

type deleteDoc struct {
	*root
	rev string
}

func deleteCmd(r *root) *cobra.Command {
	c := &deleteDoc{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "delete document",
		Short: "Delete a document",
		Long: `Delete a document. Unless --rev is given, the document's current
revision is fetched first.`,
		Args: cobra.ExactArgs(1),
		RunE: c.RunE,
	}
	cmd.Flags().StringVar(&c.rev, "rev", "", "The current revision of the document")
	return cmd
}

func (c *deleteDoc) RunE(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	doc := couchdb2.Document{"_id": args[0], "_rev": c.rev}
	if c.rev == "" {
		current, err := db.MustGet(cmd.Context(), args[0], nil)
		if err != nil {
			return err
		}
		doc["_rev"] = current.Rev()
	}
	if err := db.Delete(cmd.Context(), doc); err != nil {
		return err
	}
	c.log.Progressf("deleted document %s", args[0])
	return c.fmt.OK()
}
