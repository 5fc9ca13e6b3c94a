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

	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/input"
)

type design struct {
	*root
	input   *input.Input
	rebuild bool
}

func designCmd(r *root) *cobra.Command {
	c := &design{
		root:  r,
		input: input.New(),
	}
	cmd := &cobra.Command{
		Use:   "design",
		Short: "Manage design documents",
	}
	getCmd := &cobra.Command{
		Use:   "get name",
		Short: "Get a design document",
		Args:  cobra.ExactArgs(1),
		RunE:  c.get,
	}
	putCmd := &cobra.Command{
		Use:   "put name",
		Short: "Insert or update a design document",
		Long: `Insert or update the named design document. If the stored design
document is identical to the input, nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: c.put,
	}
	c.input.ConfigFlags(putCmd.Flags())
	putCmd.Flags().BoolVar(&c.rebuild, "rebuild", false, "Query each view after the write, forcing the index to rebuild")
	deleteCmd := &cobra.Command{
		Use:   "delete name",
		Short: "Delete a design document",
		Args:  cobra.ExactArgs(1),
		RunE:  c.delete,
	}
	cmd.AddCommand(getCmd, putCmd, deleteCmd)
	return cmd
}

func (c *design) get(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	return c.retry(func() error {
		doc, err := db.GetDesign(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return c.fmt.Write(doc)
	})
}

func (c *design) put(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	doc, err := c.input.Document()
	if err != nil {
		return err
	}
	changed, err := db.PutDesign(cmd.Context(), args[0], doc, c.rebuild)
	if err != nil {
		return err
	}
	if !changed {
		c.log.Progressf("design document %s unchanged", args[0])
	}
	return c.fmt.Write(map[string]bool{"ok": true, "changed": changed})
}

func (c *design) delete(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	if err := db.DeleteDesign(cmd.Context(), args[0]); err != nil {
		return err
	}
	return c.fmt.OK()
}
