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

type put struct {
	*root
	input *input.Input
}

func putCmd(r *root) *cobra.Command {
	c := &put{
		root:  r,
		input: input.New(),
	}
	cmd := &cobra.Command{
		Use:   "put [document]",
		Short: "Insert or update a document",
		Long: `Insert or update a document. With no document id argument, the id found
in the document data is used, or a fresh one is assigned. Updating an
existing document requires its current revision in the document data.`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.RunE,
	}
	c.input.ConfigFlags(cmd.Flags())
	return cmd
}

func (c *put) RunE(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	doc, err := c.input.Document()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		doc["_id"] = args[0]
	}
	id, rev, err := db.Put(cmd.Context(), doc)
	if err != nil {
		return err
	}
	c.log.Progressf("wrote document %s (%s)", id, rev)
	return c.fmt.UpdateResult(id, rev)
}
