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
)

type detach struct {
	*root
}

func detachCmd(r *root) *cobra.Command {
	c := &detach{
		root: r,
	}
	return &cobra.Command{
		Use:   "detach document attachment",
		Short: "Delete an attachment from a document",
		Args:  cobra.ExactArgs(2),
		RunE:  c.RunE,
	}
}

func (c *detach) RunE(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	docID, name := args[0], args[1]
	doc, err := db.MustGet(cmd.Context(), docID, nil)
	if err != nil {
		return err
	}
	rev, err := db.DeleteAttachment(cmd.Context(), docID, doc.Rev(), name)
	if err != nil {
		return err
	}
	c.log.Progressf("detached %s from %s (%s)", name, docID, rev)
	return c.fmt.UpdateResult(docID, rev)
}
