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

	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/errors"
)

type undump struct {
	*root
	force bool
}

func undumpCmd(r *root) *cobra.Command {
	c := &undump{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "undump file",
		Short: "Restore an archive file into the database",
		Long: `Restore the documents and attachments of a dump archive into the
database. The database must exist and be empty.`,
		Args: cobra.ExactArgs(1),
		RunE: c.RunE,
	}
	cmd.Flags().BoolVar(&c.force, "force", false, "Restore even into a non-empty database")
	return cmd
}

func (c *undump) RunE(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	if err := db.Check(cmd.Context()); err != nil {
		return err
	}
	if !c.force {
		count, err := db.DocCount(cmd.Context())
		if err != nil {
			return err
		}
		if count > 0 {
			return errors.Codef(errors.ErrUsage, "database %q is not empty", db.Name())
		}
	}
	docs, atts, err := db.Undump(cmd.Context(), args[0], c.progress("restored"))
	if err != nil {
		return err
	}
	c.log.Infof("restored %d documents, %d attachments from %s", docs, atts, args[0])
	return nil
}
