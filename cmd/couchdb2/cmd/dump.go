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

type dump struct {
	*root
}

func dumpCmd(r *root) *cobra.Command {
	c := &dump{
		root: r,
	}
	return &cobra.Command{
		Use:   "dump file",
		Short: "Dump the database to an archive file",
		Long: `Write every document of the database, with all attachments, to a tar
archive. The archive is gzip-compressed when the filename ends in .gz.`,
		Args: cobra.ExactArgs(1),
		RunE: c.RunE,
	}
}

func (c *dump) RunE(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	docs, atts, err := db.Dump(cmd.Context(), args[0], c.progress("dumped"))
	if err != nil {
		return err
	}
	c.log.Infof("dumped %d documents, %d attachments to %s", docs, atts, args[0])
	return nil
}
