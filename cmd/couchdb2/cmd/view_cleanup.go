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

type viewCleanup struct {
	*root
}

func viewCleanupCmd(r *root) *cobra.Command {
	c := &viewCleanup{
		root: r,
	}
	return &cobra.Command{
		Use:   "view-cleanup",
		Short: "Remove stale view index files",
		Long:  `Remove view index files no longer required by any design document of the database.`,
		RunE:  c.RunE,
	}
}

func (c *viewCleanup) RunE(cmd *cobra.Command, _ []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	if err := db.ViewCleanup(cmd.Context()); err != nil {
		return err
	}
	return c.fmt.OK()
}
