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

type designs struct {
	*root
}

func designsCmd(r *root) *cobra.Command {
	c := &designs{
		root: r,
	}
	return &cobra.Command{
		Use:   "designs",
		Short: "List the design documents of the database",
		RunE:  c.RunE,
	}
}

func (c *designs) RunE(cmd *cobra.Command, _ []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	return c.retry(func() error {
		result, err := db.Designs(cmd.Context())
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(result.Rows))
		for _, row := range result.Rows {
			ids = append(ids, row.ID)
		}
		return c.fmt.Write(ids)
	})
}
