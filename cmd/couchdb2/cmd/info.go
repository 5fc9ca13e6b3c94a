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

type info struct {
	*root
}

func infoCmd(r *root) *cobra.Command {
	c := &info{
		root: r,
	}
	return &cobra.Command{
		Use:   "info",
		Short: "Print information about the database",
		RunE:  c.RunE,
	}
}

func (c *info) RunE(cmd *cobra.Command, _ []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	return c.retry(func() error {
		result, err := db.Info(cmd.Context())
		if err != nil {
			return err
		}
		return c.fmt.Write(result)
	})
}
