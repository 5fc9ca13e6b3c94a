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

type security struct {
	*root
	input *input.Input
}

func securityCmd(r *root) *cobra.Command {
	c := &security{
		root:  r,
		input: input.New(),
	}
	cmd := &cobra.Command{
		Use:   "security",
		Short: "Get or set the security object of the database",
		Long: `Print the security object of the database. With --data or --data-file,
replace the security object instead.`,
		RunE: c.RunE,
	}
	c.input.ConfigFlags(cmd.Flags())
	return cmd
}

func (c *security) RunE(cmd *cobra.Command, _ []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	if c.input.HasInput() {
		sec, err := c.input.Document()
		if err != nil {
			return err
		}
		if err := db.SetSecurity(cmd.Context(), sec); err != nil {
			return err
		}
		return c.fmt.OK()
	}
	return c.retry(func() error {
		sec, err := db.Security(cmd.Context())
		if err != nil {
			return err
		}
		return c.fmt.Write(sec)
	})
}
