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
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/errors"
)

type destroy struct {
	*root
	yes bool
}

func destroyCmd(r *root) *cobra.Command {
	c := &destroy{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the database and all its contents",
		RunE:  c.RunE,
	}
	cmd.Flags().BoolVarP(&c.yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (c *destroy) RunE(cmd *cobra.Command, _ []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	if !c.yes {
		ok, err := confirm(cmd, "Really destroy database "+db.Name()+"? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			return errors.Code(errors.ErrUsage, "aborted")
		}
	}
	if err := db.Destroy(cmd.Context()); err != nil {
		return err
	}
	c.log.Progressf("destroyed database %q", db.Name())
	return c.fmt.OK()
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	cmd.PrintErr(prompt)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false, errors.Code(errors.ErrNoInput, err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
