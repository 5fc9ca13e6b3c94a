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

type getAttachment struct {
	*root
	rev string
}

func getAttachmentCmd(r *root) *cobra.Command {
	c := &getAttachment{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "get-attachment document attachment",
		Short: "Get an attachment of a document",
		Long: `Fetch the named attachment and write its raw content to the output,
regardless of the configured output format.`,
		Args: cobra.ExactArgs(2),
		RunE: c.RunE,
	}
	cmd.Flags().StringVar(&c.rev, "rev", "", "Retrieve the attachment as of the specified document revision")
	return cmd
}

func (c *getAttachment) RunE(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	return c.retry(func() error {
		att, err := db.GetAttachment(cmd.Context(), args[0], c.rev, args[1])
		if err != nil {
			return err
		}
		defer att.Content.Close() // nolint:errcheck
		return c.fmt.WriteRaw(att.Content)
	})
}
