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

type version struct {
	*root
}

func versionCmd(r *root) *cobra.Command {
	c := &version{
		root: r,
	}
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of the CouchDB server software",
		RunE:  c.RunE,
	}
}

func (c *version) RunE(cmd *cobra.Command, _ []string) error {
	srv, err := c.server()
	if err != nil {
		return err
	}
	return c.retry(func() error {
		version, err := srv.Version(cmd.Context())
		if err != nil {
			return err
		}
		return c.fmt.Write(map[string]string{"version": version})
	})
}
