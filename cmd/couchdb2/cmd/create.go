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

	"github.com/go-couchdb2/couchdb2"
)

type create struct {
	*root
	replicas    int
	shards      int
	partitioned bool
}

func createCmd(r *root) *cobra.Command {
	c := &create{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the database",
		Long:  `Create the selected database. Fails if the database already exists.`,
		RunE:  c.RunE,
	}
	f := cmd.Flags()
	f.IntVar(&c.replicas, "replicas", 0, "Number of replicas. 0 uses the server default.")
	f.IntVar(&c.shards, "shards", 0, "Number of shards. 0 uses the server default.")
	f.BoolVar(&c.partitioned, "partitioned", false, "Create a partitioned database")
	return cmd
}

func (c *create) RunE(cmd *cobra.Command, _ []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	err = db.Create(cmd.Context(), &couchdb2.CreateDBOptions{
		Replicas:    c.replicas,
		Shards:      c.shards,
		Partitioned: c.partitioned,
	})
	if err != nil {
		return err
	}
	c.log.Progressf("created database %q", db.Name())
	return c.fmt.OK()
}
