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

type compact struct {
	*root
	wait bool
}

func compactCmd(r *root) *cobra.Command {
	c := &compact{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "compact [design-document]",
		Short: "Compact the database, or the view indexes of a design document",
		Long: `Request compaction of the database file. With a design document name,
compact the view indexes of that design document instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.RunE,
	}
	cmd.Flags().BoolVar(&c.wait, "wait", false, "Wait until compaction has finished")
	return cmd
}

func (c *compact) RunE(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := db.CompactDesign(cmd.Context(), args[0]); err != nil {
			return err
		}
		return c.fmt.OK()
	}
	var wait func(int)
	if c.wait {
		wait = func(seconds int) {
			c.log.Progressf("compacting; %d seconds elapsed", seconds)
		}
	}
	if err := db.Compact(cmd.Context(), wait); err != nil {
		return err
	}
	return c.fmt.OK()
}
