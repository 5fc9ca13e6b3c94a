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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-couchdb2/couchdb2"
	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/errors"
)

type attach struct {
	*root
	contentType string
	name        string
}

func attachCmd(r *root) *cobra.Command {
	c := &attach{
		root: r,
	}
	cmd := &cobra.Command{
		Use:   "attach document file",
		Short: "Add or update an attachment on a document",
		Long: `Upload the named file as an attachment to the document. The attachment
name defaults to the file's base name, and its content type is guessed
from the file extension unless --content-type is given.`,
		Args: cobra.ExactArgs(2),
		RunE: c.RunE,
	}
	f := cmd.Flags()
	f.StringVar(&c.contentType, "content-type", "", "MIME type of the attachment")
	f.StringVar(&c.name, "name", "", "Attachment name. Defaults to the file's base name.")
	return cmd
}

func (c *attach) RunE(cmd *cobra.Command, args []string) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	docID, filename := args[0], args[1]
	doc, err := db.MustGet(cmd.Context(), docID, nil)
	if err != nil {
		return err
	}
	f, err := os.Open(filename)
	if err != nil {
		return errors.WithCode(err, errors.ErrNoInput)
	}
	defer f.Close()
	name := c.name
	if name == "" {
		name = filepath.Base(filename)
	}
	rev, err := db.PutAttachment(cmd.Context(), docID, doc.Rev(), &couchdb2.Attachment{
		Filename:    name,
		ContentType: c.contentType,
		Content:     f,
	})
	if err != nil {
		return err
	}
	c.log.Progressf("attached %s to %s (%s)", name, docID, rev)
	return c.fmt.UpdateResult(docID, rev)
}
