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

package couchdb2

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Progress is called periodically during Dump and Undump with the running
// document and attachment counts.
type Progress func(docs, attachments int)

const progressInterval = 100

// archiveWriter writes a dump archive: a tar stream, gzip-compressed when the
// destination filename ends in ".gz".
type archiveWriter struct {
	tw *tar.Writer
	gz *gzip.Writer
}

func newArchiveWriter(w io.Writer, compress bool) *archiveWriter {
	aw := new(archiveWriter)
	if compress {
		aw.gz = gzip.NewWriter(w)
		w = aw.gz
	}
	aw.tw = tar.NewWriter(w)
	return aw
}

func (aw *archiveWriter) entry(name string, content []byte) error {
	err := aw.tw.WriteHeader(&tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(content)),
		ModTime: time.Now(),
	})
	if err != nil {
		return err
	}
	_, err = aw.tw.Write(content)
	return err
}

func (aw *archiveWriter) Close() error {
	if err := aw.tw.Close(); err != nil {
		return err
	}
	if aw.gz != nil {
		return aw.gz.Close()
	}
	return nil
}

// attDirSuffix separates a document's archive entry from its attachment
// entries: an attachment named "logo.png" of document "acme" is stored as
// "acme_att/logo.png", immediately following "acme".
const attDirSuffix = "_att/"

// DumpTo writes every document of the database, with all its attachments, to
// w as a tar stream, compressed when compress is set. Each document becomes
// one entry named by its id, holding the document JSON including its current
// revision; each of its attachments follows as "{id}_att/{name}".
//
// cb, if non-nil, is called with the running counts every 100 documents and
// once more at the end. The final counts are returned.
func (db *Database) DumpTo(ctx context.Context, w io.Writer, compress bool, cb Progress) (docs, attachments int, err error) {
	aw := newArchiveWriter(w, compress)
	it := db.Docs(ctx)
	for it.Next() {
		doc := it.Doc()
		if doc == nil {
			continue
		}
		content, err := json.Marshal(doc)
		if err != nil {
			return docs, attachments, err
		}
		if err := aw.entry(doc.ID(), content); err != nil {
			return docs, attachments, err
		}
		docs++
		atts := doc.Attachments()
		// Sorted for a reproducible archive layout.
		names := make([]string, 0, len(atts))
		for name := range atts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			att, err := db.GetAttachment(ctx, doc.ID(), "", name)
			if err != nil {
				return docs, attachments, err
			}
			content, err := io.ReadAll(att.Content)
			_ = att.Content.Close()
			if err != nil {
				return docs, attachments, err
			}
			if err := aw.entry(doc.ID()+attDirSuffix+name, content); err != nil {
				return docs, attachments, err
			}
			attachments++
		}
		if cb != nil && docs%progressInterval == 0 {
			cb(docs, attachments)
		}
	}
	if err := it.Err(); err != nil {
		return docs, attachments, err
	}
	if err := aw.Close(); err != nil {
		return docs, attachments, err
	}
	if cb != nil {
		cb(docs, attachments)
	}
	return docs, attachments, nil
}

// Dump writes the database to the named archive file. The archive is
// gzip-compressed when the filename ends in ".gz".
func (db *Database) Dump(ctx context.Context, filename string, cb Progress) (docs, attachments int, err error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, 0, err
	}
	docs, attachments, err = db.DumpTo(ctx, f, strings.HasSuffix(filename, ".gz"), cb)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return docs, attachments, err
}

// UndumpFrom restores the documents and attachments of a dump archive read
// from r into the database. The database should be empty: documents are
// written as new, so an id already present in the database fails with a
// revision conflict, which aborts the restore.
//
// Attachment entries are re-attached to the restored document they follow in
// the archive, using the revision returned by each preceding write.
//
// cb, if non-nil, is called with the running counts every 100 documents and
// once more at the end. The final counts are returned.
func (db *Database) UndumpFrom(ctx context.Context, r io.Reader, compressed bool, cb Progress) (docs, attachments int, err error) {
	if compressed {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return 0, 0, err
		}
		defer gz.Close()
		r = gz
	}
	tr := tar.NewReader(r)
	var (
		curID  string
		curRev string
		// pending maps the archive entry names of the current document's
		// attachments to their archived metadata.
		pending map[string]*Attachment
	)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return docs, attachments, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return docs, attachments, err
		}
		if att, ok := pending[hdr.Name]; ok {
			// An attachment follows its document.
			att.Content = io.NopCloser(bytes.NewReader(content))
			rev, err := db.PutAttachment(ctx, curID, curRev, att)
			if err != nil {
				return docs, attachments, err
			}
			delete(pending, hdr.Name)
			curRev = rev
			attachments++
			continue
		}
		var doc Document
		if err := json.Unmarshal(content, &doc); err != nil {
			return docs, attachments, err
		}
		// The document is written as new: the dumped revision belongs to the
		// source database, and the attachment stubs are restored, with their
		// archived content types, from their own archive entries.
		atts := doc.Attachments()
		pending = make(map[string]*Attachment, len(atts))
		for name, meta := range atts {
			pending[doc.ID()+attDirSuffix+name] = &Attachment{
				Filename:    name,
				ContentType: meta.ContentType,
			}
		}
		delete(doc, "_rev")
		delete(doc, "_attachments")
		id, rev, err := db.Put(ctx, doc)
		if err != nil {
			return docs, attachments, err
		}
		curID, curRev = id, rev
		docs++
		if cb != nil && docs%progressInterval == 0 {
			cb(docs, attachments)
		}
	}
	if cb != nil {
		cb(docs, attachments)
	}
	return docs, attachments, nil
}

// Undump restores the named archive file into the database. The archive is
// treated as gzip-compressed when the filename ends in ".gz".
func (db *Database) Undump(ctx context.Context, filename string, cb Progress) (docs, attachments int, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	return db.UndumpFrom(ctx, f, strings.HasSuffix(filename, ".gz"), cb)
}
