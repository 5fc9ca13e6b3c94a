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
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/go-couchdb2/couchdb2/chttp"
)

// TypeOctetStream is the fallback MIME type for attachments whose type
// cannot be guessed from the filename.
const TypeOctetStream = "application/octet-stream"

// Attachment represents a file attachment on a CouchDB document.
type Attachment struct {
	// Filename is the name of the attachment.
	Filename string
	// ContentType is the MIME type of the content. If empty on upload, it is
	// guessed from the filename extension, falling back to
	// application/octet-stream.
	ContentType string
	// Content is the attachment body. The consumer is responsible for
	// closing it.
	Content io.ReadCloser
}

// AttachmentMeta is the stub metadata CouchDB embeds in a document's
// "_attachments" member.
type AttachmentMeta struct {
	ContentType string `json:"content_type"`
	Digest      string `json:"digest,omitempty"`
	Length      int64  `json:"length,omitempty"`
	RevPos      int64  `json:"revpos,omitempty"`
	Stub        bool   `json:"stub,omitempty"`
}

func (db *Database) attPath(docID, filename string) string {
	return db.docPath(docID, url.PathEscape(filename))
}

// GetAttachment returns the named attachment of the given document. A
// non-empty rev fetches the attachment as of that document revision.
func (db *Database) GetAttachment(ctx context.Context, docID, rev, filename string) (*Attachment, error) {
	opts := &chttp.Options{Accept: "*/*"}
	if rev != "" {
		opts.Query = url.Values{"rev": []string{rev}}
	}
	res, err := db.srv.ch.DoReq(ctx, http.MethodGet, db.attPath(docID, filename), opts)
	if err != nil {
		return nil, err
	}
	if err := chttp.ResponseError(res, nil); err != nil {
		return nil, err
	}
	return &Attachment{
		Filename:    filename,
		ContentType: res.Header.Get("Content-Type"),
		Content:     res.Body,
	}, nil
}

// PutAttachment adds or updates att as an attachment to the given document,
// and returns the document's new revision. rev must be the document's
// current revision.
func (db *Database) PutAttachment(ctx context.Context, docID, rev string, att *Attachment) (newRev string, err error) {
	contentType := att.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(att.Filename))
		if contentType == "" {
			contentType = TypeOctetStream
		}
	}
	var result struct {
		Rev string `json:"rev"`
	}
	opts := &chttp.Options{
		Body:        att.Content,
		ContentType: contentType,
		IfMatch:     rev,
	}
	err = db.srv.ch.DoJSON(ctx, http.MethodPut, db.attPath(docID, att.Filename), opts, &result)
	if err != nil {
		return "", err
	}
	return result.Rev, nil
}

// DeleteAttachment deletes the named attachment from the given document, and
// returns the document's new revision. rev must be the document's current
// revision.
func (db *Database) DeleteAttachment(ctx context.Context, docID, rev, filename string) (newRev string, err error) {
	var result struct {
		Rev string `json:"rev"`
	}
	opts := &chttp.Options{IfMatch: rev}
	err = db.srv.ch.DoJSON(ctx, http.MethodDelete, db.attPath(docID, filename), opts, &result)
	if err != nil {
		return "", err
	}
	return result.Rev, nil
}
