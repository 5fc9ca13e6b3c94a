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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/go-couchdb2/couchdb2/chttp"
)

// Database is an interface to one named database of a CouchDB server. It
// holds no state beyond the server connection and the database name.
type Database struct {
	srv  *Server
	name string
}

// Name returns the name of the database.
func (db *Database) Name() string {
	return db.name
}

func (db *Database) path(segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, url.PathEscape(db.name))
	parts = append(parts, segments...)
	p := parts[0]
	for _, s := range parts[1:] {
		p += "/" + s
	}
	return p
}

func (db *Database) docPath(docID string, segments ...string) string {
	return db.path(append([]string{chttp.EncodeDocID(docID)}, segments...)...)
}

// Exists reports whether the database exists.
func (db *Database) Exists(ctx context.Context) (bool, error) {
	res, err := db.srv.ch.DoError(ctx, http.MethodHead, db.path(), &chttp.Options{
		ExpectStatus: map[int]chttp.Kind{http.StatusNotFound: chttp.KindNone},
	})
	if err != nil {
		return false, err
	}
	return res.StatusCode == http.StatusOK, nil
}

// Check returns a NotFound error if the database does not exist.
func (db *Database) Check(ctx context.Context) error {
	exists, err := db.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return &chttp.HTTPError{
			Kind:   chttp.KindNotFound,
			Status: http.StatusNotFound,
			Reason: "database " + db.name + " does not exist",
		}
	}
	return nil
}

// Create creates the database. An AlreadyExists error is returned if it
// exists.
func (db *Database) Create(ctx context.Context, opts *CreateDBOptions) error {
	query := url.Values{}
	if opts != nil {
		if opts.Replicas > 0 {
			query.Set("n", strconv.Itoa(opts.Replicas))
		}
		if opts.Shards > 0 {
			query.Set("q", strconv.Itoa(opts.Shards))
		}
		if opts.Partitioned {
			query.Set("partitioned", "true")
		}
	}
	_, err := db.srv.ch.DoError(ctx, http.MethodPut, db.path(), &chttp.Options{Query: query})
	return err
}

// Destroy deletes the database and all its contents.
func (db *Database) Destroy(ctx context.Context) error {
	_, err := db.srv.ch.DoError(ctx, http.MethodDelete, db.path(), nil)
	return err
}

// DBInfo describes a database.
type DBInfo struct {
	DBName         string `json:"db_name"`
	DocCount       int64  `json:"doc_count"`
	DocDelCount    int64  `json:"doc_del_count"`
	UpdateSeq      string `json:"update_seq"`
	CompactRunning bool   `json:"compact_running"`
	Sizes          struct {
		Active   int64 `json:"active"`
		External int64 `json:"external"`
		File     int64 `json:"file"`
	} `json:"sizes"`
}

// Info returns information about the database.
func (db *Database) Info(ctx context.Context) (*DBInfo, error) {
	info := new(DBInfo)
	err := db.srv.ch.DoJSON(ctx, http.MethodGet, db.path(), nil, info)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// DocCount returns the number of documents in the database.
func (db *Database) DocCount(ctx context.Context) (int64, error) {
	info, err := db.Info(ctx)
	if err != nil {
		return 0, err
	}
	return info.DocCount, nil
}

// HasDoc reports whether a document with the given identifier exists in the
// database.
func (db *Database) HasDoc(ctx context.Context, docID string) (bool, error) {
	res, err := db.srv.ch.DoError(ctx, http.MethodHead, db.docPath(docID), &chttp.Options{
		ExpectStatus: map[int]chttp.Kind{http.StatusNotFound: chttp.KindNone},
	})
	if err != nil {
		return false, err
	}
	return res.StatusCode == http.StatusOK || res.StatusCode == http.StatusNotModified, nil
}

// Security returns the security object of the database.
func (db *Database) Security(ctx context.Context) (Document, error) {
	var sec Document
	err := db.srv.ch.DoJSON(ctx, http.MethodGet, db.path("_security"), nil, &sec)
	return sec, err
}

// SetSecurity sets the security object of the database.
func (db *Database) SetSecurity(ctx context.Context, sec Document) error {
	_, err := db.srv.ch.DoError(ctx, http.MethodPut, db.path("_security"), &chttp.Options{JSON: sec})
	return err
}

// Compact requests compaction of the database file. The request returns as
// soon as the server has accepted it; pass a non-nil wait function to poll
// until compaction finishes. The wait function is called once per second with
// the number of seconds elapsed.
func (db *Database) Compact(ctx context.Context, wait func(seconds int)) error {
	if _, err := db.srv.ch.DoError(ctx, http.MethodPost, db.path("_compact"), nil); err != nil {
		return err
	}
	if wait == nil {
		return nil
	}
	seconds := 0
	for {
		info, err := db.Info(ctx)
		if err != nil {
			return err
		}
		if !info.CompactRunning {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
		seconds++
		wait(seconds)
	}
}

// CompactDesign compacts the view indexes associated with the named design
// document.
func (db *Database) CompactDesign(ctx context.Context, ddoc string) error {
	_, err := db.srv.ch.DoError(ctx, http.MethodPost, db.path("_compact", url.PathEscape(ddoc)), nil)
	return err
}

// ViewCleanup removes view index files no longer required by any design
// document.
func (db *Database) ViewCleanup(ctx context.Context) error {
	_, err := db.srv.ch.DoError(ctx, http.MethodPost, db.path("_view_cleanup"), nil)
	return err
}

// GetOptions are optional parameters to Get.
type GetOptions struct {
	// Rev retrieves the document at the specified revision.
	Rev string
	// RevsInfo includes detailed information for all known revisions.
	RevsInfo bool
	// Conflicts includes information about conflicts in the "_conflicts"
	// member of the document.
	Conflicts bool
}

// Get returns the document with the given identifier, or nil if no such
// document exists. A 404 from the server is absorbed here, and only here;
// every other error status propagates.
func (db *Database) Get(ctx context.Context, docID string, opts *GetOptions) (Document, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Rev != "" {
			query.Set("rev", opts.Rev)
		}
		if opts.RevsInfo {
			query.Set("revs_info", "true")
		}
		if opts.Conflicts {
			query.Set("conflicts", "true")
		}
	}
	res, err := db.srv.ch.DoReq(ctx, http.MethodGet, db.docPath(docID), &chttp.Options{Query: query})
	if err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusNotFound {
		chttp.CloseBody(res.Body)
		return nil, nil
	}
	if err := chttp.ResponseError(res, nil); err != nil {
		return nil, err
	}
	var doc Document
	if err := chttp.DecodeJSON(res, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// MustGet is like Get, but returns a NotFound error instead of nil when the
// document does not exist.
func (db *Database) MustGet(ctx context.Context, docID string, opts *GetOptions) (Document, error) {
	doc, err := db.Get(ctx, docID, opts)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &chttp.HTTPError{
			Kind:   chttp.KindNotFound,
			Status: http.StatusNotFound,
			Reason: "no such document: " + docID,
		}
	}
	return doc, nil
}

// DocRef identifies one document, optionally at a specific revision.
type DocRef struct {
	ID  string `json:"id"`
	Rev string `json:"rev,omitempty"`
}

// GetBulk gets several documents in one request. The returned slice has one
// entry per reference, in input order; references that match no document
// yield a nil entry.
func (db *Database) GetBulk(ctx context.Context, refs []DocRef) ([]Document, error) {
	body := struct {
		Docs []DocRef `json:"docs"`
	}{Docs: refs}
	var result struct {
		Results []struct {
			Docs []struct {
				OK Document `json:"ok"`
			} `json:"docs"`
		} `json:"results"`
	}
	err := db.srv.ch.DoJSON(ctx, http.MethodPost, db.path("_bulk_get"), &chttp.Options{JSON: body}, &result)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(result.Results))
	for _, r := range result.Results {
		if len(r.Docs) == 0 {
			docs = append(docs, nil)
			continue
		}
		docs = append(docs, r.Docs[0].OK)
	}
	return docs, nil
}

// Put inserts or updates a document, and returns its identifier and new
// revision. If the document has no "_id", a fresh random identifier is
// assigned and returned. If the document already exists in the database, its
// "_rev" must be present and current, or the write fails with a conflict.
//
// The caller's document is never modified; the returned id and rev are the
// only record of the write.
func (db *Database) Put(ctx context.Context, doc Document) (id, rev string, err error) {
	id = doc.ID()
	if id == "" {
		id = newDocID()
		doc = doc.clone()
		doc["_id"] = id
	}
	var result struct {
		ID  string `json:"id"`
		Rev string `json:"rev"`
	}
	err = db.srv.ch.DoJSON(ctx, http.MethodPut, db.docPath(id), &chttp.Options{JSON: doc}, &result)
	if err != nil {
		return "", "", err
	}
	return result.ID, result.Rev, nil
}

// newDocID returns a fresh random document identifier: 128 bits, hex encoded.
func newDocID() string {
	u := uuid.New()
	const hextable = "0123456789abcdef"
	buf := make([]byte, 0, 32)
	for _, b := range u {
		buf = append(buf, hextable[b>>4], hextable[b&0x0f])
	}
	return string(buf)
}

// Delete deletes the document. The document must carry both its "_id" and a
// current "_rev"; both are checked locally before any request is sent.
func (db *Database) Delete(ctx context.Context, doc Document) error {
	if doc.ID() == "" {
		return &chttp.HTTPError{
			Kind:   chttp.KindNotFound,
			Status: http.StatusNotFound,
			Reason: "missing _id item in the document",
		}
	}
	if doc.Rev() == "" {
		return &chttp.HTTPError{
			Kind:   chttp.KindConflict,
			Status: http.StatusConflict,
			Reason: "missing _rev item in the document",
		}
	}
	_, err := db.srv.ch.DoError(ctx, http.MethodDelete, db.docPath(doc.ID()), &chttp.Options{
		IfMatch: doc.Rev(),
	})
	return err
}

// Purge completely removes the given documents, identified by their "_id"
// and "_rev" values, in a single request. Purged documents leave no metadata
// in storage and are not replicated.
func (db *Database) Purge(ctx context.Context, docs []Document) (Document, error) {
	body := make(map[string][]string, len(docs))
	for _, doc := range docs {
		body[doc.ID()] = []string{doc.Rev()}
	}
	var result Document
	err := db.srv.ch.DoJSON(ctx, http.MethodPost, db.path("_purge"), &chttp.Options{JSON: body}, &result)
	return result, err
}

// Designs returns the design documents of the database.
func (db *Database) Designs(ctx context.Context) (*ViewResult, error) {
	var result viewResponse
	err := db.srv.ch.DoJSON(ctx, http.MethodGet, db.path("_design_docs"), nil, &result)
	if err != nil {
		return nil, err
	}
	return result.viewResult(), nil
}

// GetDesign gets the named design document.
func (db *Database) GetDesign(ctx context.Context, ddoc string) (Document, error) {
	return db.MustGet(ctx, "_design/"+ddoc, nil)
}

// PutDesign inserts or updates the design document under the given name. If
// the stored design document is identical to doc, no write is performed and
// false is returned; otherwise the document is written and true is returned.
//
// If rebuild is true, each view defined in the document is queried with
// limit=1 after the write, forcing the server to materialize its index.
func (db *Database) PutDesign(ctx context.Context, ddoc string, doc Document, rebuild bool) (bool, error) {
	current, err := db.Get(ctx, "_design/"+ddoc, nil)
	if err != nil {
		return false, err
	}
	doc = doc.clone()
	doc["_id"] = "_design/" + ddoc
	if current != nil {
		doc["_rev"] = current.Rev()
		if jsonEqual(doc, current) {
			return false, nil
		}
	}
	if _, _, err := db.Put(ctx, doc); err != nil {
		return false, err
	}
	if rebuild {
		views, _ := doc["views"].(map[string]interface{})
		one := 1
		for view := range views {
			if _, err := db.View(ctx, ddoc, view, &ViewOptions{Limit: &one}); err != nil {
				return true, err
			}
		}
	}
	return true, nil
}

// jsonEqual reports whether a and b have identical JSON encodings. Go's JSON
// encoder writes object keys in sorted order, so the comparison is stable.
func jsonEqual(a, b Document) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// DeleteDesign deletes the named design document.
func (db *Database) DeleteDesign(ctx context.Context, ddoc string) error {
	doc, err := db.GetDesign(ctx, ddoc)
	if err != nil {
		return err
	}
	return db.Delete(ctx, doc)
}
