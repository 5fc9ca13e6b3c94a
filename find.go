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
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-couchdb2/couchdb2/chttp"
)

// FindOptions are optional parameters to Find and Explain.
type FindOptions struct {
	// Limit is the maximum number of results returned.
	Limit *int
	// Skip skips the given number of results.
	Skip *int
	// Sort orders the results; each entry maps a field name to "asc" or
	// "desc".
	Sort []map[string]string
	// Fields restricts which fields of each document are returned. If empty,
	// the entire document is returned.
	Fields []string
	// UseIndex names the index(es) to use: a string, or a slice of strings.
	UseIndex interface{}
	// Bookmark marks the end of a previous result set; the next set is
	// returned.
	Bookmark string
	// NoUpdate queries without updating the index first.
	NoUpdate bool
	// Conflicts includes conflicted documents.
	Conflicts bool
}

func (o *FindOptions) body(selector interface{}) map[string]interface{} {
	body := map[string]interface{}{
		"selector": selector,
	}
	if o == nil {
		return body
	}
	body["update"] = !o.NoUpdate
	body["conflicts"] = o.Conflicts
	if o.Limit != nil {
		body["limit"] = *o.Limit
	}
	if o.Skip != nil {
		body["skip"] = *o.Skip
	}
	if o.Sort != nil {
		body["sort"] = o.Sort
	}
	if o.Fields != nil {
		body["fields"] = o.Fields
	}
	if o.UseIndex != nil {
		body["use_index"] = o.UseIndex
	}
	if o.Bookmark != "" {
		body["bookmark"] = o.Bookmark
	}
	return body
}

// FindResult is the result of a Mango query.
type FindResult struct {
	Docs           []Document      `json:"docs"`
	Warning        string          `json:"warning,omitempty"`
	Bookmark       string          `json:"bookmark,omitempty"`
	ExecutionStats json.RawMessage `json:"execution_stats,omitempty"`
}

// Find selects documents matching the Mango selector.
func (db *Database) Find(ctx context.Context, selector interface{}, opts *FindOptions) (*FindResult, error) {
	result := new(FindResult)
	err := db.srv.ch.DoJSON(ctx, http.MethodPost, db.path("_find"), &chttp.Options{JSON: opts.body(selector)}, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Explain reports which index would be used to answer the given Mango query.
func (db *Database) Explain(ctx context.Context, selector interface{}, opts *FindOptions) (Document, error) {
	var result Document
	err := db.srv.ch.DoJSON(ctx, http.MethodPost, db.path("_explain"), &chttp.Options{JSON: opts.body(selector)}, &result)
	return result, err
}

// Indexes returns all indexes of the database.
func (db *Database) Indexes(ctx context.Context) (Document, error) {
	var result Document
	err := db.srv.ch.DoJSON(ctx, http.MethodGet, db.path("_index"), nil, &result)
	return result, err
}

// IndexOptions are optional parameters to PutIndex.
type IndexOptions struct {
	// DDoc is the design document name to store the index in. Generated if
	// empty.
	DDoc string
	// Name is the name of the index. Generated if empty.
	Name string
	// Selector is a partial filter selector, which may be omitted.
	Selector interface{}
}

// IndexResult describes a stored index.
type IndexResult struct {
	// ID is the design document identifier.
	ID string `json:"id"`
	// Name is the index name.
	Name string `json:"name"`
	// Result is "created", or "exists" if the index was already present.
	Result string `json:"result"`
}

// PutIndex stores a Mango index specification over the given fields.
func (db *Database) PutIndex(ctx context.Context, fields []string, opts *IndexOptions) (*IndexResult, error) {
	index := map[string]interface{}{
		"fields": fields,
	}
	body := map[string]interface{}{
		"index": index,
	}
	if opts != nil {
		if opts.DDoc != "" {
			body["ddoc"] = opts.DDoc
		}
		if opts.Name != "" {
			body["name"] = opts.Name
		}
		if opts.Selector != nil {
			index["partial_filter_selector"] = opts.Selector
		}
	}
	result := new(IndexResult)
	err := db.srv.ch.DoJSON(ctx, http.MethodPost, db.path("_index"), &chttp.Options{JSON: body}, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteIndex deletes the named index from the named design document.
func (db *Database) DeleteIndex(ctx context.Context, ddoc, name string) error {
	path := db.path("_index", url.PathEscape(ddoc), "json", url.PathEscape(name))
	_, err := db.srv.ch.DoError(ctx, http.MethodDelete, path, nil)
	return err
}
