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
	"strconv"

	"github.com/go-couchdb2/couchdb2/chttp"
)

// Row is one row of a view result.
type Row struct {
	// ID is the identifier of the document that emitted the row, if any.
	ID string `json:"id,omitempty"`
	// Key is the index key of the row.
	Key json.RawMessage `json:"key"`
	// Value is the index value of the row.
	Value json.RawMessage `json:"value"`
	// Doc is the emitting document, present only when requested with
	// include_docs.
	Doc Document `json:"doc,omitempty"`
}

// ViewResult is the ordered result of a view query. Rows are ordered by index
// key, ascending unless descending was requested; Offset and TotalRows are
// only meaningful when the query was sorted.
type ViewResult struct {
	Rows      []Row `json:"rows"`
	Offset    int64 `json:"offset"`
	TotalRows int64 `json:"total_rows"`
}

type viewResponse struct {
	Rows      []Row `json:"rows"`
	Offset    int64 `json:"offset"`
	TotalRows int64 `json:"total_rows"`
}

func (r *viewResponse) viewResult() *ViewResult {
	return &ViewResult{
		Rows:      r.Rows,
		Offset:    r.Offset,
		TotalRows: r.TotalRows,
	}
}

// ViewOptions are optional parameters to View. Every field is independently
// optional; the zero value queries the view with server defaults.
type ViewOptions struct {
	// Key returns only rows matching the specified key.
	Key interface{}
	// Keys returns only rows whose key matches one of those listed.
	Keys interface{}
	// StartKey returns rows starting with the specified key.
	StartKey interface{}
	// EndKey stops returning rows when the specified key is reached.
	EndKey interface{}
	// StartKeyDocID returns rows starting with the specified document.
	StartKeyDocID string
	// EndKeyDocID stops returning rows when the specified document is
	// reached.
	EndKeyDocID string
	// Skip skips this number of rows before returning results.
	Skip *int
	// Limit limits the number of rows returned.
	Limit *int
	// Unsorted disables sorting of the rows by key. Offset and TotalRows are
	// not available on unsorted results.
	Unsorted bool
	// Descending returns the rows in descending order.
	Descending bool
	// Group groups the results using the reduce function of the view.
	Group bool
	// GroupLevel specifies the group level to use; implies Group.
	GroupLevel *int
	// Reduce controls use of the view's reduce function. The server default
	// is to reduce when a reduce function is defined.
	Reduce *bool
	// IncludeDocs includes the emitting document with each row. This forces
	// Reduce to false: documents and reduced aggregates are mutually
	// exclusive.
	IncludeDocs bool
	// Update controls whether the view is refreshed before the result is
	// returned: "true", "false" or "lazy".
	Update string
}

// query marshals the options into URL query parameters. All key and boolean
// values are JSON-encoded, as the view API requires.
func (o *ViewOptions) query() (url.Values, error) {
	params := url.Values{}
	if o == nil {
		return params, nil
	}
	for _, kv := range []struct {
		name  string
		value interface{}
	}{
		{"key", o.Key},
		{"keys", o.Keys},
		{"startkey", o.StartKey},
		{"endkey", o.EndKey},
	} {
		if kv.value == nil {
			continue
		}
		buf, err := json.Marshal(kv.value)
		if err != nil {
			return nil, &chttp.HTTPError{
				Kind:   chttp.KindBadRequest,
				Status: http.StatusBadRequest,
				Reason: "invalid " + kv.name + ": " + err.Error(),
			}
		}
		params.Set(kv.name, string(buf))
	}
	if o.StartKeyDocID != "" {
		params.Set("startkey_docid", o.StartKeyDocID)
	}
	if o.EndKeyDocID != "" {
		params.Set("endkey_docid", o.EndKeyDocID)
	}
	if o.Skip != nil {
		params.Set("skip", strconv.Itoa(*o.Skip))
	}
	if o.Limit != nil {
		params.Set("limit", strconv.Itoa(*o.Limit))
	}
	if o.Unsorted {
		params.Set("sorted", "false")
	}
	if o.Descending {
		params.Set("descending", "true")
	}
	if o.Group {
		params.Set("group", "true")
	}
	if o.GroupLevel != nil {
		params.Set("group_level", strconv.Itoa(*o.GroupLevel))
	}
	if o.Reduce != nil {
		params.Set("reduce", strconv.FormatBool(*o.Reduce))
	}
	if o.IncludeDocs {
		params.Set("include_docs", "true")
		params.Set("reduce", "false")
	}
	if o.Update != "" {
		switch o.Update {
		case "true", "false", "lazy":
		default:
			return nil, &chttp.HTTPError{
				Kind:   chttp.KindBadRequest,
				Status: http.StatusBadRequest,
				Reason: "invalid update value: " + o.Update,
			}
		}
		params.Set("update", o.Update)
	}
	return params, nil
}

// View queries a view of the named design document for data and/or
// documents.
func (db *Database) View(ctx context.Context, ddoc, view string, opts *ViewOptions) (*ViewResult, error) {
	query, err := opts.query()
	if err != nil {
		return nil, err
	}
	var result viewResponse
	path := db.path("_design", url.PathEscape(ddoc), "_view", url.PathEscape(view))
	if err := db.srv.ch.DoJSON(ctx, http.MethodGet, path, &chttp.Options{Query: query}, &result); err != nil {
		return nil, err
	}
	return result.viewResult(), nil
}
