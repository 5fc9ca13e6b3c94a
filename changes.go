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
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-couchdb2/couchdb2/chttp"
)

// ChangesOptions are optional parameters to Changes.
type ChangesOptions struct {
	// Since starts the results after the given update sequence. The special
	// value "now" starts at the current sequence.
	Since string
	// Limit is the maximum number of results returned.
	Limit *int
	// Descending returns the changes in descending sequence order.
	Descending bool
	// IncludeDocs includes the current document with each result.
	IncludeDocs bool
	// Filter names a filter function, "ddoc/filtername", to apply. The
	// special value "_doc_ids" limits the results to the documents named in
	// DocIDs.
	Filter string
	// DocIDs limits the results to the named documents. Implies the
	// "_doc_ids" filter.
	DocIDs []string
}

// Change is one row of a changes feed.
type Change struct {
	ID      string `json:"id"`
	Seq     string `json:"seq"`
	Deleted bool   `json:"deleted,omitempty"`
	Changes []struct {
		Rev string `json:"rev"`
	} `json:"changes"`
	Doc Document `json:"doc,omitempty"`
}

// ChangesResult is the result of a normal-feed changes request.
type ChangesResult struct {
	Results []Change `json:"results"`
	LastSeq string   `json:"last_seq"`
	Pending int64    `json:"pending"`
}

// Changes returns the changes made to the database, as a normal (one-shot)
// feed.
func (db *Database) Changes(ctx context.Context, opts *ChangesOptions) (*ChangesResult, error) {
	query := url.Values{}
	var body interface{}
	if opts != nil {
		if opts.Since != "" {
			query.Set("since", opts.Since)
		}
		if opts.Limit != nil {
			query.Set("limit", strconv.Itoa(*opts.Limit))
		}
		if opts.Descending {
			query.Set("descending", "true")
		}
		if opts.IncludeDocs {
			query.Set("include_docs", "true")
		}
		switch {
		case len(opts.DocIDs) > 0:
			query.Set("filter", "_doc_ids")
			body = map[string]interface{}{"doc_ids": opts.DocIDs}
		case opts.Filter != "":
			query.Set("filter", opts.Filter)
		}
	}
	result := new(ChangesResult)
	var err error
	if body != nil {
		err = db.srv.ch.DoJSON(ctx, http.MethodPost, db.path("_changes"), &chttp.Options{Query: query, JSON: body}, result)
	} else {
		err = db.srv.ch.DoJSON(ctx, http.MethodGet, db.path("_changes"), &chttp.Options{Query: query}, result)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateSeq returns the database's current update sequence.
func (db *Database) UpdateSeq(ctx context.Context) (string, error) {
	info, err := db.Info(ctx)
	if err != nil {
		return "", err
	}
	return info.UpdateSeq, nil
}
