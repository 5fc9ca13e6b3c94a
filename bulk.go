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
	"encoding/json"
	"net/http"

	"context"

	"github.com/go-couchdb2/couchdb2/chttp"
)

// BulkResult reports the outcome of one document in a bulk update. Error is
// nil on success; on failure it is an *chttp.HTTPError carrying the
// server-reported error code and reason.
type BulkResult struct {
	ID    string
	Rev   string
	Error error
}

// OK reports whether the document was written successfully.
func (r BulkResult) OK() bool {
	return r.Error == nil
}

type bulkRow struct {
	ID    string `json:"id"`
	Rev   string `json:"rev"`
	Error error  `json:"-"`
}

func (r *bulkRow) UnmarshalJSON(p []byte) error {
	var row struct {
		ID     string `json:"id"`
		Rev    string `json:"rev"`
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(p, &row); err != nil {
		return err
	}
	r.ID = row.ID
	r.Rev = row.Rev
	switch row.Error {
	case "":
		// success
	case "conflict":
		r.Error = &chttp.HTTPError{
			Kind:   chttp.KindConflict,
			Status: http.StatusConflict,
			Reason: row.Reason,
		}
	case "forbidden":
		r.Error = &chttp.HTTPError{
			Kind:   chttp.KindAuthorization,
			Status: http.StatusForbidden,
			Reason: row.Reason,
		}
	default:
		r.Error = &chttp.HTTPError{
			Kind:   chttp.KindServerError,
			Status: http.StatusInternalServerError,
			Reason: row.Error + ": " + row.Reason,
		}
	}
	return nil
}

// BulkUpdate inserts or updates the given documents in a single request, and
// returns one result per document. Each element of docs may be a Document, a
// plain map, or any value that marshals to a JSON object.
//
// Partial failure is normal: the request as a whole succeeds even when
// individual documents are rejected, and the caller must inspect each
// result. Unlike Put, BulkUpdate reports new revisions only through the
// returned results; the input documents are never modified.
//
// Results are returned in the order the server reports them, which CouchDB
// documents to be the input order. No defensive id matching is performed.
func (db *Database) BulkUpdate(ctx context.Context, docs []interface{}) ([]BulkResult, error) {
	body := struct {
		Docs []interface{} `json:"docs"`
	}{Docs: docs}
	var rows []bulkRow
	err := db.srv.ch.DoJSON(ctx, http.MethodPost, db.path("_bulk_docs"), &chttp.Options{JSON: body}, &rows)
	if err != nil {
		return nil, err
	}
	results := make([]BulkResult, len(rows))
	for i, row := range rows {
		results[i] = BulkResult{
			ID:    row.ID,
			Rev:   row.Rev,
			Error: row.Error,
		}
	}
	return results, nil
}
