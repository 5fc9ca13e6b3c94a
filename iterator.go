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

// ChunkSize is the number of rows fetched per request when iterating over all
// documents of a database.
const ChunkSize = 100

// allDocsPage is one page of an _all_docs response, positioned by the
// server-reported offset of its first row.
type allDocsPage struct {
	Rows   []Row
	Offset int64
}

// fetchFunc retrieves one page of rows, skipping the given number of rows and
// returning at most limit. An empty page marks the end of the sequence.
type fetchFunc func(skip, limit int) (*allDocsPage, error)

// Iterator walks the rows of a database one at a time, fetching pages of
// ChunkSize rows on demand. It is not safe for concurrent use.
//
//	it := db.Docs(ctx)
//	for it.Next() {
//	    doc := it.Doc()
//	    ...
//	}
//	if err := it.Err(); err != nil {
//	    ...
//	}
type Iterator struct {
	fetch fetchFunc
	// buffer holds the current page in reverse order, so that the next row is
	// always popped from the end.
	buffer []Row
	// skip is the absolute position of the next page: the offset the server
	// reported for the last page, plus the rows received from it. Rows written
	// or deleted behind the cursor therefore never shift it.
	skip int
	cur  *Row
	done bool
	err  error
}

// Next advances the iterator to the next row. It returns false when the rows
// are exhausted, or when fetching a page fails, after which Err returns the
// failure.
func (it *Iterator) Next() bool {
	if it.err != nil || it.done {
		return false
	}
	if len(it.buffer) == 0 {
		page, err := it.fetch(it.skip, ChunkSize)
		if err != nil {
			it.err = err
			return false
		}
		if len(page.Rows) == 0 {
			it.done = true
			return false
		}
		it.skip = int(page.Offset) + len(page.Rows)
		it.buffer = make([]Row, len(page.Rows))
		for i, row := range page.Rows {
			it.buffer[len(page.Rows)-1-i] = row
		}
	}
	it.cur = &it.buffer[len(it.buffer)-1]
	it.buffer = it.buffer[:len(it.buffer)-1]
	return true
}

// ID returns the document id of the current row. It is only valid after a
// call to Next has returned true.
func (it *Iterator) ID() string {
	return it.cur.ID
}

// Doc returns the document of the current row, or nil if the iterator does
// not include documents.
func (it *Iterator) Doc() Document {
	return it.cur.Doc
}

// Err returns the error, if any, that stopped the iteration.
func (it *Iterator) Err() error {
	return it.err
}

func (db *Database) allDocsFetch(ctx context.Context, includeDocs bool) fetchFunc {
	return func(skip, limit int) (*allDocsPage, error) {
		query := url.Values{
			"skip":  []string{strconv.Itoa(skip)},
			"limit": []string{strconv.Itoa(limit)},
		}
		if includeDocs {
			query.Set("include_docs", "true")
		}
		var result viewResponse
		err := db.srv.ch.DoJSON(ctx, http.MethodGet, db.path("_all_docs"), &chttp.Options{Query: query}, &result)
		if err != nil {
			return nil, err
		}
		return &allDocsPage{Rows: result.Rows, Offset: result.Offset}, nil
	}
}

// Docs returns an iterator over all documents of the database, including
// design documents.
func (db *Database) Docs(ctx context.Context) *Iterator {
	return &Iterator{fetch: db.allDocsFetch(ctx, true)}
}

// IDs returns an iterator over the ids of all documents of the database. Doc
// returns nil on the resulting iterator.
func (db *Database) IDs(ctx context.Context) *Iterator {
	return &Iterator{fetch: db.allDocsFetch(ctx, false)}
}
