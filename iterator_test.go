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
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakePages serves rows from a fixed slice the way _all_docs does, honoring
// skip and limit and reporting the offset of the first returned row.
func fakePages(t *testing.T, total int) fetchFunc {
	t.Helper()
	rows := make([]Row, total)
	for i := range rows {
		rows[i] = Row{ID: fmt.Sprintf("doc-%04d", i)}
	}
	return func(skip, limit int) (*allDocsPage, error) {
		if limit != ChunkSize {
			t.Errorf("Unexpected limit: %d", limit)
		}
		if skip > len(rows) {
			skip = len(rows)
		}
		end := skip + limit
		if end > len(rows) {
			end = len(rows)
		}
		return &allDocsPage{Rows: rows[skip:end], Offset: int64(skip)}, nil
	}
}

func TestIterator(t *testing.T) {
	type tt struct {
		total int
	}

	tests := map[string]tt{
		"empty":               {total: 0},
		"less than one page":  {total: 7},
		"exactly one page":    {total: ChunkSize},
		"multiple pages":      {total: 2*ChunkSize + 37},
		"exact page multiple": {total: 3 * ChunkSize},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			it := &Iterator{fetch: fakePages(t, tt.total)}
			var ids []string
			for it.Next() {
				ids = append(ids, it.ID())
			}
			if err := it.Err(); err != nil {
				t.Fatal(err)
			}
			if len(ids) != tt.total {
				t.Fatalf("Expected %d rows, got %d", tt.total, len(ids))
			}
			for i, id := range ids {
				if expected := fmt.Sprintf("doc-%04d", i); id != expected {
					t.Fatalf("Unexpected id at %d: %s", i, id)
				}
			}
			// Exhausted iterators stay exhausted.
			if it.Next() {
				t.Error("Next returned true after exhaustion")
			}
		})
	}
}

func TestIteratorFetchError(t *testing.T) {
	boom := errors.New("fetch failed")
	calls := 0
	it := &Iterator{fetch: func(skip, limit int) (*allDocsPage, error) {
		calls++
		if calls > 1 {
			return nil, boom
		}
		rows := make([]Row, ChunkSize)
		for i := range rows {
			rows[i] = Row{ID: strconv.Itoa(i)}
		}
		return &allDocsPage{Rows: rows, Offset: 0}, nil
	}}
	var n int
	for it.Next() {
		n++
	}
	if n != ChunkSize {
		t.Errorf("Expected %d rows before the failure, got %d", ChunkSize, n)
	}
	if !errors.Is(it.Err(), boom) {
		t.Errorf("Unexpected error: %v", it.Err())
	}
	if it.Next() {
		t.Error("Next returned true after an error")
	}
}

func TestIteratorSkipTracksServerOffset(t *testing.T) {
	// The position of the next page comes from the server-reported offset
	// plus the rows received, so deletions behind the cursor do not shift it.
	var skips []int
	pages := [][]Row{
		{{ID: "a"}, {ID: "b"}},
		{{ID: "c"}},
		{},
	}
	offsets := []int64{0, 2, 3}
	call := 0
	it := &Iterator{fetch: func(skip, _ int) (*allDocsPage, error) {
		skips = append(skips, skip)
		page := &allDocsPage{Rows: pages[call], Offset: offsets[call]}
		call++
		return page, nil
	}}
	var ids []string
	for it.Next() {
		ids = append(ids, it.ID())
	}
	if err := it.Err(); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"a", "b", "c"}, ids); d != "" {
		t.Error(d)
	}
	if d := cmp.Diff([]int{0, 2, 3}, skips); d != "" {
		t.Error(d)
	}
}

func TestDocsRequests(t *testing.T) {
	var queries []string
	srv := newTestServer(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/testdb/_all_docs" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		queries = append(queries, r.URL.RawQuery)
		return jsonResponse(http.StatusOK, `{"rows":[],"offset":0,"total_rows":0}`), nil
	})
	it := srv.DB("testdb").Docs(context.Background())
	if it.Next() {
		t.Error("Expected no rows")
	}
	if err := it.Err(); err != nil {
		t.Fatal(err)
	}
	if len(queries) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(queries))
	}
	expected := "include_docs=true&limit=100&skip=0"
	if queries[0] != expected {
		t.Errorf("Unexpected query: %s", queries[0])
	}
}
