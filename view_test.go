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
	"testing"

	"github.com/google/go-cmp/cmp"
	"gitlab.com/flimzy/testy"
)

func TestViewOptionsQuery(t *testing.T) {
	type tt struct {
		opts     *ViewOptions
		expected url.Values
		err      string
	}

	intptr := func(i int) *int { return &i }
	boolptr := func(b bool) *bool { return &b }

	tests := testy.NewTable()
	tests.Add("nil options", tt{
		opts:     nil,
		expected: url.Values{},
	})
	tests.Add("string key is JSON encoded", tt{
		opts:     &ViewOptions{Key: "foo"},
		expected: url.Values{"key": {`"foo"`}},
	})
	tests.Add("array key", tt{
		opts:     &ViewOptions{StartKey: []interface{}{"a", 1}},
		expected: url.Values{"startkey": {`["a",1]`}},
	})
	tests.Add("paging", tt{
		opts:     &ViewOptions{Skip: intptr(10), Limit: intptr(5)},
		expected: url.Values{"skip": {"10"}, "limit": {"5"}},
	})
	tests.Add("descending and group", tt{
		opts:     &ViewOptions{Descending: true, Group: true, GroupLevel: intptr(2)},
		expected: url.Values{"descending": {"true"}, "group": {"true"}, "group_level": {"2"}},
	})
	tests.Add("reduce false", tt{
		opts:     &ViewOptions{Reduce: boolptr(false)},
		expected: url.Values{"reduce": {"false"}},
	})
	tests.Add("include_docs forces reduce off", tt{
		opts:     &ViewOptions{IncludeDocs: true, Reduce: boolptr(true)},
		expected: url.Values{"include_docs": {"true"}, "reduce": {"false"}},
	})
	tests.Add("update lazy", tt{
		opts:     &ViewOptions{Update: "lazy"},
		expected: url.Values{"update": {"lazy"}},
	})
	tests.Add("invalid update", tt{
		opts: &ViewOptions{Update: "sometimes"},
		err:  "Bad Request: invalid update value: sometimes",
	})
	tests.Add("unsorted", tt{
		opts:     &ViewOptions{Unsorted: true},
		expected: url.Values{"sorted": {"false"}},
	})

	tests.Run(t, func(t *testing.T, tt tt) {
		query, err := tt.opts.query()
		if !testy.ErrorMatches(tt.err, err) {
			t.Fatalf("Unexpected error: %s", err)
		}
		if err != nil {
			return
		}
		if d := cmp.Diff(tt.expected, query); d != "" {
			t.Error(d)
		}
	})
}

func TestView(t *testing.T) {
	var captured *http.Request
	srv := newTestServer(t, func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(http.StatusOK, `{
			"rows":[
				{"id":"a","key":"apple","value":1},
				{"id":"b","key":"banana","value":2}
			],
			"offset":0,
			"total_rows":2
		}`), nil
	})
	result, err := srv.DB("testdb").View(context.Background(), "core", "by name", nil)
	if err != nil {
		t.Fatal(err)
	}
	if captured.URL.Path != "/testdb/_design/core/_view/by name" {
		t.Errorf("Unexpected path: %s", captured.URL.Path)
	}
	if result.TotalRows != 2 || result.Offset != 0 {
		t.Errorf("Unexpected result meta: %+v", result)
	}
	if len(result.Rows) != 2 || result.Rows[0].ID != "a" || result.Rows[1].ID != "b" {
		t.Errorf("Unexpected rows: %+v", result.Rows)
	}
}
