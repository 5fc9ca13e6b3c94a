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
	"io"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gitlab.com/flimzy/testy"

	"github.com/go-couchdb2/couchdb2/chttp"
)

func TestGet(t *testing.T) {
	type tt struct {
		response *http.Response
		docID    string
		expected Document
		err      string
	}

	tests := testy.NewTable()
	tests.Add("found", tt{
		response: jsonResponse(http.StatusOK, `{"_id":"foo","_rev":"1-abc","value":42}`),
		docID:    "foo",
		expected: Document{"_id": "foo", "_rev": "1-abc", "value": float64(42)},
	})
	tests.Add("missing returns nil", tt{
		response: jsonResponse(http.StatusNotFound, `{"error":"not_found","reason":"missing"}`),
		docID:    "missing",
	})
	tests.Add("unauthorized propagates", tt{
		response: jsonResponse(http.StatusUnauthorized, `{"error":"unauthorized","reason":"You are not authorized"}`),
		docID:    "foo",
		err:      "Unauthorized: You are not authorized",
	})

	tests.Run(t, func(t *testing.T, tt tt) {
		srv := newTestServer(t, func(*http.Request) (*http.Response, error) {
			return tt.response, nil
		})
		doc, err := srv.DB("testdb").Get(context.Background(), tt.docID, nil)
		if !testy.ErrorMatches(tt.err, err) {
			t.Fatalf("Unexpected error: %s", err)
		}
		if err != nil {
			return
		}
		if d := cmp.Diff(tt.expected, doc); d != "" {
			t.Error(d)
		}
	})
}

func TestMustGet(t *testing.T) {
	srv := newTestServer(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"error":"not_found","reason":"missing"}`), nil
	})
	_, err := srv.DB("testdb").MustGet(context.Background(), "nope", nil)
	if !IsNotFound(err) {
		t.Errorf("Expected a NotFound error, got %v", err)
	}
}

func TestPut(t *testing.T) {
	t.Run("id from document", func(t *testing.T) {
		var captured *http.Request
		var body []byte
		srv := newTestServer(t, func(r *http.Request) (*http.Response, error) {
			captured = r
			body, _ = io.ReadAll(r.Body)
			return jsonResponse(http.StatusCreated, `{"ok":true,"id":"foo","rev":"1-abc"}`), nil
		})
		doc := Document{"_id": "foo", "value": 42}
		id, rev, err := srv.DB("testdb").Put(context.Background(), doc)
		if err != nil {
			t.Fatal(err)
		}
		if id != "foo" || rev != "1-abc" {
			t.Errorf("Unexpected result: %s / %s", id, rev)
		}
		if captured.Method != http.MethodPut {
			t.Errorf("Unexpected method: %s", captured.Method)
		}
		if captured.URL.Path != "/testdb/foo" {
			t.Errorf("Unexpected path: %s", captured.URL.Path)
		}
		var sent Document
		if err := json.Unmarshal(body, &sent); err != nil {
			t.Fatal(err)
		}
		if sent.ID() != "foo" {
			t.Errorf("Unexpected body id: %s", sent.ID())
		}
	})

	t.Run("id assigned", func(t *testing.T) {
		var path string
		srv := newTestServer(t, func(r *http.Request) (*http.Response, error) {
			path = r.URL.Path
			return jsonResponse(http.StatusCreated, `{"ok":true,"id":"x","rev":"1-abc"}`), nil
		})
		doc := Document{"value": 42}
		_, _, err := srv.DB("testdb").Put(context.Background(), doc)
		if err != nil {
			t.Fatal(err)
		}
		id := path[len("/testdb/"):]
		if len(id) != 32 {
			t.Errorf("Expected a 32 character id, got %q", id)
		}
		if _, ok := doc["_id"]; ok {
			t.Error("Caller document was modified")
		}
	})

	t.Run("conflict", func(t *testing.T) {
		srv := newTestServer(t, func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusConflict, `{"error":"conflict","reason":"Document update conflict."}`), nil
		})
		_, _, err := srv.DB("testdb").Put(context.Background(), Document{"_id": "foo"})
		if !IsConflict(err) {
			t.Errorf("Expected a Conflict error, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	type tt struct {
		doc Document
		err string
	}

	tests := testy.NewTable()
	tests.Add("missing id", tt{
		doc: Document{"_rev": "1-abc"},
		err: "Not Found: missing _id item in the document",
	})
	tests.Add("missing rev", tt{
		doc: Document{"_id": "foo"},
		err: "Conflict: missing _rev item in the document",
	})
	tests.Add("success", tt{
		doc: Document{"_id": "foo", "_rev": "1-abc"},
	})

	tests.Run(t, func(t *testing.T, tt tt) {
		var captured *http.Request
		srv := newTestServer(t, func(r *http.Request) (*http.Response, error) {
			captured = r
			return jsonResponse(http.StatusOK, `{"ok":true}`), nil
		})
		err := srv.DB("testdb").Delete(context.Background(), tt.doc)
		if !testy.ErrorMatches(tt.err, err) {
			t.Fatalf("Unexpected error: %s", err)
		}
		if tt.err != "" {
			// Local validation failures must not send a request.
			if captured != nil {
				t.Fatalf("Unexpected request: %s %s", captured.Method, captured.URL.Path)
			}
			return
		}
		if captured == nil {
			t.Fatal("no request sent")
		}
		if im := captured.Header.Get("If-Match"); im != `"1-abc"` {
			t.Errorf("Unexpected If-Match header: %s", im)
		}
	})

	t.Run("kinds", func(t *testing.T) {
		db := newTestServer(t, nil).DB("testdb")
		if err := db.Delete(context.Background(), Document{"_rev": "1-x"}); chttp.KindOf(err) != chttp.KindNotFound {
			t.Errorf("Unexpected kind: %v", err)
		}
		if err := db.Delete(context.Background(), Document{"_id": "x"}); chttp.KindOf(err) != chttp.KindConflict {
			t.Errorf("Unexpected kind: %v", err)
		}
	})
}

func TestPutDesign(t *testing.T) {
	ddoc := `{"_id":"_design/core","_rev":"3-xyz","views":{"by_name":{"map":"function(doc) { emit(doc.name, null); }"}}}`

	t.Run("unchanged skips write", func(t *testing.T) {
		var puts int
		srv := newTestServer(t, func(r *http.Request) (*http.Response, error) {
			if r.Method == http.MethodPut {
				puts++
				return jsonResponse(http.StatusCreated, `{"ok":true,"id":"_design/core","rev":"4-new"}`), nil
			}
			return jsonResponse(http.StatusOK, ddoc), nil
		})
		doc := Document{
			"views": map[string]interface{}{
				"by_name": map[string]interface{}{
					"map": "function(doc) { emit(doc.name, null); }",
				},
			},
		}
		changed, err := srv.DB("testdb").PutDesign(context.Background(), "core", doc, false)
		if err != nil {
			t.Fatal(err)
		}
		if changed {
			t.Error("Expected no change")
		}
		if puts != 0 {
			t.Errorf("Expected no write, got %d", puts)
		}
	})

	t.Run("changed writes", func(t *testing.T) {
		var putPath string
		var body []byte
		srv := newTestServer(t, func(r *http.Request) (*http.Response, error) {
			if r.Method == http.MethodPut {
				putPath = r.URL.Path
				body, _ = io.ReadAll(r.Body)
				return jsonResponse(http.StatusCreated, `{"ok":true,"id":"_design/core","rev":"4-new"}`), nil
			}
			return jsonResponse(http.StatusOK, ddoc), nil
		})
		doc := Document{
			"views": map[string]interface{}{
				"by_name": map[string]interface{}{
					"map": "function(doc) { emit(doc.title, null); }",
				},
			},
		}
		changed, err := srv.DB("testdb").PutDesign(context.Background(), "core", doc, false)
		if err != nil {
			t.Fatal(err)
		}
		if !changed {
			t.Error("Expected a change")
		}
		if putPath != "/testdb/_design/core" {
			t.Errorf("Unexpected path: %s", putPath)
		}
		var sent Document
		if err := json.Unmarshal(body, &sent); err != nil {
			t.Fatal(err)
		}
		// The current revision must be carried over for the update.
		if sent.Rev() != "3-xyz" {
			t.Errorf("Unexpected rev in body: %s", sent.Rev())
		}
	})

	t.Run("new design doc", func(t *testing.T) {
		var putPath string
		srv := newTestServer(t, func(r *http.Request) (*http.Response, error) {
			if r.Method == http.MethodPut {
				putPath = r.URL.Path
				return jsonResponse(http.StatusCreated, `{"ok":true,"id":"_design/core","rev":"1-new"}`), nil
			}
			return jsonResponse(http.StatusNotFound, `{"error":"not_found","reason":"missing"}`), nil
		})
		changed, err := srv.DB("testdb").PutDesign(context.Background(), "core", Document{"views": map[string]interface{}{}}, false)
		if err != nil {
			t.Fatal(err)
		}
		if !changed {
			t.Error("Expected a change")
		}
		if putPath != "/testdb/_design/core" {
			t.Errorf("Unexpected path: %s", putPath)
		}
	})

	t.Run("rebuild queries views", func(t *testing.T) {
		var viewPaths []string
		srv := newTestServer(t, func(r *http.Request) (*http.Response, error) {
			switch r.Method {
			case http.MethodPut:
				return jsonResponse(http.StatusCreated, `{"ok":true,"id":"_design/core","rev":"1-new"}`), nil
			case http.MethodGet:
				if r.URL.Path == "/testdb/_design/core" {
					return jsonResponse(http.StatusNotFound, `{"error":"not_found","reason":"missing"}`), nil
				}
				viewPaths = append(viewPaths, r.URL.Path)
				return jsonResponse(http.StatusOK, `{"rows":[],"offset":0,"total_rows":0}`), nil
			}
			t.Fatalf("unexpected method: %s", r.Method)
			return nil, nil
		})
		doc := Document{
			"views": map[string]interface{}{
				"by_name": map[string]interface{}{"map": "function(doc) {}"},
			},
		}
		if _, err := srv.DB("testdb").PutDesign(context.Background(), "core", doc, true); err != nil {
			t.Fatal(err)
		}
		expected := []string{"/testdb/_design/core/_view/by_name"}
		if d := cmp.Diff(expected, viewPaths); d != "" {
			t.Error(d)
		}
	})
}

func TestExists(t *testing.T) {
	type tt struct {
		status   int
		expected bool
	}

	tests := testy.NewTable()
	tests.Add("exists", tt{status: http.StatusOK, expected: true})
	tests.Add("missing", tt{status: http.StatusNotFound, expected: false})

	tests.Run(t, func(t *testing.T, tt tt) {
		srv := newTestServer(t, func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: tt.status,
				Body:       http.NoBody,
				Request:    r,
			}, nil
		})
		exists, err := srv.DB("testdb").Exists(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if exists != tt.expected {
			t.Errorf("Unexpected result: %t", exists)
		}
	})
}
