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

package chttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"gitlab.com/flimzy/testy"
)

func TestParseDSN(t *testing.T) {
	type tt struct {
		dsn    string
		host   string
		path   string
		err    string
		status int
	}

	tests := testy.NewTable()
	tests.Add("empty", tt{
		dsn:    "",
		err:    "Bad Request: no URL specified",
		status: http.StatusBadRequest,
	})
	tests.Add("full url", tt{
		dsn:  "http://localhost:5984/",
		host: "localhost:5984",
		path: "/",
	})
	tests.Add("no scheme", tt{
		dsn:  "localhost:5984",
		host: "localhost:5984",
		path: "/",
	})
	tests.Add("https", tt{
		dsn:  "https://couch.example.com/",
		host: "couch.example.com",
		path: "/",
	})
	tests.Add("with base path", tt{
		dsn:  "http://example.com/couch",
		host: "example.com",
		path: "/couch",
	})

	tests.Run(t, func(t *testing.T, tt tt) {
		dsn, err := parseDSN(tt.dsn)
		if d := internalStatusError(tt.err, tt.status, err); d != "" {
			t.Fatal(d)
		}
		if err != nil {
			return
		}
		if dsn.Host != tt.host {
			t.Errorf("Unexpected host: %s", dsn.Host)
		}
		if dsn.Path != tt.path {
			t.Errorf("Unexpected path: %s", dsn.Path)
		}
	})
}

func TestDoJSON(t *testing.T) {
	type tt struct {
		client *Client
		method string
		path   string
		opts   *Options
		status int
		err    string
	}

	type result struct {
		OK bool `json:"ok"`
	}

	tests := testy.NewTable()
	tests.Add("network error", tt{
		client: newCustomClient("", func(*http.Request) (*http.Response, error) {
			return nil, errors.New("network trouble")
		}),
		method: http.MethodGet,
		path:   "/",
		status: http.StatusBadGateway,
		err:    "network trouble",
	})
	tests.Add("error response", tt{
		client: newTestClient(&http.Response{
			StatusCode:    http.StatusBadRequest,
			Header:        http.Header{"Content-Type": {"application/json"}},
			ContentLength: -1,
			Body:          Body(`{"error":"bad_request","reason":"invalid UTF-8 JSON"}`),
		}, nil),
		method: http.MethodPost,
		path:   "/testdb",
		status: http.StatusBadRequest,
		err:    "Bad Request: invalid UTF-8 JSON",
	})
	tests.Add("success", tt{
		client: newTestClient(&http.Response{
			StatusCode: http.StatusOK,
			Body:       Body(`{"ok":true}`),
		}, nil),
		method: http.MethodGet,
		path:   "/testdb",
	})
	tests.Add("expected status absorbs error", tt{
		client: newTestClient(&http.Response{
			StatusCode: http.StatusNotFound,
			Body:       Body(`{"ok":false}`),
		}, nil),
		method: http.MethodGet,
		path:   "/testdb/missing",
		opts: &Options{
			ExpectStatus: map[int]Kind{http.StatusNotFound: KindNone},
		},
	})

	tests.Run(t, func(t *testing.T, tt tt) {
		var i result
		err := tt.client.DoJSON(context.Background(), tt.method, tt.path, tt.opts, &i)
		statusErrorRE(t, tt.err, tt.status, err)
	})
}

func statusErrorRE(t *testing.T, wantErr string, wantStatus int, err error) {
	t.Helper()
	var status int
	if err != nil {
		status = HTTPStatus(err)
	}
	if wantStatus != status {
		t.Errorf("Unexpected status: %d (want %d)", status, wantStatus)
	}
	if !testy.ErrorMatchesRE(wantErr, err) {
		t.Errorf("Unexpected error: %s", err)
	}
}

func TestRequestSetup(t *testing.T) {
	var captured *http.Request
	client := newCustomClient("http://example.com/prefix/", func(r *http.Request) (*http.Response, error) {
		captured = r
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       Body(`{}`),
		}, nil
	})
	opts := &Options{
		IfMatch: "1-xxx",
		Query:   map[string][]string{"rev": {"1-xxx"}},
	}
	if _, err := client.DoError(context.Background(), http.MethodDelete, "/db/doc", opts); err != nil {
		t.Fatal(err)
	}
	if captured.URL.Path != "/prefix/db/doc" {
		t.Errorf("Unexpected path: %s", captured.URL.Path)
	}
	if im := captured.Header.Get("If-Match"); im != `"1-xxx"` {
		t.Errorf("Unexpected If-Match header: %s", im)
	}
	if rev := captured.URL.Query().Get("rev"); rev != "1-xxx" {
		t.Errorf("Unexpected rev param: %s", rev)
	}
	if ct := captured.Header.Get("Content-Type"); ct != TypeJSON {
		t.Errorf("Unexpected Content-Type: %s", ct)
	}
}

func TestRequestConditionalAndRetryBody(t *testing.T) {
	var captured *http.Request
	var body []byte
	client := newCustomClient("http://example.com/", func(r *http.Request) (*http.Response, error) {
		captured = r
		body, _ = io.ReadAll(r.Body)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       Body(`{}`),
		}, nil
	})
	opts := &Options{
		IfNoneMatch: "2-yyy",
		GetBody: func() (io.ReadCloser, error) {
			return Body(`{"attempt":true}`), nil
		},
	}
	if _, err := client.DoError(context.Background(), http.MethodPut, "/db/doc", opts); err != nil {
		t.Fatal(err)
	}
	if inm := captured.Header.Get("If-None-Match"); inm != `"2-yyy"` {
		t.Errorf("Unexpected If-None-Match header: %s", inm)
	}
	if string(body) != `{"attempt":true}` {
		t.Errorf("Unexpected body: %s", body)
	}
	// GetBody is carried on the request so the transport can replay it.
	if captured.GetBody == nil {
		t.Fatal("Request GetBody not set")
	}
	r, err := captured.GetBody()
	if err != nil {
		t.Fatal(err)
	}
	replay, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(replay) != `{"attempt":true}` {
		t.Errorf("Unexpected replayed body: %s", replay)
	}
}

func TestEncodeBody(t *testing.T) {
	type tt struct {
		input    interface{}
		expected string
	}

	tests := testy.NewTable()
	tests.Add("object", tt{
		input:    map[string]string{"foo": "bar"},
		expected: `{"foo":"bar"}`,
	})
	tests.Add("raw bytes", tt{
		input:    []byte(`{"raw":true}`),
		expected: `{"raw":true}`,
	})
	tests.Add("string", tt{
		input:    `{"str":true}`,
		expected: `{"str":true}`,
	})

	tests.Run(t, func(t *testing.T, tt tt) {
		r := EncodeBody(tt.input)
		defer r.Close() // nolint: errcheck
		buf, err := io.ReadAll(r)
		if err != nil {
			t.Fatal(err)
		}
		if body := strings.TrimSpace(string(buf)); body != tt.expected {
			t.Errorf("Unexpected body: %s", body)
		}
	})
}
