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

// Package chttp provides a minimal HTTP transport for communicating with
// CouchDB servers.
package chttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
)

// TypeJSON is the MIME type used for all JSON request and response bodies.
const TypeJSON = "application/json"

// The default User-Agent values.
const (
	UserAgent = "Go-couchdb2"
	Version   = "1.0.0"
)

// Client represents a connection to a CouchDB server. It embeds an
// *http.Client, so its fields may be tuned directly.
type Client struct {
	// UserAgents is appended to the User-Agent header. Typically it should
	// contain pairs of product name and version.
	UserAgents []string

	*http.Client

	rawDSN   string
	dsn      *url.URL
	basePath string
}

// New returns a connection to a remote CouchDB server. Credentials embedded
// in the URL are applied as Cookie (session) auth. No request is sent until
// the client is first used.
func New(client *http.Client, dsn string) (*Client, error) {
	dsnURL, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	user := dsnURL.User
	dsnURL.User = nil
	c := &Client{
		Client:   client,
		dsn:      dsnURL,
		basePath: strings.TrimSuffix(dsnURL.Path, "/"),
		rawDSN:   dsn,
	}
	if user != nil {
		password, _ := user.Password()
		if err := c.Auth(&CookieAuth{
			Username: user.Username(),
			Password: password,
		}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func parseDSN(dsn string) (*url.URL, error) {
	if dsn == "" {
		return nil, &HTTPError{
			Kind:   KindBadRequest,
			Status: http.StatusBadRequest,
			Reason: "no URL specified",
		}
	}
	if !strings.HasPrefix(dsn, "http://") && !strings.HasPrefix(dsn, "https://") {
		dsn = "http://" + dsn
	}
	dsnURL, err := url.Parse(dsn)
	if err != nil {
		return nil, &HTTPError{
			Kind:   KindBadRequest,
			Status: http.StatusBadRequest,
			Reason: err.Error(),
		}
	}
	if dsnURL.Path == "" {
		dsnURL.Path = "/"
	}
	return dsnURL, nil
}

// DSN returns the unparsed DSN used to connect.
func (c *Client) DSN() string {
	return c.rawDSN
}

// Authenticator configures an authentication mechanism on a client.
type Authenticator interface {
	Authenticate(*Client) error
}

// Auth authenticates using the provided Authenticator.
func (c *Client) Auth(a Authenticator) error {
	return a.Authenticate(c)
}

// Options are optional parameters which may be sent with a request.
type Options struct {
	// Accept sets the request's Accept header. Defaults to "application/json".
	Accept string

	// ContentType sets the request's Content-Type header. Defaults to
	// "application/json".
	ContentType string

	// Body sets the body of the request.
	Body io.ReadCloser

	// GetBody is a function to set the body, and can be used on retries. If
	// set, Body is ignored.
	GetBody func() (io.ReadCloser, error)

	// JSON is an arbitrary value which is marshaled to the request's body.
	// It is an error to set both Body and JSON on the same request.
	JSON interface{}

	// IfMatch adds the If-Match header. The value is quoted if it is not
	// already.
	IfMatch string

	// IfNoneMatch adds the If-None-Match header. The value is quoted if it is
	// not already.
	IfNoneMatch string

	// Query is appended to the request URL's query string.
	Query url.Values

	// Header is a list of default headers to be set on the request. Headers
	// already present are not overwritten.
	Header http.Header

	// ExpectStatus overrides the static status classification table for this
	// request. Mapping a status to KindNone makes it count as success.
	ExpectStatus map[int]Kind
}

func (c *Client) path(path string) string {
	if c.basePath != "" {
		return c.basePath + "/" + strings.TrimPrefix(path, "/")
	}
	return path
}

// NewRequest returns a new *http.Request to the CouchDB server at the
// specified path. The host, scheme, etc, of the specified path are ignored.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	reqPath, err := url.Parse(c.path(path))
	if err != nil {
		return nil, &HTTPError{
			Kind:   KindBadRequest,
			Status: http.StatusBadRequest,
			Reason: err.Error(),
		}
	}
	u := *c.dsn // Make a copy
	u.Path = reqPath.Path
	u.RawPath = reqPath.RawPath
	u.RawQuery = reqPath.RawQuery
	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, &HTTPError{
			Kind:   KindBadRequest,
			Status: http.StatusBadRequest,
			Reason: err.Error(),
		}
	}
	req.Header.Set("User-Agent", c.userAgent())
	return req.WithContext(ctx), nil
}

// DoReq performs an HTTP request. An error is returned only if there was an
// error processing the request. An error status code, such as 400 or 500,
// does _not_ cause an error to be returned; use [ResponseError] or one of the
// higher-level helpers for that.
func (c *Client) DoReq(ctx context.Context, method, path string, opts *Options) (*http.Response, error) {
	if method == "" {
		return nil, errors.New("chttp: method required")
	}
	var body io.Reader
	if opts != nil {
		if opts.JSON != nil && opts.Body != nil {
			return nil, errors.New("chttp: must not set both JSON and Body")
		}
		if opts.GetBody != nil {
			var err error
			opts.Body, err = opts.GetBody()
			if err != nil {
				return nil, err
			}
		}
		if opts.JSON != nil {
			opts.Body = EncodeBody(opts.JSON)
		}
		if opts.Body != nil {
			body = opts.Body
			defer opts.Body.Close() // nolint: errcheck
		}
	}
	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.GetBody != nil {
		req.GetBody = opts.GetBody
	}
	setHeaders(req, opts)
	setQuery(req, opts)

	response, err := c.Do(req)
	return response, netError(err)
}

func netError(err error) error {
	if err == nil {
		return nil
	}
	return &HTTPError{
		Kind:   KindTransport,
		Status: http.StatusBadGateway,
		Reason: err.Error(),
	}
}

func setHeaders(req *http.Request, opts *Options) {
	accept := TypeJSON
	contentType := TypeJSON
	if opts != nil {
		if opts.Accept != "" {
			accept = opts.Accept
		}
		if opts.ContentType != "" {
			contentType = opts.ContentType
		}
		if opts.IfMatch != "" {
			im := `"` + strings.Trim(opts.IfMatch, `"`) + `"`
			req.Header.Set("If-Match", im)
		}
		if opts.IfNoneMatch != "" {
			inm := `"` + strings.Trim(opts.IfNoneMatch, `"`) + `"`
			req.Header.Set("If-None-Match", inm)
		}
		for k, v := range opts.Header {
			if _, ok := req.Header[k]; !ok {
				req.Header[k] = v
			}
		}
	}
	req.Header.Add("Accept", accept)
	req.Header.Add("Content-Type", contentType)
}

func setQuery(req *http.Request, opts *Options) {
	if opts == nil || len(opts.Query) == 0 {
		return
	}
	if req.URL.RawQuery == "" {
		req.URL.RawQuery = opts.Query.Encode()
		return
	}
	req.URL.RawQuery = strings.Join([]string{req.URL.RawQuery, opts.Query.Encode()}, "&")
}

// DoError is the same as DoReq(), followed by checking the response for an
// error status. This method is meant for cases where the only information
// needed from the response is the status code. It unconditionally closes the
// response body.
func (c *Client) DoError(ctx context.Context, method, path string, opts *Options) (*http.Response, error) {
	res, err := c.DoReq(ctx, method, path, opts)
	if err != nil {
		return res, err
	}
	if res.Body != nil {
		defer CloseBody(res.Body)
	}
	err = ResponseError(res, expectStatus(opts))
	return res, err
}

// DoJSON combines DoReq, ResponseError, and DecodeJSON, and closes the
// response body.
func (c *Client) DoJSON(ctx context.Context, method, path string, opts *Options, i interface{}) error {
	res, err := c.DoReq(ctx, method, path, opts)
	if err != nil {
		return err
	}
	if res.Body != nil {
		defer CloseBody(res.Body)
	}
	if err = ResponseError(res, expectStatus(opts)); err != nil {
		return err
	}
	return DecodeJSON(res, i)
}

func expectStatus(opts *Options) map[int]Kind {
	if opts == nil {
		return nil
	}
	return opts.ExpectStatus
}

// DecodeJSON unmarshals the response body into i. This function consumes and
// closes the response body.
func DecodeJSON(r *http.Response, i interface{}) error {
	defer CloseBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(i); err != nil {
		return &HTTPError{
			Kind:   KindTransport,
			Status: http.StatusBadGateway,
			Reason: err.Error(),
		}
	}
	return nil
}

// CloseBody drains and closes a response body, to allow the underlying
// connection to be reused.
func CloseBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// EncodeBody JSON-encodes i to an io.ReadCloser. If an encoding error occurs,
// it will be returned on the next read.
func EncodeBody(i interface{}) io.ReadCloser {
	done := make(chan struct{})
	r, w := io.Pipe()
	go func() {
		defer close(done)
		var err error
		switch t := i.(type) {
		case []byte:
			_, err = w.Write(t)
		case json.RawMessage:
			_, err = w.Write(t)
		case string:
			_, err = w.Write([]byte(t))
		default:
			err = json.NewEncoder(w).Encode(i)
		}
		_ = w.CloseWithError(err)
	}()
	return &ebReader{
		ReadCloser: r,
		done:       done,
	}
}

type ebReader struct {
	io.ReadCloser
	done <-chan struct{}
}

var _ io.ReadCloser = &ebReader{}

func (r *ebReader) Close() error {
	err := r.ReadCloser.Close()
	<-r.done
	return err
}

// ETag returns the unquoted ETag value, and a bool indicating whether it was
// found.
func ETag(resp *http.Response) (string, bool) {
	if resp == nil {
		return "", false
	}
	etag, ok := resp.Header["Etag"]
	if !ok {
		etag, ok = resp.Header["ETag"] // nolint: staticcheck
	}
	if !ok {
		return "", false
	}
	return strings.Trim(etag[0], `"`), ok
}

func (c *Client) userAgent() string {
	ua := UserAgent + "/" + Version + " (" + runtime.Version() + "; " + runtime.GOOS + "/" + runtime.GOARCH + ")"
	return strings.Join(append([]string{ua}, c.UserAgents...), " ")
}
