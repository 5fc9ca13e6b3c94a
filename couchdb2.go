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

// Package couchdb2 is a client for the CouchDB v2.x HTTP API.
//
// A Server value represents a connection to a CouchDB server, and a Database
// value an interface to one of its databases. All operations are synchronous
// and blocking; cancellation and timeouts are controlled through the
// context.Context passed to each call and the underlying *http.Client.
package couchdb2

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-couchdb2/couchdb2/chttp"
)

// Server is a connection to a CouchDB server.
type Server struct {
	ch *chttp.Client

	mu      sync.Mutex
	version string
}

type serverConfig struct {
	httpClient *http.Client
	auth       chttp.Authenticator
	caFile     string
	userAgent  string
}

// Option configures a Server connection.
type Option func(*serverConfig)

// WithHTTPClient sets the *http.Client used for all requests. Timeouts, TLS
// settings, and proxies are configured here.
func WithHTTPClient(client *http.Client) Option {
	return func(c *serverConfig) { c.httpClient = client }
}

// WithBasicAuth sends the credentials with every request, rather than
// establishing an authenticated session.
func WithBasicAuth(username, password string) Option {
	return func(c *serverConfig) {
		c.auth = &chttp.BasicAuth{Username: username, Password: password}
	}
}

// WithSession authenticates with a server-side session (cookie auth). The
// session is established lazily on the first request, and renewed when it
// expires.
func WithSession(username, password string) Option {
	return func(c *serverConfig) {
		c.auth = &chttp.CookieAuth{Username: username, Password: password}
	}
}

// WithCAFile trusts the CA certificates found in the named PEM file, or in
// all files of the named directory, for HTTPS connections.
func WithCAFile(path string) Option {
	return func(c *serverConfig) { c.caFile = path }
}

// WithUserAgent appends ua to the User-Agent header sent on all requests.
func WithUserAgent(ua string) Option {
	return func(c *serverConfig) { c.userAgent = ua }
}

// New returns a connection to the CouchDB server at dsn. Credentials may be
// embedded in the DSN, or supplied with WithBasicAuth or WithSession. No
// request is sent until the connection is first used.
func New(dsn string, options ...Option) (*Server, error) {
	conf := &serverConfig{}
	for _, o := range options {
		o(conf)
	}
	httpClient := conf.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if conf.caFile != "" {
		pool, err := loadCertPool(conf.caFile)
		if err != nil {
			return nil, err
		}
		transport, _ := httpClient.Transport.(*http.Transport)
		if transport == nil {
			transport = http.DefaultTransport.(*http.Transport).Clone()
		}
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.RootCAs = pool
		httpClient.Transport = transport
	}
	ch, err := chttp.New(httpClient, dsn)
	if err != nil {
		return nil, err
	}
	if conf.userAgent != "" {
		ch.UserAgents = append(ch.UserAgents, conf.userAgent)
	}
	if conf.auth != nil {
		if err := ch.Auth(conf.auth); err != nil {
			return nil, err
		}
	}
	return &Server{ch: ch}, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		files = files[:0]
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}
	for _, f := range files {
		pem, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		pool.AppendCertsFromPEM(pem)
	}
	return pool, nil
}

// DSN returns the unparsed DSN used to connect.
func (s *Server) DSN() string {
	return s.ch.DSN()
}

// Version returns the version string of the CouchDB server software. The
// value is fetched once and cached for the lifetime of the connection.
func (s *Server) Version(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != "" {
		return s.version, nil
	}
	var meta struct {
		Version string `json:"version"`
	}
	if err := s.ch.DoJSON(ctx, http.MethodGet, "/", nil, &meta); err != nil {
		return "", err
	}
	s.version = meta.Version
	return s.version, nil
}

// Meta returns the welcome metadata of the server instance.
func (s *Server) Meta(ctx context.Context) (Document, error) {
	var meta Document
	err := s.ch.DoJSON(ctx, http.MethodGet, "/", nil, &meta)
	return meta, err
}

// Up reports whether the server is up and running, ready to respond to
// requests.
func (s *Server) Up(ctx context.Context) (bool, error) {
	res, err := s.ch.DoReq(ctx, http.MethodGet, "/_up", nil)
	if err != nil {
		return false, err
	}
	chttp.CloseBody(res.Body)
	return res.StatusCode == http.StatusOK, nil
}

// AllDBs returns the names of the user-defined databases on the server.
// System databases, whose names begin with an underscore, are excluded.
func (s *Server) AllDBs(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.ch.DoJSON(ctx, http.MethodGet, "/_all_dbs", nil, &names); err != nil {
		return nil, err
	}
	dbs := names[:0]
	for _, name := range names {
		if !strings.HasPrefix(name, "_") {
			dbs = append(dbs, name)
		}
	}
	return dbs, nil
}

// UserContext returns the user context of the connection.
func (s *Server) UserContext(ctx context.Context) (Document, error) {
	var result Document
	err := s.ch.DoJSON(ctx, http.MethodGet, "/_session", nil, &result)
	return result, err
}

// ActiveTasks returns the list of running tasks on the server.
func (s *Server) ActiveTasks(ctx context.Context) ([]Document, error) {
	var tasks []Document
	err := s.ch.DoJSON(ctx, http.MethodGet, "/_active_tasks", nil, &tasks)
	return tasks, err
}

// DB returns a handle for the named database. No existence check is
// performed; use [Database.Check] or [Server.OpenDB] for that.
func (s *Server) DB(name string) *Database {
	return &Database{srv: s, name: name}
}

// OpenDB returns a handle for the named database, verifying first that it
// exists.
func (s *Server) OpenDB(ctx context.Context, name string) (*Database, error) {
	db := s.DB(name)
	if err := db.Check(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// DBExists reports whether the named database exists.
func (s *Server) DBExists(ctx context.Context, name string) (bool, error) {
	return s.DB(name).Exists(ctx)
}

// CreateDBOptions control sharding of a newly created database.
type CreateDBOptions struct {
	// Replicas is the number of replicas. The server default is 3.
	Replicas int
	// Shards is the number of shards. The server default is 8.
	Shards int
	// Partitioned creates a partitioned database.
	Partitioned bool
}

// CreateDB creates the named database and returns a handle for it. An
// AlreadyExists error is returned if it exists.
func (s *Server) CreateDB(ctx context.Context, name string, opts *CreateDBOptions) (*Database, error) {
	db := s.DB(name)
	if err := db.Create(ctx, opts); err != nil {
		return nil, err
	}
	return db, nil
}

// Config returns the configuration of the named node. An empty nodename
// selects the node handling the request.
func (s *Server) Config(ctx context.Context, nodename string) (Document, error) {
	if nodename == "" {
		nodename = "_local"
	}
	var conf Document
	err := s.ch.DoJSON(ctx, http.MethodGet, "/_node/"+url.PathEscape(nodename)+"/_config", nil, &conf)
	return conf, err
}

// NodeStats returns statistics for the named node.
func (s *Server) NodeStats(ctx context.Context, nodename string) (Document, error) {
	if nodename == "" {
		nodename = "_local"
	}
	var stats Document
	err := s.ch.DoJSON(ctx, http.MethodGet, "/_node/"+url.PathEscape(nodename)+"/_stats", nil, &stats)
	return stats, err
}

// NodeSystem returns system-level statistics for the named node.
func (s *Server) NodeSystem(ctx context.Context, nodename string) (Document, error) {
	if nodename == "" {
		nodename = "_local"
	}
	var stats Document
	err := s.ch.DoJSON(ctx, http.MethodGet, "/_node/"+url.PathEscape(nodename)+"/_system", nil, &stats)
	return stats, err
}
