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

	"github.com/go-couchdb2/couchdb2/chttp"
)

// ReplicateOptions are optional parameters to Replicate.
type ReplicateOptions struct {
	// Continuous makes the replication continuous instead of one-shot.
	Continuous bool
	// CreateTarget creates the target database if it does not exist.
	CreateTarget bool
	// Filter names a filter function, "ddoc/filtername", to apply.
	Filter string
	// DocIDs limits the replication to the named documents.
	DocIDs []string
}

// ReplicationResult is the server's response to a one-shot replication
// request.
type ReplicationResult struct {
	OK                   bool       `json:"ok"`
	SessionID            string     `json:"session_id"`
	SourceLastSeq        string     `json:"source_last_seq"`
	ReplicationIDVersion int        `json:"replication_id_version"`
	History              []Document `json:"history"`
}

// Replicate requests replication from the source to the target. Each may be a
// local database name or a remote database URL, with credentials embedded if
// required.
func (s *Server) Replicate(ctx context.Context, source, target string, opts *ReplicateOptions) (*ReplicationResult, error) {
	body := map[string]interface{}{
		"source": source,
		"target": target,
	}
	if opts != nil {
		if opts.Continuous {
			body["continuous"] = true
		}
		if opts.CreateTarget {
			body["create_target"] = true
		}
		if opts.Filter != "" {
			body["filter"] = opts.Filter
		}
		if len(opts.DocIDs) > 0 {
			body["doc_ids"] = opts.DocIDs
		}
	}
	result := new(ReplicationResult)
	err := s.ch.DoJSON(ctx, http.MethodPost, "/_replicate", &chttp.Options{JSON: body}, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SchedulerJobs returns the replication jobs currently run by the scheduler.
func (s *Server) SchedulerJobs(ctx context.Context) (Document, error) {
	var result Document
	err := s.ch.DoJSON(ctx, http.MethodGet, "/_scheduler/jobs", nil, &result)
	return result, err
}

// SchedulerDocs returns the replication documents known to the scheduler.
func (s *Server) SchedulerDocs(ctx context.Context) (Document, error) {
	var result Document
	err := s.ch.DoJSON(ctx, http.MethodGet, "/_scheduler/docs", nil, &result)
	return result, err
}
