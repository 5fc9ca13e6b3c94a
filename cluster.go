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

// Membership describes the nodes of the cluster.
type Membership struct {
	AllNodes     []string `json:"all_nodes"`
	ClusterNodes []string `json:"cluster_nodes"`
}

// Membership returns the names of the nodes in the cluster, and of all nodes
// this server knows about.
func (s *Server) Membership(ctx context.Context) (*Membership, error) {
	result := new(Membership)
	err := s.ch.DoJSON(ctx, http.MethodGet, "/_membership", nil, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ClusterSetup returns the current state of the cluster setup wizard: one of
// "cluster_disabled", "single_node_disabled", "single_node_enabled",
// "cluster_enabled" or "cluster_finished".
func (s *Server) ClusterSetup(ctx context.Context) (string, error) {
	var result struct {
		State string `json:"state"`
	}
	err := s.ch.DoJSON(ctx, http.MethodGet, "/_cluster_setup", nil, &result)
	return result.State, err
}

// SetClusterSetup performs an action of the cluster setup wizard. The action
// document must carry at least an "action" member, such as "enable_single_node"
// or "finish_cluster".
func (s *Server) SetClusterSetup(ctx context.Context, action Document) error {
	_, err := s.ch.DoError(ctx, http.MethodPost, "/_cluster_setup", &chttp.Options{JSON: action})
	return err
}
