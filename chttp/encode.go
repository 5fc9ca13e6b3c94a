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
	"net/url"
	"strings"
)

// reservedPrefixes are document id namespaces whose prefix must survive
// encoding as a literal path segment.
var reservedPrefixes = []string{"_design/", "_local/"}

// EncodeDocID escapes a document id for use as a URL path segment. The
// "_design/" and "_local/" namespace prefixes are kept literal, and spaces
// become %20 rather than '+', which CouchDB does not decode in paths.
func EncodeDocID(id string) string {
	for _, prefix := range reservedPrefixes {
		if rest, ok := strings.CutPrefix(id, prefix); ok {
			return prefix + escapeIDPart(rest)
		}
	}
	return escapeIDPart(id)
}

func escapeIDPart(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
