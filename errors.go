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

import "github.com/go-couchdb2/couchdb2/chttp"

// IsNotFound reports whether err is a NotFound error: the requested database,
// document, or attachment does not exist.
func IsNotFound(err error) bool {
	return chttp.KindOf(err) == chttp.KindNotFound
}

// IsConflict reports whether err is a revision conflict: the supplied
// revision is missing or not current.
func IsConflict(err error) bool {
	return chttp.KindOf(err) == chttp.KindConflict
}

// IsUnauthorized reports whether err is an authorization failure.
func IsUnauthorized(err error) bool {
	return chttp.KindOf(err) == chttp.KindAuthorization
}

// IsAlreadyExists reports whether err reports a failed precondition, such as
// creating a database that already exists.
func IsAlreadyExists(err error) bool {
	return chttp.KindOf(err) == chttp.KindAlreadyExists
}

// IsBadRequest reports whether err reports a malformed request.
func IsBadRequest(err error) bool {
	return chttp.KindOf(err) == chttp.KindBadRequest
}

// IsBadContentType reports whether err reports an unsupported content type.
func IsBadContentType(err error) bool {
	return chttp.KindOf(err) == chttp.KindBadContentType
}

// IsServerError reports whether err reports an internal server failure.
func IsServerError(err error) bool {
	return chttp.KindOf(err) == chttp.KindServerError
}
