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
	"encoding/json"
	"errors"
	"mime"
	"net/http"
)

// Kind classifies an error response from a CouchDB server.
type Kind int

// The error kinds reported by a CouchDB server, plus KindTransport for
// anything unclassified, including connection failures.
const (
	// KindNone means success; no error.
	KindNone Kind = iota
	// KindBadRequest reflects a malformed request; bad name, body or headers.
	KindBadRequest
	// KindAuthorization means the current user is not authorized to perform
	// the operation.
	KindAuthorization
	// KindNotFound means no such entity exists.
	KindNotFound
	// KindConflict reflects a wrong or missing '_rev' value on a write.
	KindConflict
	// KindAlreadyExists means the entity could not be created because it
	// already exists.
	KindAlreadyExists
	// KindBadContentType reflects a bad 'Content-Type' request header.
	KindBadContentType
	// KindServerError is an internal CouchDB server error.
	KindServerError
	// KindTransport is a generic transport-level error, carrying the HTTP
	// status and reason phrase.
	KindTransport
)

var kindNames = map[Kind]string{
	KindNone:           "none",
	KindBadRequest:     "bad request",
	KindAuthorization:  "authorization",
	KindNotFound:       "not found",
	KindConflict:       "revision conflict",
	KindAlreadyExists:  "already exists",
	KindBadContentType: "bad content type",
	KindServerError:    "internal server error",
	KindTransport:      "transport",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// statusKinds is the static classification table for CouchDB response codes.
var statusKinds = map[int]Kind{
	http.StatusOK:                   KindNone,
	http.StatusCreated:              KindNone,
	http.StatusAccepted:             KindNone,
	http.StatusNotModified:          KindNone,
	http.StatusBadRequest:           KindBadRequest,
	http.StatusUnauthorized:         KindAuthorization,
	http.StatusForbidden:            KindAuthorization,
	http.StatusNotFound:             KindNotFound,
	http.StatusConflict:             KindConflict,
	http.StatusPreconditionFailed:   KindAlreadyExists,
	http.StatusUnsupportedMediaType: KindBadContentType,
	http.StatusInternalServerError:  KindServerError,
}

// ClassifyStatus resolves an HTTP status code to an error kind. The lookup is
// layered: the per-request override table first, then the static table.
// Unmapped codes below 400 are success; anything else is KindTransport.
func ClassifyStatus(status int, override map[int]Kind) Kind {
	if kind, ok := override[status]; ok {
		return kind
	}
	if kind, ok := statusKinds[status]; ok {
		return kind
	}
	if status < 400 {
		return KindNone
	}
	return KindTransport
}

// HTTPError is an error returned for a CouchDB error response, or for a
// failure at the transport level.
type HTTPError struct {
	// Kind is the classification of the error.
	Kind Kind

	// Status is the HTTP status code of the response.
	Status int

	// Reason is the server-supplied error reason, when available.
	Reason string
}

var _ error = (*HTTPError)(nil)

func (e *HTTPError) Error() string {
	if e.Reason == "" {
		return http.StatusText(e.Status)
	}
	if statusText := http.StatusText(e.Status); statusText != "" {
		return statusText + ": " + e.Reason
	}
	return e.Reason
}

// HTTPStatus returns the embedded status code.
func (e *HTTPError) HTTPStatus() int {
	return e.Status
}

// ResponseError returns an error if the response status classifies as one.
// The override table takes precedence over the static classification table,
// so that a caller may treat an otherwise-erroring status as success. When an
// error is returned, the response body is consumed in search of the
// server-supplied reason.
func ResponseError(resp *http.Response, override map[int]Kind) error {
	kind := ClassifyStatus(resp.StatusCode, override)
	if kind == KindNone {
		return nil
	}
	if resp.Body != nil {
		defer CloseBody(resp.Body)
	}
	httpErr := &HTTPError{
		Kind:   kind,
		Status: resp.StatusCode,
	}
	if resp.Request != nil && resp.Request.Method != http.MethodHead && resp.ContentLength != 0 {
		if ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); ct == TypeJSON {
			var body struct {
				Error  string `json:"error"`
				Reason string `json:"reason"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
				httpErr.Reason = body.Reason
			}
		}
	}
	return httpErr
}

// KindOf returns the kind embedded in err, or KindNone if err is nil, or
// KindTransport for an unclassified error.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Kind
	}
	return KindTransport
}

// HTTPStatus returns the HTTP status code embedded in err, or 0 if err
// carries none.
func HTTPStatus(err error) int {
	if err == nil {
		return 0
	}
	var coder interface {
		HTTPStatus() int
	}
	for {
		if c, ok := err.(interface{ HTTPStatus() int }); ok {
			coder = c
			break
		}
		if uw, ok := err.(interface{ Unwrap() error }); ok {
			err = uw.Unwrap()
			if err == nil {
				break
			}
			continue
		}
		break
	}
	if coder == nil {
		return 0
	}
	return coder.HTTPStatus()
}
