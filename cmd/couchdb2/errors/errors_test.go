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

package errors

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/go-couchdb2/couchdb2/chttp"
)

func TestInspectErrorCode(t *testing.T) {
	type tt struct {
		err      error
		expected int
	}

	tests := map[string]tt{
		"nil": {
			err:      nil,
			expected: 0,
		},
		"plain error": {
			err:      New("boom"),
			expected: 0,
		},
		"coded error": {
			err:      WithCode(New("boom"), ErrCantCreate),
			expected: ErrCantCreate,
		},
		"wrapped coded error": {
			err:      fmt.Errorf("opening archive: %w", WithCode(New("boom"), ErrNoInput)),
			expected: ErrNoInput,
		},
		"code overrides kind": {
			err:      WithCode(&chttp.HTTPError{Kind: chttp.KindNotFound, Status: http.StatusNotFound}, ErrIO),
			expected: ErrIO,
		},
		"network error": {
			err:      &net.OpError{Op: "dial", Err: New("connection refused")},
			expected: ErrUnavailable,
		},
		"json syntax error": {
			err:      &json.SyntaxError{Offset: 1},
			expected: ErrProtocol,
		},
		"not found": {
			err:      &chttp.HTTPError{Kind: chttp.KindNotFound, Status: http.StatusNotFound},
			expected: ErrNotFound,
		},
		"conflict": {
			err:      &chttp.HTTPError{Kind: chttp.KindConflict, Status: http.StatusConflict},
			expected: ErrConflict,
		},
		"unauthorized": {
			err:      &chttp.HTTPError{Kind: chttp.KindAuthorization, Status: http.StatusUnauthorized},
			expected: ErrUnauthorized,
		},
		"bad request": {
			err:      &chttp.HTTPError{Kind: chttp.KindBadRequest, Status: http.StatusBadRequest},
			expected: ErrBadRequest,
		},
		"precondition failed": {
			err:      &chttp.HTTPError{Kind: chttp.KindAlreadyExists, Status: http.StatusPreconditionFailed},
			expected: ErrPreconditionFailed,
		},
		"unsupported media type": {
			err:      &chttp.HTTPError{Kind: chttp.KindBadContentType, Status: http.StatusUnsupportedMediaType},
			expected: ErrUnsupportedMediaType,
		},
		"server error": {
			err:      &chttp.HTTPError{Kind: chttp.KindServerError, Status: http.StatusInternalServerError},
			expected: ErrInternalServerError,
		},
		"transport": {
			err:      &chttp.HTTPError{Kind: chttp.KindTransport},
			expected: ErrUnavailable,
		},
		"wrapped http error": {
			err:      fmt.Errorf("fetching document: %w", &chttp.HTTPError{Kind: chttp.KindNotFound, Status: http.StatusNotFound}),
			expected: ErrNotFound,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if code := InspectErrorCode(tt.err); code != tt.expected {
				t.Errorf("Unexpected code: %d", code)
			}
		})
	}
}

func TestCode(t *testing.T) {
	if err := Code(ErrIO, nil); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
	err := Code(ErrIO, New("boom"))
	if err.Error() != "boom" {
		t.Errorf("Unexpected message: %s", err)
	}
	if code := InspectErrorCode(err); code != ErrIO {
		t.Errorf("Unexpected code: %d", code)
	}
	err = Code(ErrUsage, "unexpected ", "arguments")
	if err.Error() != "unexpected arguments" {
		t.Errorf("Unexpected message: %s", err)
	}
}

func TestCodef(t *testing.T) {
	err := Codef(ErrUsage, "unknown command %q", "frobnicate")
	if err.Error() != `unknown command "frobnicate"` {
		t.Errorf("Unexpected message: %s", err)
	}
	if code := InspectErrorCode(err); code != ErrUsage {
		t.Errorf("Unexpected code: %d", code)
	}
}
