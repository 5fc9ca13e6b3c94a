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
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-couchdb2/couchdb2/chttp"
)

func TestErrorPredicates(t *testing.T) {
	type tt struct {
		err   error
		check func(error) bool
		want  bool
	}

	httpErr := func(kind chttp.Kind, status int) error {
		return &chttp.HTTPError{Kind: kind, Status: status}
	}

	tests := map[string]tt{
		"not found": {
			err:   httpErr(chttp.KindNotFound, http.StatusNotFound),
			check: IsNotFound,
			want:  true,
		},
		"conflict": {
			err:   httpErr(chttp.KindConflict, http.StatusConflict),
			check: IsConflict,
			want:  true,
		},
		"unauthorized": {
			err:   httpErr(chttp.KindAuthorization, http.StatusUnauthorized),
			check: IsUnauthorized,
			want:  true,
		},
		"already exists": {
			err:   httpErr(chttp.KindAlreadyExists, http.StatusPreconditionFailed),
			check: IsAlreadyExists,
			want:  true,
		},
		"bad request": {
			err:   httpErr(chttp.KindBadRequest, http.StatusBadRequest),
			check: IsBadRequest,
			want:  true,
		},
		"bad content type": {
			err:   httpErr(chttp.KindBadContentType, http.StatusUnsupportedMediaType),
			check: IsBadContentType,
			want:  true,
		},
		"server error": {
			err:   httpErr(chttp.KindServerError, http.StatusInternalServerError),
			check: IsServerError,
			want:  true,
		},
		"wrapped": {
			err:   fmt.Errorf("fetching document: %w", httpErr(chttp.KindNotFound, http.StatusNotFound)),
			check: IsNotFound,
			want:  true,
		},
		"kind mismatch": {
			err:   httpErr(chttp.KindConflict, http.StatusConflict),
			check: IsNotFound,
			want:  false,
		},
		"plain error": {
			err:   errors.New("boom"),
			check: IsNotFound,
			want:  false,
		},
		"nil": {
			err:   nil,
			check: IsNotFound,
			want:  false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("Unexpected result: %t", got)
			}
		})
	}
}
