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

// Package errors assigns exit status codes to errors.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/go-couchdb2/couchdb2/chttp"
)

// Exit status codes
//
// See https://man.openbsd.org/sysexits.3
const (
	// ErrUsage indicates an incorrect command, option, or unparseable
	// configuration or command line options.
	ErrUsage = 2
	// ErrUnknown indicates a failure that fits no other category.
	ErrUnknown = 3
	// ErrInternalServerError indicates that the server responded with a 500
	// error.
	ErrInternalServerError = 4

	// ErrBadRequest indicates that the server responded with a 400 error.
	ErrBadRequest = 10
	// ErrUnauthorized indicates that the server rejected the credentials.
	ErrUnauthorized = 11
	// ErrNotFound indicates that the requested database, document, or
	// attachment does not exist.
	ErrNotFound = 14
	// ErrConflict indicates a document revision conflict.
	ErrConflict = 19
	// ErrPreconditionFailed indicates a failed precondition, such as creating
	// a database that already exists.
	ErrPreconditionFailed = 22
	// ErrUnsupportedMediaType indicates that the server rejected the request
	// content type.
	ErrUnsupportedMediaType = 25

	// ErrData indicates an input file is invalid, such as malformed JSON or
	// YAML.
	ErrData = 65
	// ErrNoInput indicates that an input file does not exist or cannot be read.
	ErrNoInput = 66
	// ErrUnavailable indicates that the server could not be reached, such as
	// a connection refused.
	ErrUnavailable = 69
	// ErrCantCreate indicates that an output file cannot be created.
	ErrCantCreate = 73
	// ErrIO indicates an I/O error while reading from or writing to a file or
	// the network.
	ErrIO = 74
	// ErrProtocol indicates a protocol error, such as a server returning a
	// non-JSON response.
	ErrProtocol = 76
)

type statusErr struct {
	error
	code int
}

func (e *statusErr) Error() string {
	return e.error.Error()
}

func (e *statusErr) Unwrap() error {
	return e.error
}

func (e *statusErr) ExitStatus() int {
	return e.code
}

// WithCode wraps err with an exit status code.
func WithCode(err error, code int) error {
	return &statusErr{
		error: err,
		code:  code,
	}
}

// New calls errors.New.
func New(text string) error {
	return errors.New(text)
}

// InspectErrorCode returns the exit status code carried by or implied by err,
// or 0 when err is nil or carries no code.
func InspectErrorCode(err error) int {
	if err == nil {
		return 0
	}
	exitErr := new(statusErr)
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrUnavailable
	}
	jsonSyntax := new(json.SyntaxError)
	if errors.As(err, &jsonSyntax) {
		return ErrProtocol
	}
	var httpErr *chttp.HTTPError
	if errors.As(err, &httpErr) {
		return fromKind(httpErr.Kind)
	}
	return 0
}

func fromKind(kind chttp.Kind) int {
	switch kind {
	case chttp.KindBadRequest:
		return ErrBadRequest
	case chttp.KindAuthorization:
		return ErrUnauthorized
	case chttp.KindNotFound:
		return ErrNotFound
	case chttp.KindConflict:
		return ErrConflict
	case chttp.KindAlreadyExists:
		return ErrPreconditionFailed
	case chttp.KindBadContentType:
		return ErrUnsupportedMediaType
	case chttp.KindServerError:
		return ErrInternalServerError
	case chttp.KindTransport:
		return ErrUnavailable
	}
	return ErrUnknown
}

// Code returns a new error with an error code. If err is an existing error, it
// is wrapped with the error code. All other values are passed to fmt.Sprint.
//
// If err is a single nil value, nil is returned.
func Code(code int, err ...interface{}) error {
	if len(err) == 1 {
		if err[0] == nil {
			return nil
		}
		if e, ok := err[0].(error); ok {
			return &statusErr{
				error: e,
				code:  code,
			}
		}
	}
	return &statusErr{
		error: errors.New(fmt.Sprint(err...)),
		code:  code,
	}
}

// Codef wraps the output of fmt.Errorf with a code.
func Codef(code int, format string, args ...interface{}) error {
	return &statusErr{
		error: fmt.Errorf(format, args...),
		code:  code,
	}
}

// As calls errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is calls errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
