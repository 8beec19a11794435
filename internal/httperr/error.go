// Package httperr implements the terminal error-handling stage of the HTTP
// pipeline: it decides the status code for an arbitrary caught error,
// negotiates the response representation from the client's Accept header,
// renders the body, and optionally routes full diagnostic detail to a log
// sink.
//
// This file centralizes the error taxonomy consumed by the handler:
//   - any plain error is "unclassified" and maps to HTTP 500;
//   - errors implementing StatusCoder carry their own HTTP status;
//   - MethodNotAllowedError additionally carries the set of allowed methods,
//     surfaced to the client via the Allow response header.
//
// Callers discover capabilities through AsStatusCoder / AsMethodNotAllowed
// (errors.As under the hood) rather than type-switching on concrete types,
// so wrapped errors keep their HTTP semantics.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusCoder is the capability an error implements to control the HTTP
// status code of its response. Errors without it are rendered as 500.
type StatusCoder interface {
	error
	StatusCode() int
}

// HTTPError is the standard HTTP-aware error value. It carries an explicit
// status code, a human-readable message, and an optional wrapped cause.
//
// The zero Message falls back to http.StatusText(Code) when rendered.
type HTTPError struct {
	Code    int
	Message string
	err     error
}

// NewHTTPError constructs an HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// StatusCode returns the HTTP status code carried by the error.
func (he *HTTPError) StatusCode() int { return he.Code }

// Error implements the error interface.
func (he *HTTPError) Error() string {
	msg := he.Message
	if msg == "" {
		msg = http.StatusText(he.Code)
	}
	if he.err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, he.err)
}

// Wrap returns a copy of the error with cause attached (retrievable via
// errors.Unwrap / errors.Is).
func (he *HTTPError) Wrap(cause error) *HTTPError {
	return &HTTPError{Code: he.Code, Message: he.Message, err: cause}
}

// Unwrap exposes the wrapped cause to the errors package.
func (he *HTTPError) Unwrap() error { return he.err }

// MethodNotAllowedError is the 405 specialization: beyond the status code it
// records which methods the matched route does accept, so the handler can set
// the Allow header.
type MethodNotAllowedError struct {
	HTTPError
	Methods []string
}

// NewMethodNotAllowed constructs a MethodNotAllowedError for the given set of
// permitted methods.
func NewMethodNotAllowed(methods ...string) *MethodNotAllowedError {
	return &MethodNotAllowedError{
		HTTPError: HTTPError{Code: http.StatusMethodNotAllowed},
		Methods:   methods,
	}
}

// AllowedMethods returns the permitted methods as a comma-joined list,
// suitable for the Allow header verbatim.
func (e *MethodNotAllowedError) AllowedMethods() string {
	return strings.Join(e.Methods, ", ")
}

// AsStatusCoder reports whether err (or anything in its chain) carries an
// explicit HTTP status code.
func AsStatusCoder(err error) (StatusCoder, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc, true
	}
	return nil, false
}

// AsMethodNotAllowed reports whether err (or anything in its chain) is the
// method-not-allowed variant.
func AsMethodNotAllowed(err error) (*MethodNotAllowedError, bool) {
	var mna *MethodNotAllowedError
	if errors.As(err, &mna) {
		return mna, true
	}
	return nil, false
}
