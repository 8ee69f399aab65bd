// Package apierr is the API's error vocabulary. Every failure that leaves a
// handler carries a stable machine-readable code, an HTTP status, and a
// message safe to show the caller; wrapped causes stay server-side.
package apierr

import "fmt"

// Error is one entry of that vocabulary. The zero value is not valid; use
// New or Wrap.
type Error struct {
	code    Code
	status  int
	message string
	cause   error
}

// New creates an Error with no underlying cause.
func New(code Code, status int, message string) *Error {
	return &Error{code: code, status: status, message: message}
}

// Wrap attaches a cause. The cause shows up in logs and errors.Is/As
// chains, never in the response body.
func Wrap(code Code, status int, message string, cause error) *Error {
	e := New(code, status, message)
	e.cause = cause
	return e
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
	return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches by code, so errors.Is(err, RunNotFound()) holds for any
// instance carrying that code regardless of cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == e.code
}

// Code returns the machine-readable error code.
func (e *Error) Code() Code { return e.code }

// Message returns the caller-facing message.
func (e *Error) Message() string { return e.message }

// Status returns the HTTP status code.
func (e *Error) Status() int { return e.status }

// ErrorResponse is the wire format written as JSON to the client.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the inner object of ErrorResponse.
type ErrorBody struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Response returns the wire-format representation of this error.
func (e *Error) Response() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: e.code, Message: e.message}}
}
