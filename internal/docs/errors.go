package docs

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// Kind classifies an error into one of the categories the tool layer reports.
type Kind string

const (
	// KindValidation indicates the request was rejected before any API call.
	KindValidation Kind = "validation"
	// KindNotFound indicates the referenced document or file does not exist.
	KindNotFound Kind = "not_found"
	// KindAuth indicates missing, expired, or insufficient credentials.
	KindAuth Kind = "auth"
	// KindTransport covers all other upstream failures: network errors,
	// rate limits, server errors, malformed responses.
	KindTransport Kind = "transport"
)

// Error is a classified failure from a document operation. It wraps the
// underlying cause so errors.As still reaches the googleapi.Error.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "docs.get"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// validationErr builds a KindValidation error for a rejected argument.
func validationErr(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// classifyErr wraps an upstream API failure with the Kind implied by its
// HTTP status. Anything that is not a googleapi.Error is a transport failure.
func classifyErr(op, msg string, err error) *Error {
	kind := KindTransport

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 404:
			kind = KindNotFound
		case 401, 403:
			kind = KindAuth
		}
	}

	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// ErrKind returns the Kind of err, or KindTransport if err carries none.
func ErrKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return ErrKind(err) == KindValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return ErrKind(err) == KindNotFound }

// IsAuth reports whether err is an authentication or authorization error.
func IsAuth(err error) bool { return ErrKind(err) == KindAuth }
