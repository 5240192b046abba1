package workerapi

import (
	"errors"
	"fmt"
)

// Kind classifies a failed worker API call.
type Kind int

const (
	// KindUnknown is the zero value and never set by this package.
	KindUnknown Kind = iota
	// KindTransport covers connection refused/reset, DNS failures and
	// timeouts. The request may never have reached the worker.
	KindTransport
	// KindStatus is a response with a non-2xx HTTP status.
	KindStatus
	// KindParse is a response body that does not decode as the
	// expected shape.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the uniform error returned by every client operation.
type Error struct {
	Kind       Kind
	Op         string // operation that failed, e.g. "GET /api/dashboard"
	StatusCode int    // set for KindStatus only
	Cause      error  // set for KindTransport and KindParse
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: worker API status %d", e.Op, e.StatusCode)
	case KindParse:
		return fmt.Sprintf("%s: parse worker response: %v", e.Op, e.Cause)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the Kind of err, or KindUnknown if err was not
// produced by this package.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

func newTransportError(op string, cause error) *Error {
	return &Error{Kind: KindTransport, Op: op, Cause: cause}
}

func newStatusError(op string, code int) *Error {
	return &Error{Kind: KindStatus, Op: op, StatusCode: code}
}

func newParseError(op string, cause error) *Error {
	return &Error{Kind: KindParse, Op: op, Cause: cause}
}
