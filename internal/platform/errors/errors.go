// Package errors is triggerbot's coded error type
// Import it as perr; the std package is stderrs where both are needed
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for callers and the ops API
type ErrorCode uint16

// Codes travel in API replies; only append
const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable
	ErrorCodeConflict
	ErrorCodeUnauthorized
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB

	// ErrorCodeTransportFatal means the chat session is gone and nothing more
	// in the current dispatch can be delivered
	ErrorCodeTransportFatal

	// ErrorCodeMediaFetch covers bad status, timeout or an empty body while fetching media
	ErrorCodeMediaFetch
)

var statuses = map[ErrorCode]int{
	ErrorCodeNotFound:        http.StatusNotFound,
	ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
	ErrorCodeDuplicateKey:    http.StatusConflict,
	ErrorCodeConflict:        http.StatusConflict,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeJSON:            http.StatusBadRequest,
	ErrorCodeUnauthorized:    http.StatusUnauthorized,
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
	ErrorCodeTransportFatal:  http.StatusServiceUnavailable,
	ErrorCodeMediaFetch:      http.StatusBadGateway,
}

// HTTPStatusCode maps c to a status; unmapped codes are 500
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := statuses[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ErrNotFound is the shared not found sentinel
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error is a message with a code, an optional cause and optional field and op tags
type Error struct {
	cause error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is how an error is rendered in API replies
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.cause == nil:
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error   { return e.cause }
func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Field() string   { return e.field }
func (e *Error) Op() string      { return e.op }

// ToWire drops the cause; causes can carry SQL or socket detail
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// Root follows Unwrap to the innermost cause
func Root(err error) error {
	for {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
}

// CodeOf is the outermost code, Unknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode compares the outermost code only
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// IsTransportFatal looks through the whole chain, foreign wrappers included
func IsTransportFatal(err error) bool {
	for ; err != nil; err = stderrs.Unwrap(err) {
		if e, ok := err.(*Error); ok && e.code == ErrorCodeTransportFatal {
			return true
		}
	}
	return false
}

// WithField returns a copy of err tagged with the offending field; foreign errors pass through
func WithField(err error, field string) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	c.field = field
	return &c
}

// WithOp returns a copy of err tagged with op; foreign errors pass through
func WithOp(err error, op string) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	c.op = op
	return &c
}

// New makes an *Error
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf makes an *Error with a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap makes an *Error around cause
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{cause: cause, code: code, msg: msg}
}

// Wrapf is Wrap with a formatted message
func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return Wrap(cause, code, fmt.Sprintf(format, a...))
}

func ctor(code ErrorCode) func(string, ...any) error {
	return func(format string, a ...any) error { return Newf(code, format, a...) }
}

// Shorthands for Newf with a fixed code
var (
	NotFoundf       = ctor(ErrorCodeNotFound)
	InvalidArgf     = ctor(ErrorCodeInvalidArgument)
	Validationf     = ctor(ErrorCodeValidation)
	DBf             = ctor(ErrorCodeDB)
	JSONErrf        = ctor(ErrorCodeJSON)
	PanicErrf       = ctor(ErrorCodePanic)
	Unauthorizedf   = ctor(ErrorCodeUnauthorized)
	Unavailablef    = ctor(ErrorCodeUnavailable)
	TransportFatalf = ctor(ErrorCodeTransportFatal)
	MediaFetchf     = ctor(ErrorCodeMediaFetch)
)

// WireFrom renders any error for an API reply
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// HTTPStatus is the reply status for err
func HTTPStatus(err error) int {
	if e, ok := As(err); ok {
		return HTTPStatusCode(e.code)
	}
	return http.StatusInternalServerError
}

// HTTP returns the status and wire body together; nil is 200 with an empty body
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}
