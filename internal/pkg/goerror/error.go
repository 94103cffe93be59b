package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels returned by repository layers. Usecases translate them into
// business errors with user-facing messages.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a uniqueness or state conflict.
	ErrConflict = errors.New("resource conflict")
)

// Type is the high-level bucket an error belongs to.
type Type int

const (
	// TypeServer is an infrastructure or programming failure.
	TypeServer Type = iota
	// TypeBusiness is a domain rule violation.
	TypeBusiness
	// TypeValidation is a malformed or invalid request.
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	default:
		return "ERROR_TYPE_SERVER"
	}
}

// Code is a stable identifier mapped onto HTTP status codes at the edge.
type Code int

const (
	// CodeInternal is an internal or unspecified failure.
	CodeInternal Code = iota
	// CodeInvalidFormat is an unparseable request body.
	CodeInvalidFormat
	// CodeInvalidInput is a well-formed body that fails validation.
	CodeInvalidInput
	// CodeNotFound is a missing resource.
	CodeNotFound
	// CodeConflict is a duplicate or state conflict.
	CodeConflict
	// CodeUnauthorized is an authentication failure.
	CodeUnauthorized
	// CodeForbidden is an authorization failure.
	CodeForbidden
)

func (c Code) String() string {
	switch c {
	case CodeInvalidFormat:
		return "ERROR_CODE_INVALID_FORMAT"
	case CodeInvalidInput:
		return "ERROR_CODE_INVALID_INPUT"
	case CodeNotFound:
		return "ERROR_CODE_NOT_FOUND"
	case CodeConflict:
		return "ERROR_CODE_CONFLICT"
	case CodeUnauthorized:
		return "ERROR_CODE_UNAUTHORIZED"
	case CodeForbidden:
		return "ERROR_CODE_FORBIDDEN"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Error carries a user-facing message, a type, a code, and optionally the
// underlying cause plus per-field validation messages.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.msg != "" {
		return e.msg
	}
	return e.errType.String()
}

// String is a verbose form for logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

// Msg returns the user-facing message.
func (e *Error) Msg() string { return e.msg }

// Type returns the high-level error type.
func (e *Error) Type() Type { return e.errType }

// Code returns the stable error code.
func (e *Error) Code() Code { return e.code }

// Fields returns per-field validation messages, if any.
func (e *Error) Fields() map[string]string { return e.fields }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	switch e.code {
	case CodeInvalidFormat:
		return http.StatusBadRequest
	case CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// NewServer wraps an infrastructure failure. The client only ever sees a
// generic message; the cause stays in the logs.
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", errType: TypeServer, code: CodeInternal}
}

// NewBusiness creates a domain-rule error with a user-facing message.
func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, errType: TypeBusiness, code: code}
}

// NewInvalidInput creates a validation error. When err is nil, kv pairs become
// per-field messages (field1, msg1, field2, msg2, ...).
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return &Error{err: err, msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}
	}
	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	return &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: fields}
}

// NewInvalidFormat creates an error for an unparseable request body.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return &Error{msg: msg, errType: TypeValidation, code: CodeInvalidFormat}
}
