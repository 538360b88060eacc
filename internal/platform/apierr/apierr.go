package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code standardizes failure semantics across the RPC surface.
type Code string

const (
	CodeNotFound   Code = "not_found"
	CodeBadRequest Code = "bad_request"
	CodeConflict   Code = "conflict"
	CodeInternal   Code = "internal"
)

type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s", op, msg)
	case msg != "":
		return msg
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

func NotFound(op, message string) *Error   { return New(CodeNotFound, op, message, nil) }
func BadRequest(op, message string) *Error { return New(CodeBadRequest, op, message, nil) }
func Conflict(op, message string) *Error   { return New(CodeConflict, op, message, nil) }

// Internal wraps a storage or runtime failure; the cause is kept for logs.
func Internal(op string, err error) *Error {
	if err == nil {
		return New(CodeInternal, op, "internal error", nil)
	}
	return New(CodeInternal, op, err.Error(), err)
}

// IsCode reports whether err (or anything it wraps) carries code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code && err != nil
}

// CodeOf extracts the code, defaulting to internal for unclassified errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeInternal
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case "":
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
