// Package apperr carries the application error taxonomy. Every error that can
// cross a service boundary has a five-digit code; handlers map the code onto
// an HTTP status and the standard response envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code blocks. The first three digits are the HTTP status family.
const (
	CodeValidation   = 40001 // bad input or unmet guard condition
	CodeInvalidState = 40003 // entity not in a state that allows the action
	CodeNotFound     = 40404 // referenced entity does not exist
	CodeConflict     = 40901 // write rejected, collection changed since read
	CodeInternal     = 50001
	CodePersistence  = 50002 // persistence primitive read/write failed
	CodeExternalJob  = 50201 // remote agent job reported failure
	CodeTimeout      = 50401 // poll attempt budget exhausted
)

type Error struct {
	Code    int
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus derives the response status from the code's leading digits.
func (e *Error) HTTPStatus() int {
	switch e.Code / 100 {
	case 400:
		return http.StatusBadRequest
	case 404:
		return http.StatusNotFound
	case 409:
		return http.StatusConflict
	case 502:
		return http.StatusBadGateway
	case 504:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func New(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return New(CodeValidation, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return New(CodeInvalidState, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(CodeNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(CodeConflict, format, args...)
}

func Persistence(op string, err error) *Error {
	return &Error{Code: CodePersistence, Message: op, Err: err}
}

func ExternalJob(format string, args ...interface{}) *Error {
	return New(CodeExternalJob, format, args...)
}

func Timeout(format string, args ...interface{}) *Error {
	return New(CodeTimeout, format, args...)
}

// HasCode reports whether err is (or wraps) an *Error with the given code.
func HasCode(err error, code int) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
