// Package apierr defines the single structured error type that flows from the
// service layer to the HTTP boundary, carrying the status code it should be
// rendered with.
package apierr

import (
	"errors"
	"net/http"
)

type Error struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errs       []string `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func New(statusCode int, message string, errs ...string) *Error {
	return &Error{StatusCode: statusCode, Message: message, Errs: errs}
}

func BadRequest(message string, errs ...string) *Error {
	return New(http.StatusBadRequest, message, errs...)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// From extracts the *Error from err's chain. Unrecognized errors map to a
// generic 500 so internals never leak into a response; ok reports whether the
// error was one of ours.
func From(err error) (apiErr *Error, ok bool) {
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return Internal("Internal Server Error"), false
}
