package service

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"restaurant-pos/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Error is a failure with a status code and a message that is safe to show
// to the caller. Err keeps the underlying cause for logs.
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func notFound(msg string) *Error     { return &Error{Code: http.StatusNotFound, Message: msg} }
func conflict(msg string) *Error     { return &Error{Code: http.StatusConflict, Message: msg} }
func badRequest(msg string) *Error   { return &Error{Code: http.StatusBadRequest, Message: msg} }
func unauthorized(msg string) *Error { return &Error{Code: http.StatusUnauthorized, Message: msg} }

func internalError(msg string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: msg, Err: err}
}

// lookupError turns a missing row into a NotFound with msg and leaves any
// other error untouched.
func lookupError(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(msg)
	}
	return err
}

// fail passes service errors through and logs anything else as an internal
// error carrying msg.
func fail(err error, msg string) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	logger.Error().Err(err).Msg(msg)
	return internalError(msg, err)
}
