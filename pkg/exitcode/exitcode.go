package exitcode

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	OK    = 0
	Fatal = 1
)

// Error carries the exit code a failure should terminate the process with.
// Soft failures exit OK so the agent falls back to its own prompt.
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

func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Config reports unusable configuration or credentials.
func Config(err error) *Error {
	return New(Fatal, "invalid configuration", err)
}

// BadRequest reports a request that could not be decoded.
func BadRequest(err error) *Error {
	return New(Fatal, "malformed request", err)
}

// Unavailable reports that Slack could not be reached at startup.
func Unavailable(err error) *Error {
	return New(OK, "slack unavailable", err)
}

// CodeOf returns the exit code for err: OK for nil, the carried code for an
// *Error anywhere in the chain, and Fatal otherwise.
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Fatal
}
