// Package apperr holds the sentinel errors shared by services and handlers.
// Callers wrap them with fmt.Errorf("%w: ...") and match with errors.Is.
package apperr

import "errors"

var (
	// client faults, never retried
	ErrValidation    = errors.New("validation error")
	ErrAlreadyExists = errors.New("already exist")

	// absent or not visible to the caller
	ErrNotFound = errors.New("not found")

	ErrUnauthorized = errors.New("unauthorized")

	// blob I/O failure, distinct from ErrNotFound
	ErrStorage = errors.New("storage error")

	// thumbnail generation failure
	ErrPipeline = errors.New("pipeline error")
)

// Error is a sentinel with a client-facing message. Error() returns only the
// message so handlers can show it as is; errors.Is still matches the sentinel.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Validation(msg string) error   { return New(ErrValidation, msg) }
func NotFound(msg string) error     { return New(ErrNotFound, msg) }
func Unauthorized(msg string) error { return New(ErrUnauthorized, msg) }
