package domain

import "errors"

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a duplicate unique key.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an operation on a nonexistent identifier.
	ErrNotFound = errors.New("not found")
)

// Error carries a user facing message and unwraps to one of the sentinels above.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func Validation(msg string) error { return &Error{kind: ErrValidation, msg: msg} }

func Conflict(msg string) error { return &Error{kind: ErrConflict, msg: msg} }

func NotFound(msg string) error { return &Error{kind: ErrNotFound, msg: msg} }
