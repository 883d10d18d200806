package types

import "errors"

var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrForbidden       = errors.New("action forbidden")
	ErrNotFound        = errors.New("requested item not found")
	ErrConfiguration   = errors.New("invalid configuration")
)

// ValidationError carries a message that is safe to return to the client.
// It matches ErrBadRequest under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrBadRequest }

// NewValidationError returns a client-facing bad request error.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}
