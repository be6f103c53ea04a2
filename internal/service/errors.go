package service

import "errors"

// Errors returned by the services. Handlers map them to HTTP status codes;
// anything else is an internal failure.
var (
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
)

// InputError describes a rejected request field. It matches ErrInvalidInput
// under errors.Is and carries a message fit for the client.
type InputError struct{ Msg string }

func (e *InputError) Error() string { return e.Msg }

// Is reports whether target is ErrInvalidInput.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(msg string) error { return &InputError{Msg: msg} }

// ConflictError names the unique field that is already taken. It matches
// ErrConflict under errors.Is.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func conflict(msg string) error { return &ConflictError{Msg: msg} }

// notFound returns an ErrNotFound wrapping that names the entity kind.
type notFoundError struct{ kind string }

func (e notFoundError) Error() string        { return e.kind + " not found" }
func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(kind string) error { return notFoundError{kind: kind} }
