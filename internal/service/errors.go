package service

import (
	"errors"
	"fmt"

	"github.com/sefazor/ourphotos-albums/internal/repository"
)

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUpstream    = errors.New("upstream failure")
	ErrPersistence = errors.New("persistence failure")
)

// Error carries a client-facing message, its kind and an optional cause.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func newError(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind error, cause error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// storeError classifies a repository failure for the resource named what.
func storeError(err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return wrapError(ErrNotFound, err, "%s not found", what)
	case errors.Is(err, repository.ErrAlreadyExists):
		return wrapError(ErrConflict, err, "%s already exists", what)
	default:
		return wrapError(ErrPersistence, err, "failed to access %s: %v", what, err)
	}
}
