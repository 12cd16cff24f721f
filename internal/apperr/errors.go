// Package apperr defines the error kinds surfaced by the task services.
//
// Every error returned by a service wraps exactly one of the sentinel kinds,
// so callers match with errors.Is and still get a message naming the
// entity or constraint involved.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// Error carries a kind and a human readable detail.
type Error struct {
	kind error
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return target == e.kind
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

func newf(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced entity that does not exist.
func NotFound(format string, args ...any) error {
	return newf(ErrNotFound, format, args...)
}

// Forbidden reports an authenticated user acting outside their rights.
func Forbidden(format string, args ...any) error {
	return newf(ErrForbidden, format, args...)
}

// InvalidArgument reports malformed or constraint-violating input.
func InvalidArgument(format string, args ...any) error {
	return newf(ErrInvalidArgument, format, args...)
}

// Conflict reports a clash with existing state.
func Conflict(format string, args ...any) error {
	return newf(ErrConflict, format, args...)
}

// Internal wraps an unexpected failure.
func Internal(err error, format string, args ...any) error {
	return &Error{kind: ErrInternal, msg: fmt.Sprintf(format, args...), err: err}
}

// FromDB translates a persistence error. Record-not-found becomes NotFound
// and unique violations become Conflict; errors that already carry a kind
// pass through untouched.
func FromDB(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{kind: ErrNotFound, msg: msg}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{kind: ErrConflict, msg: msg}
	default:
		return &Error{kind: ErrInternal, msg: msg, err: err}
	}
}

// Kind returns the sentinel kind of err, or ErrInternal for foreign errors.
func Kind(err error) error {
	for _, k := range []error{ErrNotFound, ErrForbidden, ErrInvalidArgument, ErrConflict, ErrInternal} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// ExitCode maps an error kind to a process exit status.
func ExitCode(err error) int {
	switch Kind(err) {
	case ErrNotFound:
		return 3
	case ErrForbidden:
		return 4
	case ErrInvalidArgument:
		return 2
	case ErrConflict:
		return 5
	default:
		return 1
	}
}
