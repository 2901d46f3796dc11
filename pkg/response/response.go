package response

import (
	"errors"
	"net/http"
)

type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ClientError reports whether the error should be surfaced to the caller as-is.
func (e *Error) ClientError() bool {
	return e.Code >= http.StatusBadRequest && e.Code < http.StatusInternalServerError
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}
