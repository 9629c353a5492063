package response

import (
	"errors"
	"net/http"
)

// Error is a domain failure that carries the HTTP status it maps to.
type Error struct {
	Code int
	Err  error
}

func NewError(code int, message string) error {
	return &Error{Code: code, Err: errors.New(message)}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Is matches any *Error with the same status and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// Status returns the status carried anywhere in err's chain, or 500.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}
