// Package apperrors defines the error taxonomy shared by services, guards and
// HTTP handlers. Services return (wrapped) sentinel errors; handlers translate
// them to HTTP statuses with StatusCode.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials covers a failed login. Callers must map it to the
	// same status regardless of whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict is returned when a unique field (email, username) is taken.
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized covers missing/expired/malformed/mismatched tokens,
	// insufficient role and a wrong current password.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument is a semantically invalid request, e.g. an empty
	// lookup criteria or a new password equal to the current one.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrServiceUnavailable is a downstream store or mail failure.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// StatusCode maps a taxonomy error to its HTTP status. Unknown errors map to
// 500 so driver details never leak into a response.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
