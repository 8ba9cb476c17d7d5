// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"tasktrack/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task number).
	UserError = 1

	// AuthError indicates there is no usable session.
	AuthError = 2

	// BackendError indicates a failed remote operation or network error.
	BackendError = 3

	// Unavailable indicates the backend is not configured.
	Unavailable = 4
)

// For maps an error to its exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrServiceUnavailable):
		return Unavailable
	case errors.Is(err, service.ErrUnauthenticated):
		return AuthError
	default:
		return BackendError
	}
}
