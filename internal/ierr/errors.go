package ierr

import "errors"

var (
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrInternalServer = errors.New("internal server error")

	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenNoClaims      = errors.New("token contains no claims")

	ErrSecretKeyNotFound = errors.New("secret key not found")

	// ErrCommerceUnavailable means the commerce backend is disabled on this
	// installation. It is a configuration state, not a transient fault.
	ErrCommerceUnavailable = errors.New("commerce backend unavailable")
)
