package application

import "errors"

// Outcomes of the authentication flows. Handlers map each one to an inline
// message or an access denial; none of them is an internal fault.
var (
	ErrPasswordMismatch       = errors.New("passwords do not match")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrUpdateFailed           = errors.New("update failed")
)

// ErrInvalidAccountInput is returned by the store when email or password is empty.
var ErrInvalidAccountInput = errors.New("email and password are required")
