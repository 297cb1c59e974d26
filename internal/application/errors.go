package application

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrDuplicateEmail   = errors.New("email already registered")
	ErrAccountSuspended = errors.New("account suspended")
	ErrAccountRejected  = errors.New("account rejected")
	ErrUserNotFound     = errors.New("user not found")

	// ErrInvalidToken is returned for malformed, mismatched, reused, or
	// registry-absent tokens.
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")

	// ErrForbiddenRole is returned when an onboarding call does not match
	// the caller's role.
	ErrForbiddenRole = errors.New("operation not allowed for this role")

	// ErrInvalidStep is returned for step numbers outside the role's range.
	ErrInvalidStep = errors.New("invalid onboarding step")

	// ErrIncompleteProfile is returned by explicit onboarding completion
	// when required fields are missing.
	ErrIncompleteProfile = errors.New("profile incomplete")
)
