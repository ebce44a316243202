package auth

import "errors"

// The credential error taxonomy. Handlers match these with errors.Is and
// map them to transport status codes; anything else wrapping out of the
// service is an infrastructure failure.
var (
	// ErrDuplicateAccount: registration email already in use.
	ErrDuplicateAccount = errors.New("email already exists")

	// ErrInvalidCredentials deliberately conflates "no such account" and
	// "wrong password" so login responses cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotVerified: login blocked until the address is verified.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrAccountNotFound: an id or email with no backing record.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidOrExpiredToken: a verification or reset token that is
	// absent, already consumed, or past its expiry. Expired and unknown
	// tokens are indistinguishable on purpose.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

// Session-token verification errors (RequireAuth middleware).
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
