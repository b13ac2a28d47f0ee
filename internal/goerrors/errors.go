// Package goerrors defines the error kinds returned by the account core and the
// catalogue of custom errors the HTTP layer renders for them.
package goerrors

import "errors"

var (
	// ErrNotFound is returned when no live record matches the given email, id or key.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a create or update violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials is returned for every failed login, whatever factor was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is the parent of every session token failure.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenMalformed is returned for tokens that are not three base64url segments of valid JSON.
	ErrTokenMalformed = wrapKind(ErrInvalidToken, "token is malformed")

	// ErrTokenInvalidSignature is returned for tampered tokens, foreign secrets and unexpected algorithms.
	ErrTokenInvalidSignature = wrapKind(ErrInvalidToken, "token signature is invalid")

	// ErrTokenExpired is returned when the token carries an exp claim in the past.
	ErrTokenExpired = wrapKind(ErrInvalidToken, "token is expired")

	// ErrUnauthorized is returned when a valid session may not perform the attempted operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidPassword is returned for passwords the hash cannot accept, such as ones longer than 72 bytes.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrPersistence marks failures of the account or authority directory.
	ErrPersistence = errors.New("persistence failure")

	// ErrDependencyFailure marks failures of best-effort collaborators such as the mail sender.
	ErrDependencyFailure = errors.New("dependency failure")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func wrapKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}
