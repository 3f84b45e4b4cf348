// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across service/client layers.
var (
	// ErrValidation indicates an empty or malformed required field.
	// Reported before any storage call is made.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyExists indicates a signup collision (username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials covers both "no such user" and "wrong password".
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSelfChat indicates an attempt to start a conversation with oneself.
	ErrSelfChat = errors.New("cannot chat with yourself")

	// ErrNotLoggedIn indicates an operation that requires an active session.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNoSelection indicates a send with no conversation selected.
	ErrNoSelection = errors.New("no conversation selected")
)
