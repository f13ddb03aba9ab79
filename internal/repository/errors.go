package repository

import "errors"

var (
	// ErrNotFound indicates an entity was not located or is not visible to the caller.
	ErrNotFound = errors.New("repository: not found")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)
