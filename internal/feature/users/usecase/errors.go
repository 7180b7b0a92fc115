// Package usecase implements the business logic for the users feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the given id or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when another user already owns the email.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	// ErrPersistence wraps any storage failure that is not one of the above.
	// Callers show a generic message; no distinction between transient and permanent causes.
	ErrPersistence = errors.New("persistence error")
)
