package store

import "errors"

var (
	// ErrInvalid indicates a required input was missing or empty.
	ErrInvalid = errors.New("invalid input")
	// ErrConflict indicates the attempted write would duplicate an existing
	// username or friendship.
	ErrConflict = errors.New("record conflict")
	// ErrNotFound indicates the referenced user or conversation does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUnauthorized indicates the supplied credentials did not match.
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrCorrupt indicates a collection file exists but holds unreadable data.
	ErrCorrupt = errors.New("collection file corrupt")
)
