package contact

import "errors"

// Sentinel errors for the contact service layer.
var (
	ErrInvalidEmail = errors.New("contact email is required")
	ErrNotFound     = errors.New("contact not found")
)
