package campaign

import "errors"

// Sentinel errors for the campaign service layer.
var (
	ErrNoRecipients     = errors.New("campaign has no recipients")
	ErrTemplateNotFound = errors.New("campaign template not found")
	ErrAlreadyRunning   = errors.New("a campaign run is already in progress")
	ErrNotRunning       = errors.New("no campaign run in progress")

	// ErrSMTPTimeout is the simulated transport failure.
	ErrSMTPTimeout = errors.New("SMTP Timeout")
)
