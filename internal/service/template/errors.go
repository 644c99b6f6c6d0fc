package template

import "errors"

// Sentinel errors for the template service layer.
var (
	ErrNotFound    = errors.New("template not found")
	ErrNameMissing = errors.New("template name is required")
)
