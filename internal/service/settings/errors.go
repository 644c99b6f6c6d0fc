package settings

import "errors"

// Sentinel errors for the settings service layer.
var (
	ErrInvalidEncryption = errors.New("encryption must be one of tls, ssl, none")
	ErrInvalidPort       = errors.New("port must be between 1 and 65535")
)
