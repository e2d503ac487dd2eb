package application

import "errors"

var (
	ErrValidation         = errors.New("missing required fields")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrServerConfig       = errors.New("server configuration error")
	ErrUserNotFound       = errors.New("user not found")

	ErrUpstream          = errors.New("fraud data unavailable")
	ErrExportUnavailable = errors.New("report export is not configured")
)
