// Package apperr holds the error kinds shared by the services and the HTTP layer.
// Services wrap one of these sentinels with context; handlers classify with errors.Is.
package apperr

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrAlreadyVerified      = errors.New("user already verified")
	ErrForbidden            = errors.New("access denied")
	ErrNotificationFailed   = errors.New("notification could not be sent")
)
