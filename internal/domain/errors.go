package domain

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailConflict       = errors.New("email already in use")
	ErrInvalidMessage      = errors.New("invalid message")
	ErrSelfMessage         = errors.New("cannot message yourself")
	ErrMessageTooLarge     = errors.New("message too large")
	ErrMessageNotFound     = errors.New("message not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidApplication  = errors.New("invalid application")
	ErrHelpNotFound        = errors.New("help request not found")
	ErrForbidden           = errors.New("access denied")
)
