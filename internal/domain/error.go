package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound       = errors.New("not found")
	ErrNotConfigured  = errors.New("capability not configured")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrValidation     = errors.New("validation failed")
	ErrUpstream       = errors.New("upstream service error")
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidArgument = errors.New("invalid argument")
)
