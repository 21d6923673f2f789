package domain

import "errors"

var (
	ErrNotFound       = errors.New("tenant not found")
	ErrTenantInactive = errors.New("tenant inactive")
	ErrSlugTaken      = errors.New("tenant slug already taken")
	ErrInvalidRequest = errors.New("invalid tenant request")
)
