package domain

import "errors"

var (
	ErrNotFound          = errors.New("subscription not found")
	ErrInvalidPlan       = errors.New("invalid subscription plan")
	ErrUpgradePending    = errors.New("an upgrade is already pending")
	ErrAlreadyOnPlan     = errors.New("tenant already on this plan")
	ErrNotCancellable    = errors.New("subscription cannot be cancelled")
	ErrInvalidTransition = errors.New("invalid subscription transition")
)
