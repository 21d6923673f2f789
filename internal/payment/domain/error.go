package domain

import "errors"

var (
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrMalformedEvent   = errors.New("malformed webhook payload")
)
