package domain

import "errors"

var (
	ErrNotFound          = errors.New("product not found")
	ErrSKUTaken          = errors.New("sku already in use")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidRequest    = errors.New("invalid product request")
)
