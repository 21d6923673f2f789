package domain

import "errors"

var (
	ErrNotFound          = errors.New("sale not found")
	ErrEmptySale         = errors.New("sale has no items")
	ErrInvalidRequest    = errors.New("invalid sale request")
	ErrProductNotFound   = errors.New("product not on catalog")
	ErrInsufficientStock = errors.New("insufficient stock for sale")
	ErrDiscountTooLarge  = errors.New("discount exceeds sale total")
	ErrAlreadyRefunded   = errors.New("sale already refunded")
)
