package orderbook

import "errors"

// Sentinel errors for submit/cancel/modify. Every rejection happens before
// any book state is touched, so a returned error always means "book unchanged".
var (
	ErrInvalidID       = errors.New("order id must be non-zero")
	ErrInvalidSide     = errors.New("side must be buy or sell")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrDuplicateID     = errors.New("order id already live")
	ErrNotFound        = errors.New("order not found")
)
