package outbox

import "errors"

var (
	ErrMissingCustomer    = errors.New("customer name and phone are required")
	ErrNoItems            = errors.New("order must contain at least one item")
	ErrInvalidQuantity    = errors.New("item quantity must be greater than zero")
	ErrInvalidAmount      = errors.New("total amount must not be negative")
	ErrPartialCoordinates = errors.New("delivery latitude and longitude must be set together")
	ErrEmptyVoiceNote     = errors.New("voice note attachment is empty")
	ErrNotFound           = errors.New("queued order not found")
)
