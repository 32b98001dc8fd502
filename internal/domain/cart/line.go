package cart

import (
	"errors"
	"time"
)

var (
	ErrMissingProduct  = errors.New("cart line requires a product id")
	ErrInvalidQuantity = errors.New("cart line quantity must be greater than zero")
)

// Line is one product in the shopping cart. Its lifecycle is independent
// of orders: the whole cart is cleared once an order is created from it.
type Line struct {
	LocalID   int64     `json:"local_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// NewLine builds a cart line stamped with the current UTC time.
func NewLine(productID string, quantity int) (*Line, error) {
	if productID == "" {
		return nil, ErrMissingProduct
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Line{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now().UTC(),
	}, nil
}
