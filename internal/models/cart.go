package models

import "github.com/shopspring/decimal"

// CartItem is a plant selected for purchase. Quantity is always at least 1.
type CartItem struct {
	Plant
	Quantity int `json:"quantity"`
}

// Subtotal returns price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
