package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
)

// ValidOrderStatus reports whether status is one of the known order statuses.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

// OrderItem represents a single plant within an order.
type OrderItem struct {
	ID       string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID  string          `json:"-" gorm:"type:varchar(36);index"`
	PlantID  string          `json:"plant_id" gorm:"type:varchar(36)"`
	Name     string          `json:"name"`
	ImageURL string          `json:"image_url"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price" gorm:"type:numeric(10,2)"` // Price at the time of order
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Order is a completed checkout. Immutable apart from its status.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"type:varchar(36);index"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Total           decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`
	Status          string          `json:"status" gorm:"type:varchar(16)"`
	RecipientName   string          `json:"recipient_name"`
	Email           string          `json:"email"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
