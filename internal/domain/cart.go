package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one row in the cart: a product/color pair and its quantity.
// Product points into the catalog snapshot and must not be modified.
type CartLine struct {
	Product       *Product `json:"product"`
	Quantity      int      `json:"quantity"`
	SelectedColor string   `json:"selectedColor,omitempty"`
}

// Matches reports whether the line is keyed by productID and color.
func (l CartLine) Matches(productID int, color string) bool {
	return l.Product != nil && l.Product.ID == productID && l.SelectedColor == color
}

// Subtotal returns price * quantity
func (l CartLine) Subtotal() decimal.Decimal {
	if l.Product == nil {
		return decimal.Zero
	}
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// CustomerInfo holds delivery details for an order
type CustomerInfo struct {
	FullName    string `json:"fullName" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=5,max=32"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city" validate:"required"`
	PostalCode  string `json:"postalCode" validate:"required,max=16"`
}

// Order is a cart snapshot handed to the host application at checkout
type Order struct {
	ID           string          `json:"id"`
	Items        []CartLine      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Shipping     decimal.Decimal `json:"shipping"`
	CustomerInfo CustomerInfo    `json:"customerInfo"`
	Status       OrderStatus     `json:"status"`
	Date         time.Time       `json:"date"`
}
