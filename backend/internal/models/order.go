package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderSide indicates whether an order buys or sells the asset.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderStatus is the lifecycle state of an order. MATCHED and CANCELED are
// terminal; the only transitions are PENDING -> MATCHED and
// PENDING -> CANCELED.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusMatched  OrderStatus = "MATCHED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// ParseOrderStatus validates a status string from the API.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusMatched, OrderStatusCanceled:
		return OrderStatus(s), true
	}
	return "", false
}

// Order is a customer's instruction to move value between cash and a
// holding. Orders are never deleted; terminal orders are the audit trail.
type Order struct {
	ID           uuid.UUID   `json:"id"`
	CustomerID   uuid.UUID   `json:"customer_id"`
	AssetSymbol  string      `json:"asset_symbol"`
	Side         OrderSide   `json:"side"`
	Quantity     int64       `json:"quantity"`
	PricePerUnit Money       `json:"price_per_unit"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewOrder creates a PENDING order.
func NewOrder(customerID uuid.UUID, assetSymbol string, side OrderSide, quantity int64, pricePerUnit Money) *Order {
	return &Order{
		ID:           uuid.New(),
		CustomerID:   customerID,
		AssetSymbol:  assetSymbol,
		Side:         side,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		Status:       OrderStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
}

// TotalCost is price per unit times quantity.
func (o *Order) TotalCost() Money {
	return o.PricePerUnit.MultiplyQuantity(o.Quantity)
}

// Match transitions PENDING -> MATCHED.
func (o *Order) Match() error {
	if o.Status != OrderStatusPending {
		return ErrInvalidOrderState
	}
	o.Status = OrderStatusMatched
	return nil
}

// Cancel transitions PENDING -> CANCELED.
func (o *Order) Cancel() error {
	if o.Status != OrderStatusPending {
		return ErrInvalidOrderState
	}
	o.Status = OrderStatusCanceled
	return nil
}
