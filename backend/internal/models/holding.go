package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Holding is a customer's position in one asset. TotalQuantity is everything
// owned; UsableQuantity is what is not reserved by a pending SELL order.
// Invariant: 0 <= UsableQuantity <= TotalQuantity.
type Holding struct {
	ID             uuid.UUID `json:"id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	AssetSymbol    string    `json:"asset_symbol"`
	TotalQuantity  int64     `json:"total_quantity"`
	UsableQuantity int64     `json:"usable_quantity"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewHolding creates an empty holding for (customer, asset).
func NewHolding(customerID uuid.UUID, assetSymbol string) *Holding {
	return &Holding{
		ID:          uuid.New(),
		CustomerID:  customerID,
		AssetSymbol: assetSymbol,
		CreatedAt:   time.Now().UTC(),
	}
}

// Reserved returns the quantity currently earmarked by pending SELL orders.
func (h *Holding) Reserved() int64 {
	return h.TotalQuantity - h.UsableQuantity
}

// Credit adds newly acquired shares. They are immediately tradeable, so both
// total and usable grow.
func (h *Holding) Credit(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidAmount
	}
	h.TotalQuantity += quantity
	h.UsableQuantity += quantity
	return nil
}

// Reserve earmarks shares for a pending SELL order. The total is unchanged;
// the shares are no longer usable until released or settled.
func (h *Holding) Reserve(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidAmount
	}
	if quantity > h.UsableQuantity {
		return fmt.Errorf("%w: usable %d, requested %d", ErrInsufficientHoldings, h.UsableQuantity, quantity)
	}
	h.UsableQuantity -= quantity
	return nil
}

// Release returns previously reserved shares to usable. A release may never
// push usable above total, so releasing more than was reserved fails.
func (h *Holding) Release(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidAmount
	}
	if h.UsableQuantity+quantity > h.TotalQuantity {
		return fmt.Errorf("%w: usable %d + release %d > total %d",
			ErrReservationOverflow, h.UsableQuantity, quantity, h.TotalQuantity)
	}
	h.UsableQuantity += quantity
	return nil
}

// SettleSale permanently removes sold shares. Usable was already decremented
// when the shares were reserved, so only the total moves here.
func (h *Holding) SettleSale(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidAmount
	}
	if quantity > h.TotalQuantity {
		return fmt.Errorf("%w: total %d, requested %d", ErrInsufficientHoldings, h.TotalQuantity, quantity)
	}
	h.TotalQuantity -= quantity
	return nil
}
