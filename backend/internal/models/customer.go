package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Customer is a brokerage account. UserID is the owning login identity;
// CashBalance is mutated only through Deposit and Withdraw so the
// non-negative invariant cannot be bypassed.
type Customer struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	UserID      uuid.UUID `json:"user_id"`
	CashBalance Money     `json:"cash_balance"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCustomer creates a customer with the given opening balance.
func NewCustomer(name string, userID uuid.UUID, openingBalance Money) *Customer {
	return &Customer{
		ID:          uuid.New(),
		Name:        name,
		UserID:      userID,
		CashBalance: openingBalance,
		CreatedAt:   time.Now().UTC(),
	}
}

// Deposit adds amount to the cash balance. The amount must be positive.
func (c *Customer) Deposit(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	next, err := c.CashBalance.Add(amount)
	if err != nil {
		return err
	}
	c.CashBalance = next
	return nil
}

// Withdraw removes amount from the cash balance. Fails with
// ErrInsufficientFunds when the balance would go negative; the balance is
// untouched on any failure.
func (c *Customer) Withdraw(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	short, err := c.CashBalance.LessThan(amount)
	if err != nil {
		return err
	}
	if short {
		return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, c.CashBalance, amount)
	}
	next, err := c.CashBalance.Subtract(amount)
	if err != nil {
		return err
	}
	c.CashBalance = next
	return nil
}
