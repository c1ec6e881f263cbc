package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/brokerage/backend/internal/auth"
	"github.com/user/brokerage/backend/internal/database"
	"github.com/user/brokerage/backend/internal/models"
)

// OrderService implements the order lifecycle: escrow-at-creation, a single
// PENDING -> MATCHED or PENDING -> CANCELED transition, and history queries.
// All ledger effects of one operation commit or roll back as a unit.
type OrderService struct {
	store database.Store
	log   zerolog.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(store database.Store, log zerolog.Logger) *OrderService {
	return &OrderService{store: store, log: log.With().Str("component", "order").Logger()}
}

// CreateOrder reserves the resources the order commits (cash for BUY, shares
// for SELL) and persists it as PENDING. If the reservation fails no order is
// created and nothing is mutated.
func (s *OrderService) CreateOrder(ctx context.Context, principal auth.Principal, customerID uuid.UUID, assetSymbol string, side models.OrderSide, quantity int64, pricePerUnit models.Money) (*models.Order, error) {
	if err := validateAssetSymbol(assetSymbol); err != nil {
		return nil, err
	}
	if side != models.OrderSideBuy && side != models.OrderSideSell {
		return nil, &models.ValidationError{Message: "side must be BUY or SELL"}
	}
	if quantity <= 0 || !pricePerUnit.IsPositive() {
		return nil, models.ErrInvalidAmount
	}

	var order *models.Order
	err := s.store.WithCustomerTx(ctx, customerID, func(tx database.Tx) error {
		customer, err := tx.GetCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return models.ErrNotFound
		}
		if err := principal.Authorize(customer); err != nil {
			return err
		}

		order = models.NewOrder(customerID, assetSymbol, side, quantity, pricePerUnit)

		switch side {
		case models.OrderSideBuy:
			// Escrow the full cost now so a concurrent order cannot spend
			// the same cash.
			if err := customer.Withdraw(order.TotalCost()); err != nil {
				return err
			}
			if err := tx.UpdateCustomerBalance(ctx, customer); err != nil {
				return err
			}
		case models.OrderSideSell:
			holding, err := tx.GetHolding(ctx, customerID, assetSymbol)
			if err != nil {
				return err
			}
			if holding == nil {
				return models.ErrInsufficientHoldings
			}
			if err := holding.Reserve(quantity); err != nil {
				return err
			}
			if err := tx.SaveHolding(ctx, holding); err != nil {
				return err
			}
		}

		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("customer_id", customerID.String()).
		Str("side", string(side)).
		Str("asset", assetSymbol).
		Int64("quantity", quantity).
		Msg("order created")
	return order, nil
}

// MatchOrder settles a PENDING order against the house ledger: a BUY credits
// the shares already paid for at creation, a SELL removes the reserved
// shares and deposits the proceeds.
func (s *OrderService) MatchOrder(ctx context.Context, principal auth.Principal, orderID uuid.UUID) error {
	return s.withPendingOrder(ctx, principal, orderID, func(tx database.Tx, customer *models.Customer, order *models.Order) error {
		switch order.Side {
		case models.OrderSideBuy:
			holding, err := tx.GetHolding(ctx, order.CustomerID, order.AssetSymbol)
			if err != nil {
				return err
			}
			if holding == nil {
				holding = models.NewHolding(order.CustomerID, order.AssetSymbol)
			}
			if err := holding.Credit(order.Quantity); err != nil {
				return err
			}
			if err := tx.SaveHolding(ctx, holding); err != nil {
				return err
			}
		case models.OrderSideSell:
			holding, err := tx.GetHolding(ctx, order.CustomerID, order.AssetSymbol)
			if err != nil {
				return err
			}
			if holding == nil {
				return models.ErrInsufficientHoldings
			}
			if err := holding.SettleSale(order.Quantity); err != nil {
				return err
			}
			if err := tx.SaveHolding(ctx, holding); err != nil {
				return err
			}
			if err := customer.Deposit(order.TotalCost()); err != nil {
				return err
			}
			if err := tx.UpdateCustomerBalance(ctx, customer); err != nil {
				return err
			}
		}

		if err := order.Match(); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, order); err != nil {
			return err
		}

		s.log.Info().Str("order_id", order.ID.String()).Msg("order matched")
		return nil
	})
}

// CancelOrder reverses the creation-time reservation of a PENDING order: a
// BUY refunds the escrowed cash, a SELL releases the reserved shares.
func (s *OrderService) CancelOrder(ctx context.Context, principal auth.Principal, orderID uuid.UUID) error {
	return s.withPendingOrder(ctx, principal, orderID, func(tx database.Tx, customer *models.Customer, order *models.Order) error {
		switch order.Side {
		case models.OrderSideBuy:
			if err := customer.Deposit(order.TotalCost()); err != nil {
				return err
			}
			if err := tx.UpdateCustomerBalance(ctx, customer); err != nil {
				return err
			}
		case models.OrderSideSell:
			holding, err := tx.GetHolding(ctx, order.CustomerID, order.AssetSymbol)
			if err != nil {
				return err
			}
			if holding == nil {
				return models.ErrInsufficientHoldings
			}
			if err := holding.Release(order.Quantity); err != nil {
				return err
			}
			if err := tx.SaveHolding(ctx, holding); err != nil {
				return err
			}
		}

		if err := order.Cancel(); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, order); err != nil {
			return err
		}

		s.log.Info().Str("order_id", order.ID.String()).Msg("order canceled")
		return nil
	})
}

// withPendingOrder locates the order's owning customer, locks that customer,
// re-reads both rows under the lock, checks authorization and the PENDING
// state, then runs fn.
func (s *OrderService) withPendingOrder(ctx context.Context, principal auth.Principal, orderID uuid.UUID, fn func(tx database.Tx, customer *models.Customer, order *models.Order) error) error {
	// First read is only to learn which customer to lock; the order is
	// re-read under the lock before any decision is made.
	peek, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if peek == nil {
		return models.ErrNotFound
	}

	return s.store.WithCustomerTx(ctx, peek.CustomerID, func(tx database.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return models.ErrNotFound
		}

		customer, err := tx.GetCustomer(ctx, order.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return models.ErrNotFound
		}
		if err := principal.Authorize(customer); err != nil {
			return err
		}
		if order.Status != models.OrderStatusPending {
			return models.ErrInvalidOrderState
		}

		return fn(tx, customer, order)
	})
}

// ListOrders returns the customer's orders whose creation time falls within
// the filter range, newest first, optionally narrowed by status.
func (s *OrderService) ListOrders(ctx context.Context, principal auth.Principal, customerID uuid.UUID, filter database.OrderFilter) ([]*models.Order, error) {
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, models.ErrNotFound
	}
	if err := principal.Authorize(customer); err != nil {
		return nil, err
	}
	if filter.End.Before(filter.Start) {
		return nil, &models.ValidationError{Message: "end date must not precede start date"}
	}
	return s.store.ListOrders(ctx, customerID, filter)
}
