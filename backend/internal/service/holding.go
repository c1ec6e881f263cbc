package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/brokerage/backend/internal/auth"
	"github.com/user/brokerage/backend/internal/database"
	"github.com/user/brokerage/backend/internal/models"
)

var assetSymbolRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}$`)

func now() time.Time {
	return time.Now().UTC()
}

// HoldingService exposes a customer's positions and lets admins seed them.
type HoldingService struct {
	store database.Store
	log   zerolog.Logger
}

// NewHoldingService creates a HoldingService.
func NewHoldingService(store database.Store, log zerolog.Logger) *HoldingService {
	return &HoldingService{store: store, log: log.With().Str("component", "holding").Logger()}
}

// ListHoldings returns all of a customer's positions.
func (s *HoldingService) ListHoldings(ctx context.Context, principal auth.Principal, customerID uuid.UUID) ([]*models.Holding, error) {
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
	return s.store.ListHoldings(ctx, customerID)
}

// SeedHolding creates a holding with the given starting quantities. Only
// admins may mint positions out of thin air; quantities must satisfy
// 0 <= usable <= total and the (customer, asset) pair must be new.
func (s *HoldingService) SeedHolding(ctx context.Context, principal auth.Principal, customerID uuid.UUID, assetSymbol string, total, usable int64) (*models.Holding, error) {
	if !principal.IsAdmin() {
		return nil, models.ErrNotAuthorized
	}
	if err := validateAssetSymbol(assetSymbol); err != nil {
		return nil, err
	}
	if total < 0 || usable < 0 || usable > total {
		return nil, &models.ValidationError{Message: "quantities must satisfy 0 <= usable <= total"}
	}

	var holding *models.Holding
	err := s.store.WithCustomerTx(ctx, customerID, func(tx database.Tx) error {
		customer, err := tx.GetCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return models.ErrNotFound
		}

		existing, err := tx.GetHolding(ctx, customerID, assetSymbol)
		if err != nil {
			return err
		}
		if existing != nil {
			return models.ErrHoldingExists
		}

		holding = models.NewHolding(customerID, assetSymbol)
		holding.TotalQuantity = total
		holding.UsableQuantity = usable
		return tx.SaveHolding(ctx, holding)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("customer_id", customerID.String()).
		Str("asset", assetSymbol).
		Int64("total", total).
		Int64("usable", usable).
		Msg("holding seeded")
	return holding, nil
}

func validateAssetSymbol(assetSymbol string) error {
	if !assetSymbolRegex.MatchString(assetSymbol) {
		return &models.ValidationError{Message: fmt.Sprintf("invalid asset symbol %q", assetSymbol)}
	}
	return nil
}
