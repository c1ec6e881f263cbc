// Package service implements the brokerage core: account cash movements,
// holdings management, and the order lifecycle. Every entry point takes an
// already-resolved principal and checks it against the target customer
// before any ledger mutation.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/brokerage/backend/internal/auth"
	"github.com/user/brokerage/backend/internal/database"
	"github.com/user/brokerage/backend/internal/models"
)

// AccountService handles signup, login checks, and cash movements.
type AccountService struct {
	store database.Store
	log   zerolog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(store database.Store, log zerolog.Logger) *AccountService {
	return &AccountService{store: store, log: log.With().Str("component", "account").Logger()}
}

// RegisterCustomer creates a customer-role user and its brokerage account
// with the given opening balance. The opening balance may be zero but not
// negative.
func (s *AccountService) RegisterCustomer(ctx context.Context, username, password, name string, openingBalance models.Money) (*models.User, *models.Customer, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, nil, err
	}
	if openingBalance.IsNegative() {
		return nil, nil, models.ErrInvalidAmount
	}

	user, err := s.createUser(ctx, username, password, models.RoleCustomer)
	if err != nil {
		return nil, nil, err
	}

	customer := models.NewCustomer(name, user.ID, openingBalance)
	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		return nil, nil, fmt.Errorf("creating customer for user %s: %w", username, err)
	}

	s.log.Info().Str("username", username).Str("customer_id", customer.ID.String()).Msg("customer registered")
	return user, customer, nil
}

// RegisterAdmin creates an admin-role user. Admins have no brokerage account
// of their own.
func (s *AccountService) RegisterAdmin(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, username, password, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Msg("admin registered")
	return user, nil
}

func (s *AccountService) createUser(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	existing, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Password: hash,
		Role:     role,
	}
	user.CreatedAt = now()
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a username/password pair. The same error is returned
// for a missing user and a wrong password.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPasswordHash(password, user.Password) {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// GetCustomer returns a customer the principal may see.
func (s *AccountService) GetCustomer(ctx context.Context, principal auth.Principal, customerID uuid.UUID) (*models.Customer, error) {
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
	return customer, nil
}

// Deposit adds cash to a customer's balance.
func (s *AccountService) Deposit(ctx context.Context, principal auth.Principal, customerID uuid.UUID, amount models.Money) error {
	return s.store.WithCustomerTx(ctx, customerID, func(tx database.Tx) error {
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

		if err := customer.Deposit(amount); err != nil {
			return err
		}
		if err := tx.UpdateCustomerBalance(ctx, customer); err != nil {
			return err
		}

		s.log.Info().Str("customer_id", customerID.String()).Str("amount", amount.String()).Msg("deposit")
		return nil
	})
}

// Withdraw removes cash from a customer's balance, failing without effect
// when the balance is too low.
func (s *AccountService) Withdraw(ctx context.Context, principal auth.Principal, customerID uuid.UUID, amount models.Money) error {
	return s.store.WithCustomerTx(ctx, customerID, func(tx database.Tx) error {
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

		if err := customer.Withdraw(amount); err != nil {
			return err
		}
		if err := tx.UpdateCustomerBalance(ctx, customer); err != nil {
			return err
		}

		s.log.Info().Str("customer_id", customerID.String()).Str("amount", amount.String()).Msg("withdrawal")
		return nil
	})
}

func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return &models.ValidationError{Message: "username and password cannot be empty"}
	}
	return nil
}
