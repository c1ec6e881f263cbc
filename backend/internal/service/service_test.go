package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/user/brokerage/backend/internal/auth"
	"github.com/user/brokerage/backend/internal/database"
	"github.com/user/brokerage/backend/internal/models"
)

// testEnv bundles the services over a shared in-memory store.
type testEnv struct {
	store    *database.MemoryStore
	accounts *AccountService
	holdings *HoldingService
	orders   *OrderService
}

func newTestEnv() *testEnv {
	store := database.NewMemoryStore()
	log := zerolog.Nop()
	return &testEnv{
		store:    store,
		accounts: NewAccountService(store, log),
		holdings: NewHoldingService(store, log),
		orders:   NewOrderService(store, log),
	}
}

func money(t *testing.T, s string) models.Money {
	t.Helper()
	m, err := models.MoneyFromString(s)
	require.NoError(t, err)
	return m
}

// registerCustomer creates a customer with the given opening balance and
// returns it with its owner principal.
func (env *testEnv) registerCustomer(t *testing.T, username, balance string) (auth.Principal, *models.Customer) {
	t.Helper()
	user, customer, err := env.accounts.RegisterCustomer(
		context.Background(), username, "password", "Customer "+username, money(t, balance))
	require.NoError(t, err)
	return auth.CustomerPrincipal(user.ID), customer
}

// registerAdmin creates an admin user and returns its principal.
func (env *testEnv) registerAdmin(t *testing.T, username string) auth.Principal {
	t.Helper()
	user, err := env.accounts.RegisterAdmin(context.Background(), username, "password")
	require.NoError(t, err)
	return auth.AdminPrincipal(user.ID)
}

// seedHolding gives the customer a starting position.
func (env *testEnv) seedHolding(t *testing.T, customer *models.Customer, symbol string, total, usable int64) {
	t.Helper()
	admin := env.registerAdmin(t, "seed-admin-"+symbol+customer.ID.String()[:8])
	_, err := env.holdings.SeedHolding(context.Background(), admin, customer.ID, symbol, total, usable)
	require.NoError(t, err)
}

// balance reloads the customer's current cash balance.
func (env *testEnv) balance(t *testing.T, customer *models.Customer) models.Money {
	t.Helper()
	got, err := env.store.GetCustomer(context.Background(), customer.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	return got.CashBalance
}

// holding reloads a position; may return nil when absent.
func (env *testEnv) holding(t *testing.T, customer *models.Customer, symbol string) *models.Holding {
	t.Helper()
	h, err := env.store.GetHolding(context.Background(), customer.ID, symbol)
	require.NoError(t, err)
	return h
}
