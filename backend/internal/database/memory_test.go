package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/brokerage/backend/internal/models"
)

func seedCustomer(t *testing.T, store *MemoryStore, balance int64) *models.Customer {
	t.Helper()
	customer := models.NewCustomer("Test Customer", uuid.New(),
		models.NewMoney(decimal.NewFromInt(balance), models.DefaultCurrency))
	require.NoError(t, store.CreateCustomer(context.Background(), customer))
	return customer
}

func TestMemoryStoreUserUniqueness(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Username: "jane", Role: models.RoleCustomer}
	require.NoError(t, store.CreateUser(ctx, user))

	dup := &models.User{ID: uuid.New(), Username: "jane", Role: models.RoleCustomer}
	assert.ErrorIs(t, store.CreateUser(ctx, dup), models.ErrUsernameTaken)

	got, err := store.GetUserByUsername(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	missing, err := store.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStoreTxCommitApplies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	customer := seedCustomer(t, store, 1000)

	err := store.WithCustomerTx(ctx, customer.ID, func(tx Tx) error {
		c, err := tx.GetCustomer(ctx, customer.ID)
		require.NoError(t, err)
		require.NoError(t, c.Withdraw(models.NewMoney(decimal.NewFromInt(400), models.DefaultCurrency)))
		require.NoError(t, tx.UpdateCustomerBalance(ctx, c))

		h := models.NewHolding(customer.ID, "ACME")
		require.NoError(t, h.Credit(10))
		return tx.SaveHolding(ctx, h)
	})
	require.NoError(t, err)

	got, err := store.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, got.CashBalance.Amount.Equal(decimal.NewFromInt(600)))

	holding, err := store.GetHolding(ctx, customer.ID, "ACME")
	require.NoError(t, err)
	require.NotNil(t, holding)
	assert.Equal(t, int64(10), holding.TotalQuantity)
}

func TestMemoryStoreTxRollbackDiscards(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	customer := seedCustomer(t, store, 1000)

	failure := errors.New("boom")
	err := store.WithCustomerTx(ctx, customer.ID, func(tx Tx) error {
		c, err := tx.GetCustomer(ctx, customer.ID)
		require.NoError(t, err)
		require.NoError(t, c.Withdraw(models.NewMoney(decimal.NewFromInt(400), models.DefaultCurrency)))
		require.NoError(t, tx.UpdateCustomerBalance(ctx, c))

		h := models.NewHolding(customer.ID, "ACME")
		require.NoError(t, h.Credit(10))
		require.NoError(t, tx.SaveHolding(ctx, h))
		return failure
	})
	assert.ErrorIs(t, err, failure)

	got, err := store.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, got.CashBalance.Amount.Equal(decimal.NewFromInt(1000)), "rolled-back withdrawal must not stick")

	holding, err := store.GetHolding(ctx, customer.ID, "ACME")
	require.NoError(t, err)
	assert.Nil(t, holding, "rolled-back holding must not stick")
}

func TestMemoryStoreTxSeesOwnWrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	customer := seedCustomer(t, store, 100)

	err := store.WithCustomerTx(ctx, customer.ID, func(tx Tx) error {
		h := models.NewHolding(customer.ID, "ACME")
		require.NoError(t, h.Credit(5))
		require.NoError(t, tx.SaveHolding(ctx, h))

		again, err := tx.GetHolding(ctx, customer.ID, "ACME")
		require.NoError(t, err)
		require.NotNil(t, again, "staged holding must be visible inside the tx")
		assert.Equal(t, int64(5), again.TotalQuantity)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreSerializesPerCustomer(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	customer := seedCustomer(t, store, 0)

	// 50 concurrent deposits of 1 must all land: no lost updates.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithCustomerTx(ctx, customer.ID, func(tx Tx) error {
				c, err := tx.GetCustomer(ctx, customer.ID)
				if err != nil {
					return err
				}
				if err := c.Deposit(models.NewMoney(decimal.NewFromInt(1), models.DefaultCurrency)); err != nil {
					return err
				}
				return tx.UpdateCustomerBalance(ctx, c)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, got.CashBalance.Amount.Equal(decimal.NewFromInt(50)),
		"expected 50, got %s", got.CashBalance.Amount)
}

func TestMemoryStoreListOrdersFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	customer := seedCustomer(t, store, 0)

	price := models.NewMoney(decimal.NewFromInt(10), models.DefaultCurrency)
	base := time.Now().UTC()

	mkOrder := func(age time.Duration, status models.OrderStatus) *models.Order {
		o := models.NewOrder(customer.ID, "ACME", models.OrderSideBuy, 1, price)
		o.CreatedAt = base.Add(-age)
		o.Status = status
		require.NoError(t, store.WithCustomerTx(ctx, customer.ID, func(tx Tx) error {
			return tx.CreateOrder(ctx, o)
		}))
		return o
	}

	recent := mkOrder(time.Hour, models.OrderStatusPending)
	mkOrder(48*time.Hour, models.OrderStatusPending) // outside range
	matched := mkOrder(2*time.Hour, models.OrderStatusMatched)

	filter := OrderFilter{Start: base.Add(-24 * time.Hour), End: base}
	orders, err := store.ListOrders(ctx, customer.ID, filter)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, recent.ID, orders[0].ID, "newest first")
	assert.Equal(t, matched.ID, orders[1].ID)

	pending := models.OrderStatusPending
	filter.Status = &pending
	orders, err = store.ListOrders(ctx, customer.ID, filter)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, recent.ID, orders[0].ID)
}
