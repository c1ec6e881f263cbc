// Package database provides the storage boundary for the brokerage core:
// aggregate load/store plus the per-customer transaction discipline the
// ledger operations rely on. Two implementations exist, PostgresStore for
// production and MemoryStore for tests.
package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/user/brokerage/backend/internal/models"
)

// OrderFilter narrows an order history query. Status nil means any status.
type OrderFilter struct {
	Start  time.Time
	End    time.Time
	Status *models.OrderStatus
}

// Store is the aggregate storage consumed by the service layer. Lookup
// methods return (nil, nil) when the record is absent; only infrastructure
// failures produce errors.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, customerID uuid.UUID, filter OrderFilter) ([]*models.Order, error)

	GetHolding(ctx context.Context, customerID uuid.UUID, assetSymbol string) (*models.Holding, error)
	ListHoldings(ctx context.Context, customerID uuid.UUID) ([]*models.Holding, error)

	// WithCustomerTx runs fn with exclusive access to one customer's cash
	// balance, holdings and orders. If fn returns an error every staged
	// mutation is discarded; otherwise all are applied as a unit. Two
	// concurrent calls for the same customer are serialized; different
	// customers proceed independently.
	WithCustomerTx(ctx context.Context, customerID uuid.UUID, fn func(tx Tx) error) error
}

// Tx is the mutation surface available inside WithCustomerTx. All reads see
// the locked customer's current state; all writes take effect only when the
// transaction commits.
type Tx interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	UpdateCustomerBalance(ctx context.Context, customer *models.Customer) error

	GetHolding(ctx context.Context, customerID uuid.UUID, assetSymbol string) (*models.Holding, error)
	SaveHolding(ctx context.Context, holding *models.Holding) error

	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, order *models.Order) error
}
