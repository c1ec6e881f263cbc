package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/brokerage/backend/internal/models"
)

// PostgresStore implements Store on a pgx connection pool. Per-customer
// serialization uses a transaction holding a FOR UPDATE lock on the
// customer row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an already-connected pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// querier lets the row helpers run against either the pool or a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// --- users ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, password_hash, role, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, query, user.ID, user.Username, user.Password, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrUsernameTaken
		}
		return fmt.Errorf("error creating user %s: %w", user.Username, err)
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`
	user, err := scanUser(s.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("error getting user %s: %w", username, err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, username, password_hash, role, created_at FROM users WHERE id = $1`
	user, err := scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("error getting user by id %s: %w", id, err)
	}
	return user, nil
}

// --- customers ---

func (s *PostgresStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `INSERT INTO customers (id, name, user_id, cash_amount, cash_currency, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		customer.ID, customer.Name, customer.UserID,
		customer.CashBalance.Amount, customer.CashBalance.Currency, customer.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating customer %s: %w", customer.ID, err)
	}
	return nil
}

func getCustomer(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*models.Customer, error) {
	query := `SELECT id, name, user_id, cash_amount, cash_currency, created_at
			  FROM customers WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	customer := &models.Customer{}
	err := q.QueryRow(ctx, query, id).Scan(
		&customer.ID, &customer.Name, &customer.UserID,
		&customer.CashBalance.Amount, &customer.CashBalance.Currency, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Customer not found
		}
		return nil, fmt.Errorf("error getting customer %s: %w", id, err)
	}
	return customer, nil
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return getCustomer(ctx, s.pool, id, false)
}

// --- holdings ---

func getHolding(ctx context.Context, q querier, customerID uuid.UUID, assetSymbol string) (*models.Holding, error) {
	query := `SELECT id, customer_id, asset_symbol, total_quantity, usable_quantity, created_at
			  FROM holdings WHERE customer_id = $1 AND asset_symbol = $2`

	holding := &models.Holding{}
	err := q.QueryRow(ctx, query, customerID, assetSymbol).Scan(
		&holding.ID, &holding.CustomerID, &holding.AssetSymbol,
		&holding.TotalQuantity, &holding.UsableQuantity, &holding.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No holding for this asset yet
		}
		return nil, fmt.Errorf("error getting holding %s/%s: %w", customerID, assetSymbol, err)
	}
	return holding, nil
}

func (s *PostgresStore) GetHolding(ctx context.Context, customerID uuid.UUID, assetSymbol string) (*models.Holding, error) {
	return getHolding(ctx, s.pool, customerID, assetSymbol)
}

func (s *PostgresStore) ListHoldings(ctx context.Context, customerID uuid.UUID) ([]*models.Holding, error) {
	holdings := make([]*models.Holding, 0)
	query := `SELECT id, customer_id, asset_symbol, total_quantity, usable_quantity, created_at
			  FROM holdings WHERE customer_id = $1 ORDER BY asset_symbol`

	rows, err := s.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("error querying holdings for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	for rows.Next() {
		holding := &models.Holding{}
		err := rows.Scan(&holding.ID, &holding.CustomerID, &holding.AssetSymbol,
			&holding.TotalQuantity, &holding.UsableQuantity, &holding.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning holding row for customer %s: %w", customerID, err)
		}
		holdings = append(holdings, holding)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating holding rows for customer %s: %w", customerID, rows.Err())
	}

	return holdings, nil
}

// --- orders ---

func getOrder(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*models.Order, error) {
	query := `SELECT id, customer_id, asset_symbol, side, quantity, price_amount, price_currency, status, created_at
			  FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	order := &models.Order{}
	err := q.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.CustomerID, &order.AssetSymbol, &order.Side, &order.Quantity,
		&order.PricePerUnit.Amount, &order.PricePerUnit.Currency, &order.Status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Order not found
		}
		return nil, fmt.Errorf("error getting order %s: %w", id, err)
	}
	return order, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return getOrder(ctx, s.pool, id, false)
}

func (s *PostgresStore) ListOrders(ctx context.Context, customerID uuid.UUID, filter OrderFilter) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)

	query := `SELECT id, customer_id, asset_symbol, side, quantity, price_amount, price_currency, status, created_at
			  FROM orders
			  WHERE customer_id = $1 AND created_at >= $2 AND created_at <= $3`
	args := []any{customerID, filter.Start, filter.End}
	if filter.Status != nil {
		query += ` AND status = $4`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying orders for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	for rows.Next() {
		order := &models.Order{}
		err := rows.Scan(
			&order.ID, &order.CustomerID, &order.AssetSymbol, &order.Side, &order.Quantity,
			&order.PricePerUnit.Amount, &order.PricePerUnit.Currency, &order.Status, &order.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning order row for customer %s: %w", customerID, err)
		}
		orders = append(orders, order)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating order rows for customer %s: %w", customerID, rows.Err())
	}

	return orders, nil
}

// --- per-customer transactions ---

// WithCustomerTx locks the customer row FOR UPDATE for the duration of fn.
// Any error from fn rolls the whole transaction back.
func (s *PostgresStore) WithCustomerTx(ctx context.Context, customerID uuid.UUID, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction for customer %s: %w", customerID, err)
	}
	defer tx.Rollback(ctx)

	// Serializes all concurrent operations touching this customer. A missing
	// customer is not locked; fn discovers that via GetCustomer.
	if _, err := tx.Exec(ctx, `SELECT id FROM customers WHERE id = $1 FOR UPDATE`, customerID); err != nil {
		return fmt.Errorf("error locking customer %s: %w", customerID, err)
	}

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing transaction for customer %s: %w", customerID, err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return getCustomer(ctx, t.tx, id, true)
}

func (t *pgTx) UpdateCustomerBalance(ctx context.Context, customer *models.Customer) error {
	query := `UPDATE customers SET cash_amount = $1, cash_currency = $2 WHERE id = $3`

	cmdTag, err := t.tx.Exec(ctx, query,
		customer.CashBalance.Amount, customer.CashBalance.Currency, customer.ID)
	if err != nil {
		return fmt.Errorf("error updating balance for customer %s: %w", customer.ID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("balance update for customer %s affected %d rows", customer.ID, cmdTag.RowsAffected())
	}
	return nil
}

func (t *pgTx) GetHolding(ctx context.Context, customerID uuid.UUID, assetSymbol string) (*models.Holding, error) {
	return getHolding(ctx, t.tx, customerID, assetSymbol)
}

func (t *pgTx) SaveHolding(ctx context.Context, holding *models.Holding) error {
	query := `INSERT INTO holdings (id, customer_id, asset_symbol, total_quantity, usable_quantity, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (customer_id, asset_symbol)
			  DO UPDATE SET total_quantity = $4, usable_quantity = $5`

	_, err := t.tx.Exec(ctx, query,
		holding.ID, holding.CustomerID, holding.AssetSymbol,
		holding.TotalQuantity, holding.UsableQuantity, holding.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving holding %s/%s: %w", holding.CustomerID, holding.AssetSymbol, err)
	}
	return nil
}

func (t *pgTx) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `INSERT INTO orders (id, customer_id, asset_symbol, side, quantity, price_amount, price_currency, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := t.tx.Exec(ctx, query,
		order.ID, order.CustomerID, order.AssetSymbol, order.Side, order.Quantity,
		order.PricePerUnit.Amount, order.PricePerUnit.Currency, order.Status, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating order for customer %s: %w", order.CustomerID, err)
	}
	return nil
}

func (t *pgTx) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return getOrder(ctx, t.tx, id, true)
}

func (t *pgTx) UpdateOrderStatus(ctx context.Context, order *models.Order) error {
	query := `UPDATE orders SET status = $1 WHERE id = $2`

	cmdTag, err := t.tx.Exec(ctx, query, order.Status, order.ID)
	if err != nil {
		return fmt.Errorf("error updating status of order %s: %w", order.ID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("status update for order %s affected %d rows", order.ID, cmdTag.RowsAffected())
	}
	return nil
}
