package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS customers (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	user_id       UUID NOT NULL REFERENCES users(id),
	cash_amount   NUMERIC(20,4) NOT NULL,
	cash_currency TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS holdings (
	id              UUID PRIMARY KEY,
	customer_id     UUID NOT NULL REFERENCES customers(id),
	asset_symbol    TEXT NOT NULL,
	total_quantity  BIGINT NOT NULL,
	usable_quantity BIGINT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	UNIQUE (customer_id, asset_symbol),
	CHECK (usable_quantity >= 0 AND usable_quantity <= total_quantity)
);

CREATE TABLE IF NOT EXISTS orders (
	id             UUID PRIMARY KEY,
	customer_id    UUID NOT NULL REFERENCES customers(id),
	asset_symbol   TEXT NOT NULL,
	side           TEXT NOT NULL,
	quantity       BIGINT NOT NULL,
	price_amount   NUMERIC(20,4) NOT NULL,
	price_currency TEXT NOT NULL,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_customer_created ON orders (customer_id, created_at);
`

// Connect opens a pgx connection pool, verifies it with a ping, and ensures
// the schema exists.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return pool, nil
}
