package database

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/user/brokerage/backend/internal/models"
)

// MemoryStore is an in-memory Store used by tests and local development.
// WithCustomerTx serializes on a per-customer mutex and stages writes so a
// failed operation leaves no trace, matching the all-or-nothing behavior of
// the Postgres implementation.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]*models.User
	usersByName map[string]uuid.UUID
	customers   map[uuid.UUID]*models.Customer
	holdings    map[uuid.UUID]map[string]*models.Holding // customer id -> symbol -> holding
	orders      map[uuid.UUID]*models.Order

	lockMu        sync.Mutex
	customerLocks map[uuid.UUID]*sync.Mutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uuid.UUID]*models.User),
		usersByName:   make(map[string]uuid.UUID),
		customers:     make(map[uuid.UUID]*models.Customer),
		holdings:      make(map[uuid.UUID]map[string]*models.Holding),
		orders:        make(map[uuid.UUID]*models.Order),
		customerLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyCustomer(c *models.Customer) *models.Customer {
	cp := *c
	return &cp
}

func copyHolding(h *models.Holding) *models.Holding {
	c := *h
	return &c
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	return &c
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByName[user.Username]; taken {
		return models.ErrUsernameTaken
	}
	s.users[user.ID] = copyUser(user)
	s.usersByName[user.Username] = user.ID
	return nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[username]
	if !ok {
		return nil, nil
	}
	return copyUser(s.users[id]), nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (s *MemoryStore) CreateCustomer(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customers[customer.ID] = copyCustomer(customer)
	return nil
}

func (s *MemoryStore) GetCustomer(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	return copyCustomer(c), nil
}

func (s *MemoryStore) GetHolding(_ context.Context, customerID uuid.UUID, assetSymbol string) (*models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.holdings[customerID][assetSymbol]
	if !ok {
		return nil, nil
	}
	return copyHolding(h), nil
}

func (s *MemoryStore) ListHoldings(_ context.Context, customerID uuid.UUID) ([]*models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	holdings := make([]*models.Holding, 0, len(s.holdings[customerID]))
	for _, h := range s.holdings[customerID] {
		holdings = append(holdings, copyHolding(h))
	}
	sortHoldings(holdings)
	return holdings, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (s *MemoryStore) ListOrders(_ context.Context, customerID uuid.UUID, filter OrderFilter) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]*models.Order, 0)
	for _, o := range s.orders {
		if o.CustomerID != customerID {
			continue
		}
		if o.CreatedAt.Before(filter.Start) || o.CreatedAt.After(filter.End) {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		orders = append(orders, copyOrder(o))
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

func (s *MemoryStore) customerLock(customerID uuid.UUID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	l, ok := s.customerLocks[customerID]
	if !ok {
		l = &sync.Mutex{}
		s.customerLocks[customerID] = l
	}
	return l
}

// WithCustomerTx serializes on the customer's mutex, hands fn a staging
// transaction, and applies the staged writes only if fn succeeds.
func (s *MemoryStore) WithCustomerTx(_ context.Context, customerID uuid.UUID, fn func(tx Tx) error) error {
	lock := s.customerLock(customerID)
	lock.Lock()
	defer lock.Unlock()

	tx := &memTx{
		store:    s,
		holdings: make(map[string]*models.Holding),
		orders:   make(map[uuid.UUID]*models.Order),
	}
	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

// memTx stages every mutation; reads see staged state first so fn observes
// its own writes.
type memTx struct {
	store    *MemoryStore
	customer *models.Customer
	holdings map[string]*models.Holding
	orders   map[uuid.UUID]*models.Order
}

func (t *memTx) GetCustomer(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	if t.customer != nil && t.customer.ID == id {
		return t.customer, nil
	}

	t.store.mu.RLock()
	c, ok := t.store.customers[id]
	t.store.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	cp := copyCustomer(c)
	t.customer = cp
	return cp, nil
}

func (t *memTx) UpdateCustomerBalance(_ context.Context, customer *models.Customer) error {
	t.customer = customer
	return nil
}

func (t *memTx) GetHolding(_ context.Context, customerID uuid.UUID, assetSymbol string) (*models.Holding, error) {
	if h, ok := t.holdings[assetSymbol]; ok {
		return h, nil
	}

	t.store.mu.RLock()
	h, ok := t.store.holdings[customerID][assetSymbol]
	t.store.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	cp := copyHolding(h)
	t.holdings[assetSymbol] = cp
	return cp, nil
}

func (t *memTx) SaveHolding(_ context.Context, holding *models.Holding) error {
	t.holdings[holding.AssetSymbol] = holding
	return nil
}

func (t *memTx) CreateOrder(_ context.Context, order *models.Order) error {
	t.orders[order.ID] = order
	return nil
}

func (t *memTx) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := t.orders[id]; ok {
		return o, nil
	}

	t.store.mu.RLock()
	o, ok := t.store.orders[id]
	t.store.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	cp := copyOrder(o)
	t.orders[id] = cp
	return cp, nil
}

func (t *memTx) UpdateOrderStatus(_ context.Context, order *models.Order) error {
	t.orders[order.ID] = order
	return nil
}

func (t *memTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.customer != nil {
		t.store.customers[t.customer.ID] = copyCustomer(t.customer)
	}
	for _, h := range t.holdings {
		bySymbol, ok := t.store.holdings[h.CustomerID]
		if !ok {
			bySymbol = make(map[string]*models.Holding)
			t.store.holdings[h.CustomerID] = bySymbol
		}
		bySymbol[h.AssetSymbol] = copyHolding(h)
	}
	for _, o := range t.orders {
		t.store.orders[o.ID] = copyOrder(o)
	}
}
