// Package memstore is an in-process implementation of repositories.Store.
// Transactions are serialized behind one mutex and roll back by restoring
// a snapshot, which gives the same all-or-nothing and conditional-update
// guarantees as the SQL store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
)

type state struct {
	cafes     map[uint]models.Cafe
	products  map[uint]models.Product
	options   map[uint]models.ModifierOption
	customers map[uint]models.Customer
	ledger    []models.PointTransaction
	vouchers  map[uint]models.Voucher
	orders    map[uint]models.Order
	items     map[uint]models.OrderItem
	seq       map[string]uint
}

func newState() *state {
	return &state{
		cafes:     map[uint]models.Cafe{},
		products:  map[uint]models.Product{},
		options:   map[uint]models.ModifierOption{},
		customers: map[uint]models.Customer{},
		vouchers:  map[uint]models.Voucher{},
		orders:    map[uint]models.Order{},
		items:     map[uint]models.OrderItem{},
		seq:       map[string]uint{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.cafes {
		c.cafes[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.options {
		c.options[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.vouchers {
		c.vouchers[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	c.ledger = append([]models.PointTransaction(nil), s.ledger...)
	return c
}

func (s *state) nextID(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

type memDB struct {
	mu sync.Mutex
	st *state
}

// Store implements repositories.Store in memory
type Store struct {
	db   *memDB
	inTx bool
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{db: &memDB{st: newState()}}
}

var _ repositories.Store = (*Store)(nil)

// do runs fn against the current state, taking the lock unless a
// transaction already holds it.
func (s *Store) do(fn func(st *state) error) error {
	if !s.inTx {
		s.db.mu.Lock()
		defer s.db.mu.Unlock()
	}
	return fn(s.db.st)
}

func (s *Store) Cafes() repositories.CafeRepository { return &cafeRepo{s} }
func (s *Store) Products() repositories.ProductRepository { return &productRepo{s} }
func (s *Store) Customers() repositories.CustomerRepository { return &customerRepo{s} }
func (s *Store) Ledger() repositories.PointTransactionRepository { return &ledgerRepo{s} }
func (s *Store) Vouchers() repositories.VoucherRepository { return &voucherRepo{s} }
func (s *Store) Orders() repositories.OrderRepository { return &orderRepo{s} }

// WithinTx runs fn atomically. Nested calls behave like savepoints.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	if !s.inTx {
		s.db.mu.Lock()
		defer s.db.mu.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.db.st.clone()
	if err := fn(&Store{db: s.db, inTx: true}); err != nil {
		s.db.st = snapshot
		return err
	}
	return nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func now() time.Time {
	return time.Now()
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func sortByIDDesc[T any](list []*T, id func(*T) uint) {
	sort.Slice(list, func(i, j int) bool { return id(list[i]) > id(list[j]) })
}
