package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// gormStore implements Store on top of GORM
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM backed store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Cafes() CafeRepository { return NewCafeRepository(s.db) }
func (s *gormStore) Products() ProductRepository { return NewProductRepository(s.db) }
func (s *gormStore) Customers() CustomerRepository { return NewCustomerRepository(s.db) }
func (s *gormStore) Ledger() PointTransactionRepository { return NewPointTransactionRepository(s.db) }
func (s *gormStore) Vouchers() VoucherRepository { return NewVoucherRepository(s.db) }
func (s *gormStore) Orders() OrderRepository { return NewOrderRepository(s.db) }

// WithinTx runs fn inside a database transaction.
// Nested calls become savepoints.
func (s *gormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// Ping checks database connectivity
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	return sqlDB.PingContext(ctx)
}
