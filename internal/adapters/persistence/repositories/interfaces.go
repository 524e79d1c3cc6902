package repositories

import (
	"context"
	"time"

	"cafe-ledger/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

// Store groups the repositories and the transaction boundary.
// Repositories obtained from the Store passed to WithinTx's callback
// take part in that transaction.
type Store interface {
	Cafes() CafeRepository
	Products() ProductRepository
	Customers() CustomerRepository
	Ledger() PointTransactionRepository
	Vouchers() VoucherRepository
	Orders() OrderRepository

	// WithinTx runs fn in one atomic unit. Any error from fn rolls back
	// every write made through the tx store.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

// CafeRepository defines cafe repository interface
type CafeRepository interface {
	Create(ctx context.Context, cafe *models.Cafe) error
	GetByID(ctx context.Context, id uint) (*models.Cafe, error)
	Update(ctx context.Context, cafe *models.Cafe) error
	List(ctx context.Context, offset, limit int) ([]*models.Cafe, int64, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	// GetForUpdate loads a cafe holding its row lock until the transaction ends
	GetForUpdate(ctx context.Context, id uint) (*models.Cafe, error)
}

// ProductRepository defines product repository interface
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	ListByCafe(ctx context.Context, cafeID uint, onlyAvailable bool) ([]*models.Product, error)
	UpdateAvailability(ctx context.Context, id uint, available bool) error
	DeleteOptions(ctx context.Context, productID uint) error
	Delete(ctx context.Context, id uint) error
}

// CustomerRepository defines customer repository interface.
// Balance mutations are single conditional statements so concurrent
// requests can never drive a balance below zero.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Customer, error)
	// AddPoints increments balance and lifetime points, returning the new balance
	AddPoints(ctx context.Context, id uint, points int64) (int64, error)
	// DeductPoints decrements the balance only if it covers points;
	// returns domain.ErrInsufficientPoints when it does not
	DeductPoints(ctx context.Context, id uint, points int64) (int64, error)
	UpdateTier(ctx context.Context, id uint, tier string) error
	RecordOrder(ctx context.Context, id uint, spend decimal.Decimal) error
}

// PointTransactionRepository defines the append-only ledger.
// There is no update or delete.
type PointTransactionRepository interface {
	Append(ctx context.Context, entry *models.PointTransaction) error
	ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.PointTransaction, int64, error)
	AllByCustomer(ctx context.Context, customerID uint) ([]*models.PointTransaction, error)
}

// VoucherRepository defines voucher repository interface
type VoucherRepository interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*models.Voucher, error)
	// MarkUsed flips an ACTIVE voucher to USED; domain.ErrAlreadyUsed if it was not ACTIVE
	MarkUsed(ctx context.Context, id uint, usedAt time.Time, orderID *uint) error
	ListByCustomer(ctx context.Context, customerID uint) ([]*models.Voucher, error)
	// ExpireBefore moves ACTIVE vouchers whose expiry is at or before now to EXPIRED
	ExpireBefore(ctx context.Context, now time.Time) (int64, error)
}

// OrderRepository defines order repository interface
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByPublicID(ctx context.Context, publicID string) (*models.Order, error)
	// MaxNumberByCafe returns the highest counter among the cafe's order numbers, 0 if none
	MaxNumberByCafe(ctx context.Context, cafeID uint) (int64, error)
	ListByCafe(ctx context.Context, cafeID uint, status string, offset, limit int) ([]*models.Order, int64, error)
	ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.Order, int64, error)
	// UpdateStatus moves an order from one status to another; domain.ErrConflict if it is no longer in from
	UpdateStatus(ctx context.Context, id uint, from, to string, completedAt *time.Time) error
}
