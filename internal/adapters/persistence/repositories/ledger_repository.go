package repositories

import (
	"context"

	"cafe-ledger/internal/adapters/persistence/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// pointTransactionRepository implements PointTransactionRepository interface
type pointTransactionRepository struct {
	db *gorm.DB
}

// NewPointTransactionRepository creates a new ledger repository
func NewPointTransactionRepository(db *gorm.DB) PointTransactionRepository {
	return &pointTransactionRepository{db: db}
}

// Append inserts a ledger entry
func (r *pointTransactionRepository) Append(ctx context.Context, entry *models.PointTransaction) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(entry).Error, "append ledger entry")
}

// ListByCustomer returns a page of entries, newest first
func (r *pointTransactionRepository) ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.PointTransaction, int64, error) {
	var entries []*models.PointTransaction
	var total int64

	q := r.db.WithContext(ctx).Model(&models.PointTransaction{}).Where("customer_id = ?", customerID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count ledger entries")
	}

	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list ledger entries")
	}
	return entries, total, nil
}

// AllByCustomer returns every entry in creation order
func (r *pointTransactionRepository) AllByCustomer(ctx context.Context, customerID uint) ([]*models.PointTransaction, error) {
	var entries []*models.PointTransaction
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("id ASC").Find(&entries).Error
	return entries, errors.Wrap(err, "replay ledger")
}
