package repositories

import (
	"context"
	"time"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/core/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// voucherRepository implements VoucherRepository interface
type voucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository creates a new voucher repository
func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

// Create inserts a voucher. A duplicate code surfaces as domain.ErrConflict.
func (r *voucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	err := r.db.WithContext(ctx).Create(voucher).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(domain.ErrConflict, "voucher code taken")
	}
	return errors.Wrap(err, "create voucher")
}

// ExistsByCode checks if a code has been issued
func (r *voucherRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Voucher{}).Where("code = ?", code).Count(&count).Error
	return count > 0, errors.Wrap(err, "check voucher code")
}

// GetByCodeForUpdate loads a voucher and locks its row for the transaction
func (r *voucherRepository) GetByCodeForUpdate(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&voucher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVoucherNotFound
		}
		return nil, errors.Wrap(err, "get voucher")
	}
	return &voucher, nil
}

// MarkUsed transitions ACTIVE → USED
func (r *voucherRepository) MarkUsed(ctx context.Context, id uint, usedAt time.Time, orderID *uint) error {
	res := r.db.WithContext(ctx).Model(&models.Voucher{}).
		Where("id = ? AND status = ?", id, models.VoucherStatusActive).
		Updates(map[string]interface{}{
			"status":   models.VoucherStatusUsed,
			"used_at":  usedAt,
			"order_id": orderID,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "mark voucher used")
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyUsed
	}
	return nil
}

// ListByCustomer returns a customer's vouchers, newest first
func (r *voucherRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*models.Voucher, error) {
	var vouchers []*models.Voucher
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("id DESC").Find(&vouchers).Error
	return vouchers, errors.Wrap(err, "list vouchers")
}

// ExpireBefore persists EXPIRED on lapsed ACTIVE vouchers
func (r *voucherRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Voucher{}).
		Where("status = ? AND expires_at <= ?", models.VoucherStatusActive, now).
		Update("status", models.VoucherStatusExpired)
	return res.RowsAffected, errors.Wrap(res.Error, "expire vouchers")
}
