package repositories

import (
	"context"
	"time"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/core/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// orderRepository implements OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts an order and its line items
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Create(order).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateOrderNo
	}
	return errors.Wrap(err, "create order")
}

// GetByID gets an order with its items
func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	return &order, nil
}

// GetByPublicID gets an order by its public reference
func (r *orderRepository) GetByPublicID(ctx context.Context, publicID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("public_id = ?", publicID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "get order by public id")
	}
	return &order, nil
}

// MaxNumberByCafe reads the largest numeric suffix of the cafe's order numbers
func (r *orderRepository) MaxNumberByCafe(ctx context.Context, cafeID uint) (int64, error) {
	var highest int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(MAX(CAST(SUBSTRING_INDEX(order_number, '-', -1) AS UNSIGNED)), 0)").
		Where("cafe_id = ?", cafeID).
		Scan(&highest).Error
	return highest, errors.Wrap(err, "highest order number")
}

// ListByCafe lists a cafe's orders, newest first, optionally by status
func (r *orderRepository) ListByCafe(ctx context.Context, cafeID uint, status string, offset, limit int) ([]*models.Order, int64, error) {
	var orders []*models.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("cafe_id = ?", cafeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count cafe orders")
	}

	if err := q.Preload("Items").Order("id DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list cafe orders")
	}
	return orders, total, nil
}

// ListByCustomer lists a customer's orders, newest first
func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.Order, int64, error) {
	var orders []*models.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("customer_id = ?", customerID).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count customer orders")
	}

	if err := q.Preload("Items").Order("id DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list customer orders")
	}
	return orders, total, nil
}

// UpdateStatus applies a guarded status change
func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, from, to string, completedAt *time.Time) error {
	updates := map[string]interface{}{
		"status": to,
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}

	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update order status")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(domain.ErrConflict, "order status changed concurrently")
	}
	return nil
}
