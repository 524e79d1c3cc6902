package repositories

import (
	"context"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/core/domain"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// customerRepository implements CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create creates a new customer
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	err := r.db.WithContext(ctx).Create(customer).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(domain.ErrConflict, "customer already exists")
	}
	return errors.Wrap(err, "create customer")
}

// GetByID gets a customer by ID
func (r *customerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, errors.Wrap(err, "get customer")
	}
	return &customer, nil
}

// GetByUserID gets a customer by identity user ID
func (r *customerRepository) GetByUserID(ctx context.Context, userID uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, errors.Wrap(err, "get customer by user")
	}
	return &customer, nil
}

// AddPoints increments balance and lifetime points in one statement
func (r *customerRepository) AddPoints(ctx context.Context, id uint, points int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"points_balance":  gorm.Expr("points_balance + ?", points),
			"lifetime_points": gorm.Expr("lifetime_points + ?", points),
		})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "add points")
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrCustomerNotFound
	}
	return r.balance(ctx, id)
}

// DeductPoints decrements the balance guarded by balance >= points.
// Zero affected rows means the balance did not cover the amount.
func (r *customerRepository) DeductPoints(ctx context.Context, id uint, points int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ? AND points_balance >= ?", id, points).
		UpdateColumn("points_balance", gorm.Expr("points_balance - ?", points))
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "deduct points")
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrInsufficientPoints
	}
	return r.balance(ctx, id)
}

// balance reads the balance written by this transaction
func (r *customerRepository) balance(ctx context.Context, id uint) (int64, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Select("points_balance").Where("id = ?", id).Take(&customer).Error
	if err != nil {
		return 0, errors.Wrap(err, "read balance")
	}
	return customer.PointsBalance, nil
}

// UpdateTier stores a recomputed tier
func (r *customerRepository) UpdateTier(ctx context.Context, id uint, tier string) error {
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Update("tier", tier).Error
	return errors.Wrap(err, "update tier")
}

// RecordOrder bumps lifetime spend and order count
func (r *customerRepository) RecordOrder(ctx context.Context, id uint, spend decimal.Decimal) error {
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"lifetime_spend": gorm.Expr("lifetime_spend + ?", spend),
			"total_orders":   gorm.Expr("total_orders + ?", 1),
		}).Error
	return errors.Wrap(err, "record order")
}
