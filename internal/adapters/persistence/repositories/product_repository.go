package repositories

import (
	"context"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/core/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// productRepository implements ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a product together with its options
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(product).Error, "create product")
}

// GetByID gets a product with its options
func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Options").Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "get product")
	}
	return &product, nil
}

// ListByCafe returns the menu of a cafe
func (r *productRepository) ListByCafe(ctx context.Context, cafeID uint, onlyAvailable bool) ([]*models.Product, error) {
	var products []*models.Product
	q := r.db.WithContext(ctx).Preload("Options").Where("cafe_id = ?", cafeID)
	if onlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	err := q.Order("category ASC, name ASC").Find(&products).Error
	return products, errors.Wrap(err, "list products")
}

// UpdateAvailability toggles a product on or off the menu
func (r *productRepository) UpdateAvailability(ctx context.Context, id uint, available bool) error {
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_available", available).Error
	return errors.Wrap(err, "update availability")
}

// DeleteOptions removes every modifier option owned by a product
func (r *productRepository) DeleteOptions(ctx context.Context, productID uint) error {
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ModifierOption{}).Error
	return errors.Wrap(err, "delete options")
}

// Delete removes a product row. Options must be removed first by the caller.
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
