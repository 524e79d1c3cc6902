package repositories

import (
	"context"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/core/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cafeRepository implements CafeRepository interface
type cafeRepository struct {
	db *gorm.DB
}

// NewCafeRepository creates a new cafe repository
func NewCafeRepository(db *gorm.DB) CafeRepository {
	return &cafeRepository{db: db}
}

// Create creates a new cafe
func (r *cafeRepository) Create(ctx context.Context, cafe *models.Cafe) error {
	err := r.db.WithContext(ctx).Create(cafe).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateSlug
	}
	return errors.Wrap(err, "create cafe")
}

// GetByID gets a cafe by ID
func (r *cafeRepository) GetByID(ctx context.Context, id uint) (*models.Cafe, error) {
	var cafe models.Cafe
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cafe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCafeNotFound
		}
		return nil, errors.Wrap(err, "get cafe")
	}
	return &cafe, nil
}

// Update updates a cafe
func (r *cafeRepository) Update(ctx context.Context, cafe *models.Cafe) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(cafe).Error, "update cafe")
}

// List lists cafes with pagination
func (r *cafeRepository) List(ctx context.Context, offset, limit int) ([]*models.Cafe, int64, error) {
	var cafes []*models.Cafe
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Cafe{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count cafes")
	}

	if err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&cafes).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list cafes")
	}

	return cafes, total, nil
}

// ExistsBySlug checks if slug exists
func (r *cafeRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Cafe{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, errors.Wrap(err, "check slug")
}

// GetForUpdate gets a cafe with SELECT ... FOR UPDATE
func (r *cafeRepository) GetForUpdate(ctx context.Context, id uint) (*models.Cafe, error) {
	var cafe models.Cafe
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&cafe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCafeNotFound
		}
		return nil, errors.Wrap(err, "lock cafe")
	}
	return &cafe, nil
}
