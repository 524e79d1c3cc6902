package services

import (
	"context"
	"strings"
	"unicode"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/core/domain"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CafeService manages cafes and their loyalty configuration
type CafeService struct {
	store repositories.Store
}

// NewCafeService creates a new cafe service
func NewCafeService(store repositories.Store) *CafeService {
	return &CafeService{store: store}
}

// CreateCafeInput represents cafe creation request
type CreateCafeInput struct {
	Name                string          `json:"name"`
	Slug                string          `json:"slug"`
	OwnerUserID         uint            `json:"owner_user_id"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	PointsPerDollar     *int64          `json:"points_per_dollar"`
	PointsPerRedemption *int64          `json:"points_per_redemption"`
}

// UpdateCafeConfigInput represents a partial config update
type UpdateCafeConfigInput struct {
	Name                *string          `json:"name"`
	TaxRate             *decimal.Decimal `json:"tax_rate"`
	PointsPerDollar     *int64           `json:"points_per_dollar"`
	PointsPerRedemption *int64           `json:"points_per_redemption"`
	IsActive            *bool            `json:"is_active"`
}

// Create creates a cafe
func (s *CafeService) Create(ctx context.Context, input CreateCafeInput) (*models.Cafe, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Invalid("name", "is required")
	}
	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, domain.Invalid("slug", "must contain letters or digits")
	}

	cafe := &models.Cafe{
		Name:                name,
		Slug:                slug,
		OwnerUserID:         input.OwnerUserID,
		TaxRate:             input.TaxRate,
		PointsPerDollar:     1,
		PointsPerRedemption: 100,
		IsActive:            true,
	}
	if input.PointsPerDollar != nil {
		cafe.PointsPerDollar = *input.PointsPerDollar
	}
	if input.PointsPerRedemption != nil {
		cafe.PointsPerRedemption = *input.PointsPerRedemption
	}
	if err := validateCafeConfig(cafe); err != nil {
		return nil, err
	}

	exists, err := s.store.Cafes().ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateSlug
	}
	if err := s.store.Cafes().Create(ctx, cafe); err != nil {
		return nil, err
	}

	log.Info().Uint("cafe_id", cafe.ID).Str("slug", cafe.Slug).Msg("cafe created")
	return cafe, nil
}

// Get gets a cafe by ID
func (s *CafeService) Get(ctx context.Context, id uint) (*models.Cafe, error) {
	return s.store.Cafes().GetByID(ctx, id)
}

// List lists cafes
func (s *CafeService) List(ctx context.Context, offset, limit int) ([]*models.Cafe, int64, error) {
	return s.store.Cafes().List(ctx, offset, limit)
}

// UpdateConfig applies the non-nil fields of input
func (s *CafeService) UpdateConfig(ctx context.Context, id uint, input UpdateCafeConfigInput) (*models.Cafe, error) {
	var cafe *models.Cafe
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		var err error
		cafe, err = tx.Cafes().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return domain.Invalid("name", "must not be empty")
			}
			cafe.Name = name
		}
		if input.TaxRate != nil {
			cafe.TaxRate = *input.TaxRate
		}
		if input.PointsPerDollar != nil {
			cafe.PointsPerDollar = *input.PointsPerDollar
		}
		if input.PointsPerRedemption != nil {
			cafe.PointsPerRedemption = *input.PointsPerRedemption
		}
		if input.IsActive != nil {
			cafe.IsActive = *input.IsActive
		}
		if err := validateCafeConfig(cafe); err != nil {
			return err
		}
		return tx.Cafes().Update(ctx, cafe)
	})
	if err != nil {
		return nil, err
	}
	return cafe, nil
}

func validateCafeConfig(c *models.Cafe) error {
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return domain.Invalid("tax_rate", "must be between 0 and 1")
	}
	if c.PointsPerDollar < 0 {
		return domain.Invalid("points_per_dollar", "must not be negative")
	}
	if c.PointsPerRedemption < 1 {
		return domain.Invalid("points_per_redemption", "must be at least 1")
	}
	return nil
}

// Slugify lowercases s and joins runs of letters and digits with dashes
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
