package services

import (
	"context"
	"fmt"
	"strings"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/core/domain"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ProductService manages a cafe's menu
type ProductService struct {
	store repositories.Store
}

// NewProductService creates a new product service
func NewProductService(store repositories.Store) *ProductService {
	return &ProductService{store: store}
}

// OptionInput is one modifier option of a new product
type OptionInput struct {
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// CreateProductInput represents product creation request
type CreateProductInput struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Options  []OptionInput   `json:"options"`
}

// Create adds a product and its options to a cafe's menu
func (s *ProductService) Create(ctx context.Context, cafeID uint, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Invalid("name", "is required")
	}
	if input.Price.IsNegative() {
		return nil, domain.Invalid("price", "must not be negative")
	}

	product := &models.Product{
		CafeID:      cafeID,
		Name:        name,
		Category:    strings.TrimSpace(input.Category),
		Price:       input.Price,
		IsAvailable: true,
	}
	for i, o := range input.Options {
		optName := strings.TrimSpace(o.Name)
		if optName == "" {
			return nil, domain.Invalid(fmt.Sprintf("options[%d].name", i), "is required")
		}
		product.Options = append(product.Options, models.ModifierOption{
			Name:       optName,
			PriceDelta: o.PriceDelta,
		})
	}

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Cafes().GetByID(ctx, cafeID); err != nil {
			return err
		}
		return tx.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Get gets a product with its options
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.store.Products().GetByID(ctx, id)
}

// ListMenu lists a cafe's products
func (s *ProductService) ListMenu(ctx context.Context, cafeID uint, onlyAvailable bool) ([]*models.Product, error) {
	if _, err := s.store.Cafes().GetByID(ctx, cafeID); err != nil {
		return nil, err
	}
	return s.store.Products().ListByCafe(ctx, cafeID, onlyAvailable)
}

// SetAvailability toggles whether a product can be ordered
func (s *ProductService) SetAvailability(ctx context.Context, id uint, available bool) (*models.Product, error) {
	var product *models.Product
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		var err error
		if product, err = tx.Products().GetByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Products().UpdateAvailability(ctx, id, available); err != nil {
			return err
		}
		product.IsAvailable = available
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product and, in the same transaction, its options
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Products().GetByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Products().DeleteOptions(ctx, id); err != nil {
			return err
		}
		return tx.Products().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Info().Uint("product_id", id).Msg("product deleted")
	return nil
}
