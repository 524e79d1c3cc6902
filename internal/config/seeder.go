package config

import (
	"context"

	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/core/services"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Seeder handles database seeding
type Seeder struct {
	cafes    *services.CafeService
	products *services.ProductService
}

// NewSeeder creates a new seeder instance
func NewSeeder(store repositories.Store) *Seeder {
	return &Seeder{
		cafes:    services.NewCafeService(store),
		products: services.NewProductService(store),
	}
}

// Run executes all seeders
// This is for development only; production cafes are created through the API
func (s *Seeder) Run(ctx context.Context) error {
	log.Info().Msg("running database seeders")

	if err := s.seedDemoCafe(ctx); err != nil {
		log.Warn().Err(err).Msg("demo cafe seeder skipped")
	}

	log.Info().Msg("database seeding completed")
	return nil
}

type seedProduct struct {
	name     string
	category string
	price    string
	options  []services.OptionInput
}

var demoMenu = []seedProduct{
	{"Espresso", "Coffee", "3.00", nil},
	{"Latte", "Coffee", "4.50", []services.OptionInput{
		{Name: "Oat milk", PriceDelta: decimal.RequireFromString("0.60")},
		{Name: "Extra shot", PriceDelta: decimal.RequireFromString("0.80")},
		{Name: "Large", PriceDelta: decimal.RequireFromString("1.00")},
	}},
	{"Cappuccino", "Coffee", "4.25", []services.OptionInput{
		{Name: "Oat milk", PriceDelta: decimal.RequireFromString("0.60")},
	}},
	{"Matcha Latte", "Tea", "5.00", nil},
	{"Butter Croissant", "Bakery", "3.50", nil},
	{"Blueberry Muffin", "Bakery", "3.25", nil},
}

// seedDemoCafe creates one cafe with a small menu when no cafe exists
func (s *Seeder) seedDemoCafe(ctx context.Context) error {
	_, total, err := s.cafes.List(ctx, 0, 1)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	cafe, err := s.cafes.Create(ctx, services.CreateCafeInput{
		Name:    "Demo Cafe",
		Slug:    "demo-cafe",
		TaxRate: decimal.RequireFromString("0.0825"),
	})
	if err != nil {
		return err
	}

	for _, p := range demoMenu {
		if _, err := s.products.Create(ctx, cafe.ID, services.CreateProductInput{
			Name:     p.name,
			Category: p.category,
			Price:    decimal.RequireFromString(p.price),
			Options:  p.options,
		}); err != nil {
			return err
		}
	}

	log.Info().Uint("cafe_id", cafe.ID).Int("products", len(demoMenu)).Msg("demo cafe seeded")
	return nil
}
