package services

import (
	"context"
	"errors"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// CustomerService maps identities onto loyalty accounts
type CustomerService struct {
	store repositories.Store
}

// NewCustomerService creates a new customer service
func NewCustomerService(store repositories.Store) *CustomerService {
	return &CustomerService{store: store}
}

// GetOrCreate returns the loyalty account of an identity, opening one on first use
func (s *CustomerService) GetOrCreate(ctx context.Context, userID uint, name string) (*models.Customer, error) {
	if userID == 0 {
		return nil, domain.Invalid("user_id", "is required")
	}

	customer, err := s.store.Customers().GetByUserID(ctx, userID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	customer = &models.Customer{
		UserID: userID,
		Name:   name,
		Tier:   string(domain.TierBronze),
	}
	err = s.store.Customers().Create(ctx, customer)
	if errors.Is(err, domain.ErrConflict) {
		// Another request opened it first
		return s.store.Customers().GetByUserID(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	log.Info().Uint("customer_id", customer.ID).Uint("user_id", userID).Msg("customer account opened")
	return customer, nil
}

// Get gets a customer by ID
func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	return s.store.Customers().GetByID(ctx, id)
}
