package services

import (
	"context"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/core/domain"
	"cafe-ledger/internal/pkg/metrics"

	"github.com/rs/zerolog/log"
)

// LedgerService owns every change to a customer's points balance.
// Each balance mutation and its ledger entry are written in one transaction.
type LedgerService struct {
	store   repositories.Store
	metrics *metrics.Metrics
}

// NewLedgerService creates a new ledger service
func NewLedgerService(store repositories.Store, m *metrics.Metrics) *LedgerService {
	return &LedgerService{
		store:   store,
		metrics: m,
	}
}

// PointsInput is a single earn or redeem request
type PointsInput struct {
	CustomerID  uint   `json:"customer_id"`
	CafeID      *uint  `json:"cafe_id"`
	Points      int64  `json:"points"`
	OrderID     *uint  `json:"order_id"`
	Description string `json:"description"`
}

// PointsResult is the outcome of a balance change
type PointsResult struct {
	NewBalance    int64  `json:"new_balance"`
	Tier          string `json:"tier"`
	TransactionID uint   `json:"transaction_id"`
}

// Earn credits points and re-evaluates the customer's tier
func (s *LedgerService) Earn(ctx context.Context, input PointsInput) (*PointsResult, error) {
	var result *PointsResult
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		var err error
		result, err = s.earn(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Points(string(domain.TxEarn), input.Points)
	return result, nil
}

// Redeem debits points. It fails with domain.ErrInsufficientPoints and
// writes nothing when the balance does not cover the request.
func (s *LedgerService) Redeem(ctx context.Context, input PointsInput) (*PointsResult, error) {
	var result *PointsResult
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		var err error
		result, err = s.redeem(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Points(string(domain.TxRedeem), input.Points)
	return result, nil
}

// earn runs inside the caller's transaction
func (s *LedgerService) earn(ctx context.Context, tx repositories.Store, input PointsInput) (*PointsResult, error) {
	if input.Points <= 0 {
		return nil, domain.Invalid("points", "must be greater than zero")
	}

	// 1. Increment balance and lifetime points
	balance, err := tx.Customers().AddPoints(ctx, input.CustomerID, input.Points)
	if err != nil {
		return nil, err
	}

	// 2. Append the matching entry
	entry := &models.PointTransaction{
		CustomerID:   input.CustomerID,
		CafeID:       input.CafeID,
		OrderID:      input.OrderID,
		Type:         string(domain.TxEarn),
		Points:       input.Points,
		BalanceAfter: balance,
		Description:  input.Description,
	}
	if err := tx.Ledger().Append(ctx, entry); err != nil {
		return nil, err
	}

	// 3. Re-classify; the row is locked by the increment so this read is current
	customer, err := tx.Customers().GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	tier := domain.TierFor(customer.LifetimePoints)
	if string(tier) != customer.Tier {
		if err := tx.Customers().UpdateTier(ctx, customer.ID, string(tier)); err != nil {
			return nil, err
		}
		log.Info().
			Uint("customer_id", customer.ID).
			Str("from", customer.Tier).
			Str("to", string(tier)).
			Msg("customer tier changed")
	}

	return &PointsResult{
		NewBalance:    balance,
		Tier:          string(tier),
		TransactionID: entry.ID,
	}, nil
}

// redeem runs inside the caller's transaction
func (s *LedgerService) redeem(ctx context.Context, tx repositories.Store, input PointsInput) (*PointsResult, error) {
	if input.Points <= 0 {
		return nil, domain.Invalid("points", "must be greater than zero")
	}

	customer, err := tx.Customers().GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	// Conditional decrement; a stale read above can never overdraw
	balance, err := tx.Customers().DeductPoints(ctx, customer.ID, input.Points)
	if err != nil {
		return nil, err
	}

	entry := &models.PointTransaction{
		CustomerID:   customer.ID,
		CafeID:       input.CafeID,
		OrderID:      input.OrderID,
		Type:         string(domain.TxRedeem),
		Points:       -input.Points,
		BalanceAfter: balance,
		Description:  input.Description,
	}
	if err := tx.Ledger().Append(ctx, entry); err != nil {
		return nil, err
	}

	return &PointsResult{
		NewBalance:    balance,
		Tier:          customer.Tier,
		TransactionID: entry.ID,
	}, nil
}

// History lists a customer's ledger entries, newest first
func (s *LedgerService) History(ctx context.Context, customerID uint, offset, limit int) ([]*models.PointTransaction, int64, error) {
	if _, err := s.store.Customers().GetByID(ctx, customerID); err != nil {
		return nil, 0, err
	}
	return s.store.Ledger().ListByCustomer(ctx, customerID, offset, limit)
}

// AuditReport compares the stored balance with a replay of the ledger
type AuditReport struct {
	CustomerID      uint  `json:"customer_id"`
	StoredBalance   int64 `json:"stored_balance"`
	ReplayedBalance int64 `json:"replayed_balance"`
	Entries         int   `json:"entries"`
	Consistent      bool  `json:"consistent"`
	FirstMismatchID *uint `json:"first_mismatch_id,omitempty"`
}

// Audit replays every entry in order. The ledger is consistent when each
// snapshot equals the running sum, the sum never dips below zero and the
// final sum equals the stored balance.
func (s *LedgerService) Audit(ctx context.Context, customerID uint) (*AuditReport, error) {
	report := &AuditReport{CustomerID: customerID}

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		customer, err := tx.Customers().GetByID(ctx, customerID)
		if err != nil {
			return err
		}
		entries, err := tx.Ledger().AllByCustomer(ctx, customerID)
		if err != nil {
			return err
		}

		report.StoredBalance = customer.PointsBalance
		report.Entries = len(entries)
		report.Consistent = true

		var running int64
		for _, e := range entries {
			running += e.Points
			if report.Consistent && (running != e.BalanceAfter || running < 0) {
				id := e.ID
				report.FirstMismatchID = &id
				report.Consistent = false
			}
		}
		report.ReplayedBalance = running
		if running != customer.PointsBalance {
			report.Consistent = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !report.Consistent {
		log.Warn().
			Uint("customer_id", customerID).
			Int64("stored", report.StoredBalance).
			Int64("replayed", report.ReplayedBalance).
			Msg("ledger audit found a mismatch")
	}
	return report, nil
}
