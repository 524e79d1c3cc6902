package services

import (
	"context"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
)

// Note: pricing is a pure function in pricing.go
// Note: ledger, voucher and order services share one transaction through repositories.Store

// OrderNumberSequencer hands out the next human-readable order number for
// a cafe. It is called inside the order transaction.
type OrderNumberSequencer interface {
	Next(ctx context.Context, tx repositories.Store, cafe *models.Cafe) (string, error)
}
