package cache

import (
	"context"
	"fmt"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/core/domain"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

// OrderSequencer numbers orders with a per-cafe Redis counter.
// A missing counter is seeded from the highest stored order number so a
// flushed Redis never hands out numbers that already exist. Numbers taken
// by orders that later roll back are not reused, which leaves gaps.
type OrderSequencer struct {
	client goredis.UniversalClient
}

// NewOrderSequencer creates a Redis-backed sequencer
func NewOrderSequencer(client goredis.UniversalClient) *OrderSequencer {
	return &OrderSequencer{client: client}
}

func orderSeqKey(cafeID uint) string {
	return fmt.Sprintf("cafe:%d:order_seq", cafeID)
}

// Next returns the cafe's next order number
func (s *OrderSequencer) Next(ctx context.Context, tx repositories.Store, cafe *models.Cafe) (string, error) {
	key := orderSeqKey(cafe.ID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return "", errors.Wrap(err, "check order sequence")
	}
	if exists == 0 {
		highest, err := tx.Orders().MaxNumberByCafe(ctx, cafe.ID)
		if err != nil {
			return "", err
		}
		if err := s.client.SetNX(ctx, key, highest, 0).Err(); err != nil {
			return "", errors.Wrap(err, "seed order sequence")
		}
	}

	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return "", errors.Wrap(err, "increment order sequence")
	}
	return domain.FormatOrderNumber(cafe.Initial(), n), nil
}
