package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/core/domain"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomer(t *testing.T, s *Store, balance int64) *models.Customer {
	t.Helper()
	c := &models.Customer{UserID: 1, Name: "Ada", PointsBalance: balance, Tier: string(domain.TierBronze)}
	require.NoError(t, s.Customers().Create(context.Background(), c))
	return c
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := newCustomer(t, s, 100)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx repositories.Store) error {
		_, err := tx.Customers().AddPoints(ctx, c.ID, 50)
		require.NoError(t, err)
		require.NoError(t, tx.Ledger().Append(ctx, &models.PointTransaction{CustomerID: c.ID, Points: 50, BalanceAfter: 150}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Customers().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.PointsBalance)

	entries, err := s.Ledger().AllByCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithinTx_NestedRollbackKeepsOuterWork(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := newCustomer(t, s, 0)

	err := s.WithinTx(ctx, func(tx repositories.Store) error {
		_, err := tx.Customers().AddPoints(ctx, c.ID, 10)
		require.NoError(t, err)

		inner := tx.WithinTx(ctx, func(tx repositories.Store) error {
			_, err := tx.Customers().AddPoints(ctx, c.ID, 5)
			require.NoError(t, err)
			return domain.ErrConflict
		})
		assert.ErrorIs(t, inner, domain.ErrConflict)
		return nil
	})
	require.NoError(t, err)

	got, err := s.Customers().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.PointsBalance)
}

func TestWithinTx_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := New().WithinTx(ctx, func(tx repositories.Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestDeductPoints_ConcurrentNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := newCustomer(t, s, 100)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithinTx(ctx, func(tx repositories.Store) error {
				_, err := tx.Customers().DeductPoints(ctx, c.ID, 30)
				return err
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, success)
	got, err := s.Customers().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.PointsBalance)
}

func TestCustomers_DuplicateUserID(t *testing.T) {
	s := New()
	newCustomer(t, s, 0)

	err := s.Customers().Create(context.Background(), &models.Customer{UserID: 1})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestOrders_UniqueNumberPerCafe(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Orders().Create(ctx, &models.Order{CafeID: 1, OrderNumber: "B-0001", PublicID: "a"}))
	require.NoError(t, s.Orders().Create(ctx, &models.Order{CafeID: 2, OrderNumber: "B-0001", PublicID: "b"}))

	err := s.Orders().Create(ctx, &models.Order{CafeID: 1, OrderNumber: "B-0001", PublicID: "c"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	n, err := s.Orders().MaxNumberByCafe(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOrders_MaxNumberSkipsGaps(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i, num := range []string{"B-0001", "B-0007", "X-0003", "walk-in"} {
		require.NoError(t, s.Orders().Create(ctx, &models.Order{CafeID: 1, OrderNumber: num, PublicID: string(rune('a' + i))}))
	}
	require.NoError(t, s.Orders().Create(ctx, &models.Order{CafeID: 2, OrderNumber: "B-0042", PublicID: "z"}))

	n, err := s.Orders().MaxNumberByCafe(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = s.Orders().MaxNumberByCafe(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrders_StatusCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := New()
	o := &models.Order{CafeID: 1, OrderNumber: "B-0001", PublicID: "a", Status: string(domain.StatusPending)}
	require.NoError(t, s.Orders().Create(ctx, o))

	require.NoError(t, s.Orders().UpdateStatus(ctx, o.ID, "PENDING", "PREPARING", nil))
	err := s.Orders().UpdateStatus(ctx, o.ID, "PENDING", "CANCELLED", nil)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestVouchers_MarkUsedOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	v := &models.Voucher{Code: "ABCDEFGH", CustomerID: 1, Status: models.VoucherStatusActive, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.Vouchers().Create(ctx, v))

	err := s.Vouchers().Create(ctx, &models.Voucher{Code: "ABCDEFGH"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, s.Vouchers().MarkUsed(ctx, v.ID, time.Now(), nil))
	assert.ErrorIs(t, s.Vouchers().MarkUsed(ctx, v.ID, time.Now(), nil), domain.ErrAlreadyUsed)

	n, err := s.Vouchers().ExpireBefore(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
