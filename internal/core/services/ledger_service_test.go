package services

import (
	"math/rand"
	"testing"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_EarnWritesBalanceAndEntry(t *testing.T) {
	env := newTestEnv(t)
	c := env.newCustomer(t, 1, 0)

	res, err := env.ledger.Earn(env.ctx, PointsInput{
		CustomerID:  c.ID,
		CafeID:      &env.cafe.ID,
		Points:      120,
		Description: "manual credit",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120), res.NewBalance)

	got := env.customer(t, c.ID)
	assert.Equal(t, int64(120), got.PointsBalance)
	assert.Equal(t, int64(120), got.LifetimePoints)

	entries := env.ledgerEntries(t, c.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, string(domain.TxEarn), entries[0].Type)
	assert.Equal(t, int64(120), entries[0].Points)
	assert.Equal(t, int64(120), entries[0].BalanceAfter)
	assert.Equal(t, env.cafe.ID, *entries[0].CafeID)
	assert.Equal(t, 120.0, env.counter(t, "cafe_points_total", "type", "EARN"))
}

func TestLedger_EarnPromotesTier(t *testing.T) {
	env := newTestEnv(t)
	c := &models.Customer{UserID: 7, Name: "Regular", LifetimePoints: 999, Tier: string(domain.TierBronze)}
	require.NoError(t, env.store.Customers().Create(env.ctx, c))

	res, err := env.ledger.Earn(env.ctx, PointsInput{CustomerID: c.ID, Points: 1})
	require.NoError(t, err)

	got := env.customer(t, c.ID)
	assert.Equal(t, int64(1000), got.LifetimePoints)
	assert.Equal(t, string(domain.TierSilver), got.Tier)
	assert.Equal(t, string(domain.TierSilver), res.Tier)
}

func TestLedger_RedeemKeepsTier(t *testing.T) {
	env := newTestEnv(t)
	c := env.newCustomer(t, 1, 1200)
	require.Equal(t, string(domain.TierSilver), env.customer(t, c.ID).Tier)

	_, err := env.ledger.Redeem(env.ctx, PointsInput{CustomerID: c.ID, Points: 1100})
	require.NoError(t, err)

	got := env.customer(t, c.ID)
	assert.Equal(t, int64(100), got.PointsBalance)
	assert.Equal(t, int64(1200), got.LifetimePoints)
	assert.Equal(t, string(domain.TierSilver), got.Tier)
}

func TestLedger_RedeemMoreThanBalance(t *testing.T) {
	env := newTestEnv(t)
	c := env.newCustomer(t, 1, 50)

	_, err := env.ledger.Redeem(env.ctx, PointsInput{CustomerID: c.ID, Points: 100})
	require.ErrorIs(t, err, domain.ErrInsufficientPoints)
	assert.Equal(t, domain.KindInsufficientPoints, domain.KindOf(err))

	assert.Equal(t, int64(50), env.customer(t, c.ID).PointsBalance)
	assert.Len(t, env.ledgerEntries(t, c.ID), 1)
}

func TestLedger_RejectsInvalidRequests(t *testing.T) {
	env := newTestEnv(t)
	c := env.newCustomer(t, 1, 10)

	_, err := env.ledger.Earn(env.ctx, PointsInput{CustomerID: c.ID, Points: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.ledger.Redeem(env.ctx, PointsInput{CustomerID: c.ID, Points: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.ledger.Earn(env.ctx, PointsInput{CustomerID: 999, Points: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.ledger.Redeem(env.ctx, PointsInput{CustomerID: 999, Points: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Len(t, env.ledgerEntries(t, c.ID), 1)
}

func TestLedger_ReplayReproducesBalance(t *testing.T) {
	env := newTestEnv(t)
	c := env.newCustomer(t, 1, 0)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		points := int64(rng.Intn(300) + 1)
		if rng.Intn(2) == 0 {
			_, err := env.ledger.Earn(env.ctx, PointsInput{CustomerID: c.ID, Points: points})
			require.NoError(t, err)
			continue
		}
		_, err := env.ledger.Redeem(env.ctx, PointsInput{CustomerID: c.ID, Points: points})
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientPoints)
		}
	}

	var running int64
	for _, e := range env.ledgerEntries(t, c.ID) {
		running += e.Points
		require.Equal(t, running, e.BalanceAfter)
		require.GreaterOrEqual(t, running, int64(0))
	}
	assert.Equal(t, env.customer(t, c.ID).PointsBalance, running)

	report, err := env.ledger.Audit(env.ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, running, report.ReplayedBalance)
	assert.Nil(t, report.FirstMismatchID)
}

func TestLedger_AuditFlagsMismatch(t *testing.T) {
	env := newTestEnv(t)
	c := env.newCustomer(t, 1, 100)

	bogus := &models.PointTransaction{
		CustomerID:   c.ID,
		Type:         string(domain.TxEarn),
		Points:       10,
		BalanceAfter: 999,
	}
	require.NoError(t, env.store.Ledger().Append(env.ctx, bogus))

	report, err := env.ledger.Audit(env.ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	require.NotNil(t, report.FirstMismatchID)
	assert.Equal(t, bogus.ID, *report.FirstMismatchID)
	assert.Equal(t, int64(110), report.ReplayedBalance)
	assert.Equal(t, int64(100), report.StoredBalance)
}

func TestLedger_History(t *testing.T) {
	env := newTestEnv(t)
	c := env.newCustomer(t, 1, 100)
	_, err := env.ledger.Redeem(env.ctx, PointsInput{CustomerID: c.ID, Points: 30})
	require.NoError(t, err)

	entries, total, err := env.ledger.History(env.ctx, c.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(-30), entries[0].Points)
	assert.Equal(t, int64(70), entries[0].BalanceAfter)

	_, _, err = env.ledger.History(env.ctx, 404, 0, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
