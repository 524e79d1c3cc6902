package services

import (
	"testing"

	"cafe-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomer_GetOrCreate(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.customers.GetOrCreate(env.ctx, 42, "Ada")
	require.NoError(t, err)
	assert.Equal(t, string(domain.TierBronze), first.Tier)
	assert.Zero(t, first.PointsBalance)

	again, err := env.customers.GetOrCreate(env.ctx, 42, "Ada L.")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = env.customers.GetOrCreate(env.ctx, 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.customers.Get(env.ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
