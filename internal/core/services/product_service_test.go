package services

import (
	"testing"

	"cafe-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_Create(t *testing.T) {
	env := newTestEnv(t)

	require.Len(t, env.latte.Options, 1)
	assert.NotZero(t, env.latte.Options[0].ID)
	assert.Equal(t, env.latte.ID, env.latte.Options[0].ProductID)

	_, err := env.products.Create(env.ctx, env.cafe.ID, CreateProductInput{Name: "Gift", Price: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.products.Create(env.ctx, 404, CreateProductInput{Name: "Ghost", Price: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_Availability(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.products.SetAvailability(env.ctx, env.muffin.ID, false)
	require.NoError(t, err)
	assert.False(t, p.IsAvailable)

	available, err := env.products.ListMenu(env.ctx, env.cafe.ID, true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, env.latte.ID, available[0].ID)

	all, err := env.products.ListMenu(env.ctx, env.cafe.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.products.SetAvailability(env.ctx, 404, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_DeleteRemovesOptions(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.products.Delete(env.ctx, env.latte.ID))

	_, err := env.products.Get(env.ctx, env.latte.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// a new product never inherits the deleted product's options
	p, err := env.products.Create(env.ctx, env.cafe.ID, CreateProductInput{Name: "Mocha", Price: dec("5.50")})
	require.NoError(t, err)
	got, err := env.products.Get(env.ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Options)

	assert.ErrorIs(t, env.products.Delete(env.ctx, env.latte.ID), domain.ErrNotFound)
}
