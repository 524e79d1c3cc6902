package services

import (
	"testing"

	"cafe-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Bean There":          "bean-there",
		"  Café  Nero!! ":     "caf-nero",
		"24/7 Brew":           "24-7-brew",
		"---":                 "",
		"already-a-slug":      "already-a-slug",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestCafe_Create(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, "bean-there", env.cafe.Slug)
	assert.Equal(t, int64(1), env.cafe.PointsPerDollar)
	assert.Equal(t, int64(100), env.cafe.PointsPerRedemption)
	assert.True(t, env.cafe.IsActive)

	_, err := env.cafes.Create(env.ctx, CreateCafeInput{Name: "Bean  There!"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.cafes.Create(env.ctx, CreateCafeInput{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.cafes.Create(env.ctx, CreateCafeInput{Name: "Taxing", TaxRate: dec("1.5")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	zero := int64(0)
	_, err = env.cafes.Create(env.ctx, CreateCafeInput{Name: "Free", PointsPerRedemption: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, total, err := env.cafes.List(env.ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}

func TestCafe_UpdateConfig(t *testing.T) {
	env := newTestEnv(t)

	rate := dec("0.0825")
	ppd := int64(2)
	updated, err := env.cafes.UpdateConfig(env.ctx, env.cafe.ID, UpdateCafeConfigInput{
		TaxRate:         &rate,
		PointsPerDollar: &ppd,
	})
	require.NoError(t, err)
	assert.True(t, updated.TaxRate.Equal(rate))
	assert.Equal(t, int64(2), updated.PointsPerDollar)

	negative := decimal.NewFromInt(-1)
	_, err = env.cafes.UpdateConfig(env.ctx, env.cafe.ID, UpdateCafeConfigInput{TaxRate: &negative})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := env.cafes.Get(env.ctx, env.cafe.ID)
	require.NoError(t, err)
	assert.True(t, got.TaxRate.Equal(rate))

	_, err = env.cafes.UpdateConfig(env.ctx, 404, UpdateCafeConfigInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
