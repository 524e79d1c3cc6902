package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestVoucherType_DiscountOn(t *testing.T) {
	tests := []struct {
		name     string
		typ      VoucherType
		value    string
		subtotal string
		want     string
	}{
		{"fixed", VoucherFixedAmount, "5.00", "12.00", "5.00"},
		{"fixed capped at subtotal", VoucherFixedAmount, "5.00", "3.50", "3.50"},
		{"percentage", VoucherPercentageOff, "10", "8.00", "0.80"},
		{"percentage truncates", VoucherPercentageOff, "15", "3.33", "0.49"},
		{"free drink", VoucherFreeDrink, "5.00", "4.50", "4.50"},
		{"free upgrade", VoucherFreeUpgrade, "1.00", "6.00", "1.00"},
		{"empty order", VoucherFixedAmount, "5.00", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.typ.DiscountOn(d(tt.value), d(tt.subtotal))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestActor_CanManageCafe(t *testing.T) {
	assert.True(t, Actor{Role: RoleSuperAdmin}.CanManageCafe(9))
	assert.True(t, Actor{Role: RoleOwner, CafeID: 3}.CanManageCafe(3))
	assert.False(t, Actor{Role: RoleStaff, CafeID: 3}.CanManageCafe(4))
	assert.False(t, Actor{Role: RoleCustomer, CafeID: 3}.CanManageCafe(3))
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "B-0001", FormatOrderNumber("B", 1))
	assert.Equal(t, "D-0420", FormatOrderNumber("D", 420))
	assert.Equal(t, "X-12345", FormatOrderNumber("X", 12345))
}

func TestOrderNumberSeq(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"B-0001", 1, true},
		{"D-0420", 420, true},
		{"X-12345", 12345, true},
		{FormatOrderNumber("Q", 77), 77, true},
		{"B-", 0, false},
		{"B0001", 0, false},
		{"B-00x1", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		n, ok := OrderNumberSeq(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, n, tt.in)
	}
}

func TestRewardCatalog(t *testing.T) {
	catalog, err := NewRewardCatalog([]RewardDefinition{
		{ID: "free-drink", Name: "Free Drink", Type: VoucherFreeDrink, Value: d("5"), PointsCost: 500},
		{ID: " ten-off ", Name: "10% Off", Type: VoucherPercentageOff, Value: d("10"), PointsCost: 300},
	})
	require.NoError(t, err)

	all := catalog.All()
	require.Len(t, all, 2)
	all[0].PointsCost = 1
	def, ok := catalog.Lookup("free-drink")
	require.True(t, ok)
	assert.Equal(t, int64(500), def.PointsCost)

	_, ok = catalog.Lookup("ten-off")
	assert.True(t, ok)
	_, ok = catalog.Lookup("yacht")
	assert.False(t, ok)
}

func TestRewardCatalog_Invalid(t *testing.T) {
	valid := RewardDefinition{ID: "a", Type: VoucherFixedAmount, Value: d("1"), PointsCost: 10}

	tests := map[string]struct {
		defs  []RewardDefinition
		field string
	}{
		"missing id":    {[]RewardDefinition{{Type: VoucherFixedAmount, PointsCost: 1}}, "rewards[0].id"},
		"bad type":      {[]RewardDefinition{{ID: "x", Type: "CASHBACK", PointsCost: 1}}, "rewards[0].type"},
		"free reward":   {[]RewardDefinition{{ID: "x", Type: VoucherFixedAmount, PointsCost: 0}}, "rewards[0].points_cost"},
		"negative":      {[]RewardDefinition{{ID: "x", Type: VoucherFixedAmount, Value: d("-1"), PointsCost: 1}}, "rewards[0].value"},
		"over 100%":     {[]RewardDefinition{{ID: "x", Type: VoucherPercentageOff, Value: d("101"), PointsCost: 1}}, "rewards[0].value"},
		"duplicate ids": {[]RewardDefinition{valid, valid}, "rewards[1].id"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewRewardCatalog(tt.defs)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
