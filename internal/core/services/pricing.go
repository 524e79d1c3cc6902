package services

import (
	"fmt"

	"cafe-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// PriceLine is one priced line of an order
type PriceLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// AppliedVoucher is a voucher whose discount should be folded into a quote
type AppliedVoucher struct {
	Type  domain.VoucherType
	Value decimal.Decimal
}

// PricingInput is everything Price needs. It carries no identities,
// only numbers, so the same input always yields the same quote.
type PricingInput struct {
	Lines                   []PriceLine
	TaxRate                 decimal.Decimal
	PointsToRedeem          int64
	PointsPerRedemptionUnit int64 // points per 1.00 of discount
	PointsPerCurrencyUnit   int64 // points earned per 1.00 of total
	Voucher                 *AppliedVoucher
}

// Quote is the priced result of an order
type Quote struct {
	LineTotals      []decimal.Decimal `json:"line_totals"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	TaxAmount       decimal.Decimal   `json:"tax_amount"`
	PointsDiscount  decimal.Decimal   `json:"points_discount"`
	VoucherDiscount decimal.Decimal   `json:"voucher_discount"`
	DiscountAmount  decimal.Decimal   `json:"discount_amount"`
	Total           decimal.Decimal   `json:"total"`
	PointsEarned    int64             `json:"points_earned"`
}

// Price computes subtotal, tax, discount, total and earned points.
// Tax is rounded half away from zero to cents, the points discount is
// truncated to cents and the total is never negative.
func Price(in PricingInput) (*Quote, error) {
	if in.TaxRate.IsNegative() {
		return nil, domain.Invalid("tax_rate", "must not be negative")
	}
	if in.PointsToRedeem < 0 {
		return nil, domain.Invalid("points_to_redeem", "must not be negative")
	}
	if in.PointsPerCurrencyUnit < 0 {
		return nil, domain.Invalid("points_per_dollar", "must not be negative")
	}
	if in.PointsToRedeem > 0 && in.PointsPerRedemptionUnit < 1 {
		return nil, domain.Invalid("points_per_redemption", "must be at least 1")
	}

	q := &Quote{
		LineTotals:      make([]decimal.Decimal, len(in.Lines)),
		Subtotal:        decimal.Zero,
		PointsDiscount:  decimal.Zero,
		VoucherDiscount: decimal.Zero,
	}

	// 1. Lines
	for i, l := range in.Lines {
		if l.Quantity < 1 {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if l.UnitPrice.IsNegative() {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].unit_price", i), "must not be negative")
		}
		q.LineTotals[i] = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		q.Subtotal = q.Subtotal.Add(q.LineTotals[i])
	}

	// 2. Tax
	q.TaxAmount = q.Subtotal.Mul(in.TaxRate).Round(2)

	// 3. Discounts
	if in.PointsToRedeem > 0 {
		q.PointsDiscount = decimal.NewFromInt(in.PointsToRedeem).
			Div(decimal.NewFromInt(in.PointsPerRedemptionUnit)).
			Truncate(2)
	}
	if in.Voucher != nil {
		q.VoucherDiscount = in.Voucher.Type.DiscountOn(in.Voucher.Value, q.Subtotal)
	}
	q.DiscountAmount = q.PointsDiscount.Add(q.VoucherDiscount)

	// 4. Total and earned points
	q.Total = q.Subtotal.Add(q.TaxAmount).Sub(q.DiscountAmount)
	if q.Total.IsNegative() {
		q.Total = decimal.Zero
	}
	q.PointsEarned = q.Total.Mul(decimal.NewFromInt(in.PointsPerCurrencyUnit)).Floor().IntPart()

	return q, nil
}
