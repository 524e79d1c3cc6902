package domain

import (
	"github.com/shopspring/decimal"
)

// Role represents the role of an authenticated actor
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleStaff      Role = "STAFF"
	RoleOwner      Role = "OWNER"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Actor is the identity supplied by the identity provider.
// It is trusted as-is; credentials are never re-verified here.
type Actor struct {
	UserID uint
	Name   string
	Role   Role
	CafeID uint // set for STAFF and OWNER
}

// CanManageCafe reports whether the actor may operate on the given cafe
func (a Actor) CanManageCafe(cafeID uint) bool {
	switch a.Role {
	case RoleSuperAdmin:
		return true
	case RoleStaff, RoleOwner:
		return a.CafeID == cafeID
	}
	return false
}

// TransactionType is the kind of a ledger entry
type TransactionType string

const (
	TxEarn   TransactionType = "EARN"
	TxRedeem TransactionType = "REDEEM"
)

// VoucherType enumerates reward kinds
type VoucherType string

const (
	VoucherFreeDrink     VoucherType = "FREE_DRINK"
	VoucherPercentageOff VoucherType = "PERCENTAGE_OFF"
	VoucherFixedAmount   VoucherType = "FIXED_AMOUNT"
	VoucherFreeUpgrade   VoucherType = "FREE_UPGRADE"
)

// Valid reports whether t is a known voucher type
func (t VoucherType) Valid() bool {
	switch t {
	case VoucherFreeDrink, VoucherPercentageOff, VoucherFixedAmount, VoucherFreeUpgrade:
		return true
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// DiscountOn returns the money a voucher of this type and value takes off
// the given subtotal. The result is never more than the subtotal.
func (t VoucherType) DiscountOn(value, subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch t {
	case VoucherPercentageOff:
		d = subtotal.Mul(value).Div(hundred).Truncate(2)
	default:
		d = value
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// RewardDefinition is one entry of the fixed voucher catalog
type RewardDefinition struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        VoucherType     `json:"type"`
	Value       decimal.Decimal `json:"value"`
	PointsCost  int64           `json:"points_cost"`
	Description string          `json:"description,omitempty"`
}

// OrderChannel identifies where an order was placed
type OrderChannel string

const (
	ChannelSelfService OrderChannel = "SELF_SERVICE"
	ChannelPOS         OrderChannel = "POS"
)
