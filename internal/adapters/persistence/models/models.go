package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Tenant & Menu Tables
// ============================================================

// Cafe represents cafes table (tenant root)
type Cafe struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	Name                string          `gorm:"size:120;not null" json:"name"`
	Slug                string          `gorm:"size:80;uniqueIndex;not null" json:"slug"`
	OwnerUserID         uint            `gorm:"index;not null" json:"owner_user_id"`
	TaxRate             decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0" json:"tax_rate"`
	PointsPerDollar     int64           `gorm:"not null;default:1" json:"points_per_dollar"`
	PointsPerRedemption int64           `gorm:"not null;default:100" json:"points_per_redemption"`
	IsActive            bool            `gorm:"default:true" json:"is_active"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Cafe) TableName() string {
	return "cafes"
}

// Initial returns the uppercase first letter of the cafe name used in order numbers
func (c *Cafe) Initial() string {
	for _, r := range c.Name {
		if r >= 'a' && r <= 'z' {
			return string(r - 'a' + 'A')
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return string(r)
		}
	}
	return "C"
}

// Product represents products table
type Product struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CafeID      uint             `gorm:"index;not null" json:"cafe_id"`
	Name        string           `gorm:"size:120;not null" json:"name"`
	Category    string           `gorm:"size:60" json:"category"`
	Price       decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"price"`
	IsAvailable bool             `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	Options     []ModifierOption `gorm:"foreignKey:ProductID" json:"options,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ModifierOption is an owned child of Product (size, milk, extra shot...)
type ModifierOption struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ProductID  uint            `gorm:"index;not null" json:"product_id"`
	Name       string          `gorm:"size:80;not null" json:"name"`
	PriceDelta decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price_delta"`
}

func (ModifierOption) TableName() string {
	return "modifier_options"
}

// ============================================================
// Loyalty Tables
// ============================================================

// Customer represents customers table.
// Points columns are only written through the ledger.
type Customer struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Name           string          `gorm:"size:120" json:"name"`
	PointsBalance  int64           `gorm:"not null;default:0" json:"points_balance"`
	LifetimePoints int64           `gorm:"not null;default:0" json:"lifetime_points"`
	LifetimeSpend  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"lifetime_spend"`
	Tier           string          `gorm:"size:20;not null;default:'BRONZE'" json:"tier"`
	TotalOrders    int64           `gorm:"not null;default:0" json:"total_orders"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// PointTransaction represents point_transactions table (append-only)
type PointTransaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CustomerID   uint      `gorm:"index;not null" json:"customer_id"`
	CafeID       *uint     `gorm:"index" json:"cafe_id"`
	OrderID      *uint     `gorm:"index" json:"order_id"`
	Type         string    `gorm:"size:10;not null" json:"type"`
	Points       int64     `gorm:"not null" json:"points"`
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`
	Description  string    `gorm:"size:255" json:"description"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}

// Voucher represents vouchers table
type Voucher struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Code       string          `gorm:"size:16;uniqueIndex;not null" json:"code"`
	CustomerID uint            `gorm:"index;not null" json:"customer_id"`
	RewardID   string          `gorm:"size:40;not null" json:"reward_id"`
	Type       string          `gorm:"size:20;not null" json:"type"`
	Value      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"value"`
	PointsCost int64           `gorm:"not null" json:"points_cost"`
	Status     string          `gorm:"size:10;not null;default:'ACTIVE'" json:"status"`
	ExpiresAt  time.Time       `gorm:"index;not null" json:"expires_at"`
	UsedAt     *time.Time      `json:"used_at"`
	OrderID    *uint           `json:"order_id"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Voucher) TableName() string {
	return "vouchers"
}

// EffectiveStatus resolves expiry at read time. Stored rows only say
// EXPIRED after an admin expiry run.
func (v *Voucher) EffectiveStatus(now time.Time) string {
	if v.Status == VoucherStatusActive && !now.Before(v.ExpiresAt) {
		return VoucherStatusExpired
	}
	return v.Status
}

// Voucher Status
const (
	VoucherStatusActive  = "ACTIVE"
	VoucherStatusUsed    = "USED"
	VoucherStatusExpired = "EXPIRED"
)

// ============================================================
// Order Tables
// ============================================================

// Order represents orders table
type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	PublicID       string          `gorm:"size:36;uniqueIndex;not null" json:"public_id"`
	CafeID         uint            `gorm:"not null;uniqueIndex:idx_cafe_order_number" json:"cafe_id"`
	OrderNumber    string          `gorm:"size:20;not null;uniqueIndex:idx_cafe_order_number" json:"order_number"`
	CustomerID     *uint           `gorm:"index" json:"customer_id"`
	Channel        string          `gorm:"size:20;not null" json:"channel"`
	Status         string          `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	PointsEarned   int64           `gorm:"not null;default:0" json:"points_earned"`
	PointsRedeemed int64           `gorm:"not null;default:0" json:"points_redeemed"`
	VoucherID      *uint           `json:"voucher_id"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CompletedAt    *time.Time      `json:"completed_at"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem represents order_items table
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	ProductID   uint            `gorm:"not null" json:"product_id"`
	ProductName string          `gorm:"size:120;not null" json:"product_name"`
	Options     string          `gorm:"size:255" json:"options,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderResponse DTO returned by order placement
type OrderResponse struct {
	OrderID      uint            `json:"order_id"`
	PublicID     string          `json:"public_id"`
	OrderNumber  string          `json:"order_number"`
	Total        decimal.Decimal `json:"total"`
	PointsEarned int64           `json:"points_earned"`
	Status       string          `json:"status"`
}

func (o *Order) ToResponse() *OrderResponse {
	return &OrderResponse{
		OrderID:      o.ID,
		PublicID:     o.PublicID,
		OrderNumber:  o.OrderNumber,
		Total:        o.Total,
		PointsEarned: o.PointsEarned,
		Status:       o.Status,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Tenant & Menu
		&Cafe{},
		&Product{},
		&ModifierOption{},
		// Loyalty
		&Customer{},
		&PointTransaction{},
		&Voucher{},
		// Orders
		&Order{},
		&OrderItem{},
	)
}
