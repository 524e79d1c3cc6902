package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/core/domain"
	"cafe-ledger/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// storeSequencer continues from the cafe's highest order number inside the transaction
type storeSequencer struct{}

// NewStoreSequencer numbers orders from the order table itself
func NewStoreSequencer() OrderNumberSequencer {
	return storeSequencer{}
}

func (storeSequencer) Next(ctx context.Context, tx repositories.Store, cafe *models.Cafe) (string, error) {
	// the cafe row lock serializes numbering between concurrent orders
	if _, err := tx.Cafes().GetForUpdate(ctx, cafe.ID); err != nil {
		return "", err
	}
	highest, err := tx.Orders().MaxNumberByCafe(ctx, cafe.ID)
	if err != nil {
		return "", err
	}
	return domain.FormatOrderNumber(cafe.Initial(), highest+1), nil
}

// OrderService places orders and drives their status
type OrderService struct {
	store     repositories.Store
	ledger    *LedgerService
	vouchers  *VoucherService
	sequencer OrderNumberSequencer
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	store repositories.Store,
	ledger *LedgerService,
	vouchers *VoucherService,
	sequencer OrderNumberSequencer,
	m *metrics.Metrics,
) *OrderService {
	if sequencer == nil {
		sequencer = NewStoreSequencer()
	}
	return &OrderService{
		store:     store,
		ledger:    ledger,
		vouchers:  vouchers,
		sequencer: sequencer,
		metrics:   m,
		now:       time.Now,
	}
}

// OrderItemInput is one requested line
type OrderItemInput struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	OptionIDs []uint `json:"option_ids"`
}

// PlaceOrderInput is a request to place an order
type PlaceOrderInput struct {
	CafeID         uint                `json:"cafe_id"`
	CustomerID     *uint               `json:"customer_id"`
	Items          []OrderItemInput    `json:"items"`
	PointsToRedeem int64               `json:"points_to_redeem"`
	VoucherCode    string              `json:"voucher_code"`
	Notes          string              `json:"notes"`
	Channel        domain.OrderChannel `json:"-"`
}

func (in *PlaceOrderInput) validate() error {
	if in.CafeID == 0 {
		return domain.Invalid("cafe_id", "is required")
	}
	if len(in.Items) == 0 {
		return domain.Invalid("items", "at least one item is required")
	}
	for i, it := range in.Items {
		if it.ProductID == 0 {
			return domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "is required")
		}
		if it.Quantity < 1 {
			return domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
	}
	if in.PointsToRedeem < 0 {
		return domain.Invalid("points_to_redeem", "must not be negative")
	}
	if in.PointsToRedeem > 0 && in.CustomerID == nil {
		return domain.Invalid("points_to_redeem", "guest orders cannot redeem points")
	}
	if in.Channel == "" {
		in.Channel = domain.ChannelSelfService
	}
	return nil
}

// PlaceOrder prices and persists an order together with its points,
// voucher and customer side effects. Either all of them are written or none.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := input.validate(); err != nil {
		s.metrics.OrderFailed(string(domain.KindOf(err)))
		return nil, err
	}

	var order *models.Order
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		// 1. Cafe, customer and lines
		cafe, err := tx.Cafes().GetByID(ctx, input.CafeID)
		if err != nil {
			return err
		}
		if !cafe.IsActive {
			return domain.ErrCafeInactive
		}

		var customer *models.Customer
		if input.CustomerID != nil {
			customer, err = tx.Customers().GetByID(ctx, *input.CustomerID)
			if err != nil {
				return err
			}
		}

		items, lines, err := s.resolveItems(ctx, tx, cafe.ID, input.Items)
		if err != nil {
			return err
		}

		var voucher *models.Voucher
		pricing := PricingInput{
			Lines:                   lines,
			TaxRate:                 cafe.TaxRate,
			PointsToRedeem:          input.PointsToRedeem,
			PointsPerRedemptionUnit: cafe.PointsPerRedemption,
			PointsPerCurrencyUnit:   cafe.PointsPerDollar,
		}
		if strings.TrimSpace(input.VoucherCode) != "" {
			voucher, err = s.vouchers.lockRedeemable(ctx, tx, input.VoucherCode)
			if err != nil {
				return err
			}
			pricing.Voucher = &AppliedVoucher{Type: domain.VoucherType(voucher.Type), Value: voucher.Value}
		}

		// 2. Price
		quote, err := Price(pricing)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].LineTotal = quote.LineTotals[i]
		}

		// 3. Balance check; the ledger's conditional decrement is authoritative
		if customer != nil && input.PointsToRedeem > customer.PointsBalance {
			return domain.ErrInsufficientPoints
		}

		// 4. Order number
		number, err := s.sequencer.Next(ctx, tx, cafe)
		if err != nil {
			return err
		}

		// 5. Persist order and items
		order = &models.Order{
			PublicID:       uuid.NewString(),
			CafeID:         cafe.ID,
			OrderNumber:    number,
			Channel:        string(input.Channel),
			Status:         string(domain.StatusPending),
			Subtotal:       quote.Subtotal,
			TaxAmount:      quote.TaxAmount,
			DiscountAmount: quote.DiscountAmount,
			Total:          quote.Total,
			Notes:          strings.TrimSpace(input.Notes),
			Items:          items,
		}
		if customer != nil {
			order.CustomerID = &customer.ID
			order.PointsEarned = quote.PointsEarned
			order.PointsRedeemed = input.PointsToRedeem
		}
		if voucher != nil {
			order.VoucherID = &voucher.ID
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		if voucher != nil {
			if err := s.vouchers.markUsed(ctx, tx, voucher, &order.ID); err != nil {
				return err
			}
		}

		if customer == nil {
			return nil
		}

		// 6. Redeem
		if input.PointsToRedeem > 0 {
			if _, err := s.ledger.redeem(ctx, tx, PointsInput{
				CustomerID:  customer.ID,
				CafeID:      &cafe.ID,
				Points:      input.PointsToRedeem,
				OrderID:     &order.ID,
				Description: "Redeemed on order " + number,
			}); err != nil {
				return err
			}
		}

		// 7. Earn and re-tier
		if quote.PointsEarned > 0 {
			if _, err := s.ledger.earn(ctx, tx, PointsInput{
				CustomerID:  customer.ID,
				CafeID:      &cafe.ID,
				Points:      quote.PointsEarned,
				OrderID:     &order.ID,
				Description: "Earned on order " + number,
			}); err != nil {
				return err
			}
		}

		// 8. Aggregates
		return tx.Customers().RecordOrder(ctx, customer.ID, quote.Total)
	})
	if err != nil {
		kind := domain.KindOf(err)
		s.metrics.OrderFailed(string(kind))
		if kind == domain.KindInternal {
			log.Error().Err(err).Uint("cafe_id", input.CafeID).Msg("place order failed")
		}
		return nil, err
	}

	s.metrics.OrderPlaced(order.Channel)
	s.metrics.Points(string(domain.TxRedeem), order.PointsRedeemed)
	s.metrics.Points(string(domain.TxEarn), order.PointsEarned)
	if order.VoucherID != nil {
		s.metrics.Voucher("redeemed")
	}
	log.Info().
		Uint("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Uint("cafe_id", order.CafeID).
		Str("total", order.Total.StringFixed(2)).
		Msg("order placed")
	return order, nil
}

// resolveItems loads products and options and prices each line from the menu
func (s *OrderService) resolveItems(ctx context.Context, tx repositories.Store, cafeID uint, inputs []OrderItemInput) ([]models.OrderItem, []PriceLine, error) {
	items := make([]models.OrderItem, 0, len(inputs))
	lines := make([]PriceLine, 0, len(inputs))

	for i, in := range inputs {
		product, err := tx.Products().GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if product.CafeID != cafeID {
			return nil, nil, domain.ErrProductNotFound
		}
		if !product.IsAvailable {
			return nil, nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "product is not available")
		}

		unit := product.Price
		names := make([]string, 0, len(in.OptionIDs))
		for _, optID := range in.OptionIDs {
			opt := findOption(product, optID)
			if opt == nil {
				return nil, nil, domain.Invalid(fmt.Sprintf("items[%d].option_ids", i), fmt.Sprintf("option %d does not belong to product", optID))
			}
			unit = unit.Add(opt.PriceDelta)
			names = append(names, opt.Name)
		}

		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Options:     strings.Join(names, ", "),
			Quantity:    in.Quantity,
			UnitPrice:   unit,
			LineTotal:   decimal.Zero,
		})
		lines = append(lines, PriceLine{UnitPrice: unit, Quantity: in.Quantity})
	}
	return items, lines, nil
}

func findOption(p *models.Product, id uint) *models.ModifierOption {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i]
		}
	}
	return nil
}

// GetOrder gets an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.store.Orders().GetByID(ctx, id)
}

// GetOrderByPublicID gets an order by the reference printed on its receipt
func (s *OrderService) GetOrderByPublicID(ctx context.Context, publicID string) (*models.Order, error) {
	if _, err := uuid.Parse(publicID); err != nil {
		return nil, domain.ErrOrderNotFound
	}
	return s.store.Orders().GetByPublicID(ctx, publicID)
}

// ListCafeOrders lists a cafe's orders, optionally filtered by status
func (s *OrderService) ListCafeOrders(ctx context.Context, cafeID uint, status string, offset, limit int) ([]*models.Order, int64, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && !domain.OrderStatus(status).Valid() {
		return nil, 0, domain.Invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	return s.store.Orders().ListByCafe(ctx, cafeID, status, offset, limit)
}

// ListCustomerOrders lists a customer's order history
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID uint, offset, limit int) ([]*models.Order, int64, error) {
	return s.store.Orders().ListByCustomer(ctx, customerID, offset, limit)
}

// UpdateStatus moves an order along its lifecycle
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, to domain.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, domain.Invalid("status", fmt.Sprintf("unknown status %q", to))
	}

	var order *models.Order
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		from := domain.OrderStatus(current.Status)
		if !from.CanTransition(to) {
			return &domain.TransitionError{From: from, To: to}
		}

		var completedAt *time.Time
		if to == domain.StatusCompleted {
			t := s.now()
			completedAt = &t
		}
		if err := tx.Orders().UpdateStatus(ctx, current.ID, string(from), string(to), completedAt); err != nil {
			return err
		}

		order, err = tx.Orders().GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("order_id", order.ID).
		Str("status", order.Status).
		Msg("order status updated")
	return order, nil
}
