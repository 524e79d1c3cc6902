package handlers

import (
	"cafe-ledger/internal/adapters/http/middleware"
	"cafe-ledger/internal/core/domain"
	"cafe-ledger/internal/core/services"
	"cafe-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoyaltyHandler handles staff point adjustments, voucher redemption,
// the reward catalog and ledger audits
type LoyaltyHandler struct {
	ledgerService  *services.LedgerService
	voucherService *services.VoucherService
	orderService   *services.OrderService
}

// NewLoyaltyHandler creates a new loyalty handler
func NewLoyaltyHandler(
	ledgerService *services.LedgerService,
	voucherService *services.VoucherService,
	orderService *services.OrderService,
) *LoyaltyHandler {
	return &LoyaltyHandler{
		ledgerService:  ledgerService,
		voucherService: voucherService,
		orderService:   orderService,
	}
}

// PointsRequest represents a manual earn or redeem body
type PointsRequest struct {
	CustomerID  uint   `json:"customer_id"`
	CafeID      *uint  `json:"cafe_id"`
	OrderID     *uint  `json:"order_id"`
	Points      int64  `json:"points"`
	Description string `json:"description"`
}

// pointsInput attributes the entry to the staff member's cafe.
// SUPERADMIN may name any cafe or none. A referenced order must be
// the customer's and must belong to the cafe the entry is booked to.
func (h *LoyaltyHandler) pointsInput(c *fiber.Ctx, r *PointsRequest) (services.PointsInput, error) {
	actor, _ := middleware.ActorFrom(c)
	cafeID := r.CafeID
	if actor.Role != domain.RoleSuperAdmin {
		if cafeID != nil && *cafeID != actor.CafeID {
			return services.PointsInput{}, domain.ErrForbidden
		}
		cafeID = &actor.CafeID
	}

	if r.OrderID != nil {
		order, err := h.orderService.GetOrder(c.UserContext(), *r.OrderID)
		if err != nil {
			return services.PointsInput{}, err
		}
		if err := requireCafe(c, order.CafeID); err != nil {
			return services.PointsInput{}, err
		}
		if cafeID != nil && *cafeID != order.CafeID {
			return services.PointsInput{}, domain.Invalid("order_id", "belongs to another cafe")
		}
		if order.CustomerID == nil || *order.CustomerID != r.CustomerID {
			return services.PointsInput{}, domain.Invalid("order_id", "belongs to another customer")
		}
		cafeID = &order.CafeID
	}

	return services.PointsInput{
		CustomerID:  r.CustomerID,
		CafeID:      cafeID,
		OrderID:     r.OrderID,
		Points:      r.Points,
		Description: r.Description,
	}, nil
}

// EarnPoints credits points to a customer
// @Summary Earn points
// @Tags Points
// @Router /points/earn [post]
func (h *LoyaltyHandler) EarnPoints(c *fiber.Ctx) error {
	var req PointsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input, err := h.pointsInput(c, &req)
	if err != nil {
		return response.FromError(c, err)
	}

	result, err := h.ledgerService.Earn(c.UserContext(), input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Points earned", result)
}

// RedeemPoints debits points from a customer
// @Summary Redeem points
// @Tags Points
// @Router /points/redeem [post]
func (h *LoyaltyHandler) RedeemPoints(c *fiber.Ctx) error {
	var req PointsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input, err := h.pointsInput(c, &req)
	if err != nil {
		return response.FromError(c, err)
	}

	result, err := h.ledgerService.Redeem(c.UserContext(), input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Points redeemed", result)
}

// RedeemVoucherRequest represents the voucher redemption body
type RedeemVoucherRequest struct {
	Code string `json:"code"`
}

// RedeemVoucher marks a voucher used outside of an order
// @Summary Redeem voucher
// @Tags Vouchers
// @Router /vouchers/redeem [post]
func (h *LoyaltyHandler) RedeemVoucher(c *fiber.Ctx) error {
	var req RedeemVoucherRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.voucherService.Redeem(c.UserContext(), req.Code)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Voucher redeemed", result)
}

// ListRewards returns the reward catalog
// @Summary List rewards
// @Tags Vouchers
// @Router /rewards [get]
func (h *LoyaltyHandler) ListRewards(c *fiber.Ctx) error {
	return response.Success(c, "Rewards retrieved successfully", fiber.Map{
		"rewards": h.voucherService.Catalog(),
	})
}

// AuditCustomer replays a customer's ledger against the stored balance
// @Summary Audit customer ledger
// @Tags Admin
// @Router /admin/customers/{id}/audit [get]
func (h *LoyaltyHandler) AuditCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	report, err := h.ledgerService.Audit(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Audit completed", report)
}

// ExpireVouchers persists EXPIRED on lapsed vouchers
// @Summary Expire lapsed vouchers
// @Tags Admin
// @Router /admin/vouchers/expire [post]
func (h *LoyaltyHandler) ExpireVouchers(c *fiber.Ctx) error {
	n, err := h.voucherService.ExpireLapsed(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Vouchers expired", fiber.Map{
		"expired": n,
	})
}
