package handlers

import (
	"cafe-ledger/internal/adapters/http/middleware"
	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/core/services"
	"cafe-ledger/internal/pkg/pagination"
	"cafe-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MeHandler serves the signed-in customer's own account
type MeHandler struct {
	customerService *services.CustomerService
	orderService    *services.OrderService
	ledgerService   *services.LedgerService
	voucherService  *services.VoucherService
}

// NewMeHandler creates a new customer self-service handler
func NewMeHandler(
	customerService *services.CustomerService,
	orderService *services.OrderService,
	ledgerService *services.LedgerService,
	voucherService *services.VoucherService,
) *MeHandler {
	return &MeHandler{
		customerService: customerService,
		orderService:    orderService,
		ledgerService:   ledgerService,
		voucherService:  voucherService,
	}
}

// current resolves the caller's customer record, creating it on first use
func (h *MeHandler) current(c *fiber.Ctx) (*models.Customer, error) {
	actor, _ := middleware.ActorFrom(c)
	return h.customerService.GetOrCreate(c.UserContext(), actor.UserID, actor.Name)
}

// GetMe returns the caller's balance and tier
// @Summary Get my account
// @Tags Me
// @Router /me [get]
func (h *MeHandler) GetMe(c *fiber.Ctx) error {
	customer, err := h.current(c)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Customer retrieved successfully", fiber.Map{
		"customer": customer,
	})
}

// ListOrders lists the caller's orders
// @Summary List my orders
// @Tags Me
// @Router /me/orders [get]
func (h *MeHandler) ListOrders(c *fiber.Ctx) error {
	customer, err := h.current(c)
	if err != nil {
		return response.FromError(c, err)
	}
	params := pagination.GetParams(c)

	orders, total, err := h.orderService.ListCustomerOrders(c.UserContext(), customer.ID, params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Orders retrieved successfully", pagination.NewResponse(orders, params, total))
}

// PointsHistory lists the caller's ledger entries
// @Summary List my points history
// @Tags Me
// @Router /me/points [get]
func (h *MeHandler) PointsHistory(c *fiber.Ctx) error {
	customer, err := h.current(c)
	if err != nil {
		return response.FromError(c, err)
	}
	params := pagination.GetParams(c)

	entries, total, err := h.ledgerService.History(c.UserContext(), customer.ID, params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Points history retrieved successfully", fiber.Map{
		"balance": customer.PointsBalance,
		"tier":    customer.Tier,
		"history": pagination.NewResponse(entries, params, total),
	})
}

// ListVouchers lists the caller's vouchers
// @Summary List my vouchers
// @Tags Me
// @Router /me/vouchers [get]
func (h *MeHandler) ListVouchers(c *fiber.Ctx) error {
	customer, err := h.current(c)
	if err != nil {
		return response.FromError(c, err)
	}

	vouchers, err := h.voucherService.ListForCustomer(c.UserContext(), customer.ID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Vouchers retrieved successfully", fiber.Map{
		"vouchers": vouchers,
	})
}

// ClaimRequest represents the reward claim body
type ClaimRequest struct {
	RewardID string `json:"reward_id"`
}

// ClaimVoucher spends points on a catalog reward
// @Summary Claim a reward
// @Tags Me
// @Router /me/vouchers [post]
func (h *MeHandler) ClaimVoucher(c *fiber.Ctx) error {
	var req ClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	customer, err := h.current(c)
	if err != nil {
		return response.FromError(c, err)
	}

	result, err := h.voucherService.Claim(c.UserContext(), services.ClaimInput{
		CustomerID: customer.ID,
		RewardID:   req.RewardID,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Reward claimed successfully", result)
}
