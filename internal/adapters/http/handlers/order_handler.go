package handlers

import (
	"cafe-ledger/internal/adapters/http/middleware"
	"cafe-ledger/internal/core/domain"
	"cafe-ledger/internal/core/services"
	"cafe-ledger/internal/pkg/pagination"
	"cafe-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles order placement and tracking
type OrderHandler struct {
	orderService    *services.OrderService
	customerService *services.CustomerService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *services.OrderService, customerService *services.CustomerService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		customerService: customerService,
	}
}

// PlaceOrder handles self-service orders.
// A signed-in customer is attached to the order; anyone else orders as a guest.
// @Summary Place order
// @Tags Orders
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.CustomerID = nil
	if actor, ok := middleware.ActorFrom(c); ok && actor.Role == domain.RoleCustomer {
		customer, err := h.customerService.GetOrCreate(c.UserContext(), actor.UserID, actor.Name)
		if err != nil {
			return response.FromError(c, err)
		}
		req.CustomerID = &customer.ID
	}
	req.Channel = domain.ChannelSelfService

	order, err := h.orderService.PlaceOrder(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Order placed successfully", fiber.Map{
		"order": order,
	})
}

// PlacePOSOrder handles orders rung up by staff at the counter
// @Summary Place POS order
// @Tags Orders
// @Router /cafes/{id}/pos/orders [post]
func (h *OrderHandler) PlacePOSOrder(c *fiber.Ctx) error {
	cafeID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.PlaceOrderInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.CafeID = cafeID
	req.Channel = domain.ChannelPOS

	order, err := h.orderService.PlaceOrder(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}

	// The counter only needs the ticket
	return response.Created(c, "Order placed successfully", fiber.Map{
		"order": order.ToResponse(),
	})
}

// GetReceipt looks an order up by its public ID
// @Summary Get order receipt
// @Tags Orders
// @Router /orders/{publicId} [get]
func (h *OrderHandler) GetReceipt(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrderByPublicID(c.UserContext(), c.Params("publicId"))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Order retrieved successfully", fiber.Map{
		"order": order,
	})
}

// ListCafeOrders lists a cafe's orders, newest first.
// ?status= narrows to one status.
// @Summary List cafe orders
// @Tags Orders
// @Router /cafes/{id}/orders [get]
func (h *OrderHandler) ListCafeOrders(c *fiber.Ctx) error {
	cafeID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	params := pagination.GetParams(c)

	orders, total, err := h.orderService.ListCafeOrders(c.UserContext(), cafeID, c.Query("status"), params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Orders retrieved successfully", pagination.NewResponse(orders, params, total))
}

// UpdateStatusRequest represents the status change body
type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// UpdateStatus moves an order along its lifecycle
// @Summary Update order status
// @Tags Orders
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	order, err := h.orderService.GetOrder(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := requireCafe(c, order.CafeID); err != nil {
		return response.FromError(c, err)
	}

	order, err = h.orderService.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Order status updated", fiber.Map{
		"order": order,
	})
}
