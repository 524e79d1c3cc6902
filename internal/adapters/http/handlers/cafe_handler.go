package handlers

import (
	"cafe-ledger/internal/core/services"
	"cafe-ledger/internal/pkg/pagination"
	"cafe-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CafeHandler handles cafe endpoints
type CafeHandler struct {
	cafeService *services.CafeService
}

// NewCafeHandler creates a new cafe handler
func NewCafeHandler(cafeService *services.CafeService) *CafeHandler {
	return &CafeHandler{cafeService: cafeService}
}

// CreateCafe registers a cafe (SUPERADMIN)
// @Summary Create cafe
// @Tags Cafes
// @Router /cafes [post]
func (h *CafeHandler) CreateCafe(c *fiber.Ctx) error {
	var req services.CreateCafeInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	cafe, err := h.cafeService.Create(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Cafe created successfully", fiber.Map{
		"cafe": cafe,
	})
}

// ListCafes lists cafes (SUPERADMIN)
// @Summary List cafes
// @Tags Cafes
// @Router /cafes [get]
func (h *CafeHandler) ListCafes(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	cafes, total, err := h.cafeService.List(c.UserContext(), params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Cafes retrieved successfully", pagination.NewResponse(cafes, params, total))
}

// GetCafe gets a cafe by ID
// @Summary Get cafe
// @Tags Cafes
// @Router /cafes/{id} [get]
func (h *CafeHandler) GetCafe(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	cafe, err := h.cafeService.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Cafe retrieved successfully", fiber.Map{
		"cafe": cafe,
	})
}

// UpdateConfig changes tax rate, point rates, name or active flag
// @Summary Update cafe configuration
// @Tags Cafes
// @Router /cafes/{id}/config [put]
func (h *CafeHandler) UpdateConfig(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.UpdateCafeConfigInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	cafe, err := h.cafeService.UpdateConfig(c.UserContext(), id, req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Cafe updated successfully", fiber.Map{
		"cafe": cafe,
	})
}
