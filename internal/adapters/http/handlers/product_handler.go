package handlers

import (
	"cafe-ledger/internal/core/services"
	"cafe-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles menu endpoints
type ProductHandler struct {
	productService *services.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListMenu lists a cafe's products.
// ?all=true includes unavailable items.
// @Summary List menu
// @Tags Products
// @Router /cafes/{id}/products [get]
func (h *ProductHandler) ListMenu(c *fiber.Ctx) error {
	cafeID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	products, err := h.productService.ListMenu(c.UserContext(), cafeID, c.Query("all") != "true")
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Menu retrieved successfully", fiber.Map{
		"products": products,
	})
}

// CreateProduct adds a product to the cafe's menu
// @Summary Create product
// @Tags Products
// @Router /cafes/{id}/products [post]
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	cafeID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.CreateProductInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.productService.Create(c.UserContext(), cafeID, req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Product created successfully", fiber.Map{
		"product": product,
	})
}

// AvailabilityRequest represents the availability toggle body
type AvailabilityRequest struct {
	Available *bool `json:"available"`
}

// SetAvailability toggles whether a product can be ordered
// @Summary Set product availability
// @Tags Products
// @Router /products/{id}/availability [patch]
func (h *ProductHandler) SetAvailability(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req AvailabilityRequest
	if err := c.BodyParser(&req); err != nil || req.Available == nil {
		return response.BadRequest(c, "available is required")
	}

	if err := h.authorize(c, id); err != nil {
		return response.FromError(c, err)
	}

	product, err := h.productService.SetAvailability(c.UserContext(), id, *req.Available)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Product updated successfully", fiber.Map{
		"product": product,
	})
}

// DeleteProduct removes a product and its options
// @Summary Delete product
// @Tags Products
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.authorize(c, id); err != nil {
		return response.FromError(c, err)
	}

	if err := h.productService.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Product deleted successfully", nil)
}

// authorize checks the caller manages the product's cafe
func (h *ProductHandler) authorize(c *fiber.Ctx, productID uint) error {
	product, err := h.productService.Get(c.UserContext(), productID)
	if err != nil {
		return err
	}
	return requireCafe(c, product.CafeID)
}
