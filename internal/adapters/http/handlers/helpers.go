package handlers

import (
	"strconv"

	"cafe-ledger/internal/adapters/http/middleware"
	"cafe-ledger/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// paramID parses a positive numeric route param
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, domain.Invalid(name, "must be a positive integer")
	}
	return uint(id), nil
}

// requireCafe returns ErrForbidden unless the caller manages the cafe
func requireCafe(c *fiber.Ctx, cafeID uint) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok || !actor.CanManageCafe(cafeID) {
		return domain.ErrForbidden
	}
	return nil
}
