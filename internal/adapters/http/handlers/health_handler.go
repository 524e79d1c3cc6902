package handlers

import (
	"context"
	"time"

	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store repositories.Store
	cfg   *config.Config
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store repositories.Store, cfg *config.Config) *HealthHandler {
	return &HealthHandler{store: store, cfg: cfg}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Tags Health
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "Cafe Ledger API v1.0 is running",
		"mode":    h.cfg.AppMode,
	})
}

// HealthCheck reports API and store health
// @Summary Health check
// @Tags Health
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	storeStatus := "healthy"
	status := fiber.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("store health check failed")
		storeStatus = "unhealthy"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"api":   "healthy",
			"store": storeStatus,
		},
	})
}

// APIInfo handles API v1 info
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Cafe Ledger API v1.0",
		"version": "1.0.0",
	})
}
