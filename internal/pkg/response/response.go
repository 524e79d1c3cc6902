package response

import (
	"errors"

	"cafe-ledger/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    domain.Kind `json:"code,omitempty"`
	Field   string      `json:"field,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{
		Success: false,
		Error:   message,
		Code:    domain.KindInvalidInput,
	})
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(Response{
		Success: false,
		Error:   message,
		Code:    domain.KindForbidden,
	})
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindInvalidInput:
		return fiber.StatusBadRequest
	case domain.KindInsufficientPoints:
		return fiber.StatusUnprocessableEntity
	case domain.KindAlreadyUsed, domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindExpired:
		return fiber.StatusGone
	case domain.KindForbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// FromError sends the response for a service error.
// Internal errors are logged and replaced by a generic message.
func FromError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	res := Response{
		Success: false,
		Error:   err.Error(),
		Code:    kind,
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		res.Field = ve.Field
		res.Error = ve.Reason
	}

	if kind == domain.KindInternal {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("request failed")
		res.Error = domain.ErrInternal.Error()
	}
	return c.Status(StatusFor(kind)).JSON(res)
}
