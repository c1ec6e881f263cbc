// Package handlers adapts the HTTP surface to the service layer: request
// parsing, principal extraction, and mapping the business-error taxonomy to
// status codes.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/user/brokerage/backend/internal/auth"
	"github.com/user/brokerage/backend/internal/middleware"
	"github.com/user/brokerage/backend/internal/models"
)

func principalFromCtx(c *fiber.Ctx) (auth.Principal, bool) {
	p, ok := c.Locals(middleware.PrincipalKey).(auth.Principal)
	return p, ok
}

// fail maps a service error onto an HTTP response. Business failures carry
// their message to the client; anything unrecognized is an infrastructure
// fault, logged server-side and masked as a generic 500.
func fail(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Message})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrNotAuthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrUsernameTaken), errors.Is(err, models.ErrHoldingExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrCurrencyMismatch),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInsufficientHoldings),
		errors.Is(err, models.ErrInvalidOrderState),
		errors.Is(err, models.ErrReservationOverflow):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
