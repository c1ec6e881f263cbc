package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/brokerage/backend/internal/service"
)

// HoldingHandler serves position listings and admin seeding.
type HoldingHandler struct {
	holdings *service.HoldingService
	log      zerolog.Logger
}

// NewHoldingHandler creates a HoldingHandler.
func NewHoldingHandler(holdings *service.HoldingService, log zerolog.Logger) *HoldingHandler {
	return &HoldingHandler{holdings: holdings, log: log}
}

// SeedHoldingRequest defines the expected JSON body for seeding a holding.
type SeedHoldingRequest struct {
	AssetSymbol    string `json:"asset_symbol"`
	TotalQuantity  int64  `json:"total_quantity"`
	UsableQuantity int64  `json:"usable_quantity"`
}

// ListHoldings returns every position of a customer.
func (h *HoldingHandler) ListHoldings(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal in token"})
	}

	customerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID format"})
	}

	holdings, err := h.holdings.ListHoldings(c.Context(), principal, customerID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(holdings)
}

// SeedHolding creates a starting position for a customer (admin only).
func (h *HoldingHandler) SeedHolding(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal in token"})
	}

	customerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID format"})
	}

	req := new(SeedHoldingRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}
	req.AssetSymbol = strings.ToUpper(strings.TrimSpace(req.AssetSymbol))

	holding, err := h.holdings.SeedHolding(c.Context(), principal, customerID, req.AssetSymbol, req.TotalQuantity, req.UsableQuantity)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(holding)
}
