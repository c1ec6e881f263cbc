package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/brokerage/backend/internal/database"
	"github.com/user/brokerage/backend/internal/models"
	"github.com/user/brokerage/backend/internal/service"
)

// OrderHandler serves the order lifecycle endpoints.
type OrderHandler struct {
	orders *service.OrderService
	log    zerolog.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders *service.OrderService, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// CreateOrderRequest defines the expected JSON body for creating an order.
type CreateOrderRequest struct {
	CustomerID   string `json:"customer_id"`
	AssetSymbol  string `json:"asset_symbol"`
	Side         string `json:"side"`           // BUY or SELL
	Quantity     int64  `json:"quantity"`       // number of shares
	PricePerUnit string `json:"price_per_unit"` // decimal string, e.g. "50.00"
}

// CreateOrder validates the request and places a PENDING order with its
// cash/share reservation.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal in token"})
	}

	req := new(CreateOrderRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer_id format"})
	}
	price, err := models.MoneyFromString(req.PricePerUnit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price_per_unit must be a decimal string"})
	}

	side := models.OrderSide(strings.ToUpper(strings.TrimSpace(req.Side)))
	symbol := strings.ToUpper(strings.TrimSpace(req.AssetSymbol))

	order, err := h.orders.CreateOrder(c.Context(), principal, customerID, symbol, side, req.Quantity, price)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// MatchOrder settles a pending order.
func (h *OrderHandler) MatchOrder(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal in token"})
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	if err := h.orders.MatchOrder(c.Context(), principal, orderID); err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Order matched successfully"})
}

// CancelOrder cancels a pending order and reverses its reservation.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal in token"})
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	if err := h.orders.CancelOrder(c.Context(), principal, orderID); err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Order cancelled successfully"})
}

// ListOrders returns a customer's order history for a date range with an
// optional status filter. Query params: start, end (RFC 3339), status.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal in token"})
	}

	customerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID format"})
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be an RFC 3339 timestamp"})
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end must be an RFC 3339 timestamp"})
	}

	filter := database.OrderFilter{Start: start, End: end}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseOrderStatus(strings.ToUpper(raw))
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be PENDING, MATCHED or CANCELED"})
		}
		filter.Status = &status
	}

	orders, err := h.orders.ListOrders(c.Context(), principal, customerID, filter)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(orders)
}
