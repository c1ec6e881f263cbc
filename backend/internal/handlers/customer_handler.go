package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/brokerage/backend/internal/models"
	"github.com/user/brokerage/backend/internal/service"
)

// CustomerHandler serves cash movements and customer lookups.
type CustomerHandler struct {
	accounts *service.AccountService
	log      zerolog.Logger
}

// NewCustomerHandler creates a CustomerHandler.
func NewCustomerHandler(accounts *service.AccountService, log zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{accounts: accounts, log: log}
}

// MoneyRequest defines the expected JSON body for deposit and withdraw.
type MoneyRequest struct {
	Amount string `json:"amount"` // decimal string, e.g. "100.00"
}

func (h *CustomerHandler) parseMoneyRequest(c *fiber.Ctx) (uuid.UUID, models.Money, error) {
	customerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, models.Money{}, &models.ValidationError{Message: "invalid customer ID format"}
	}

	req := new(MoneyRequest)
	if err := c.BodyParser(req); err != nil {
		return uuid.Nil, models.Money{}, &models.ValidationError{Message: "cannot parse request body"}
	}
	amount, err := models.MoneyFromString(req.Amount)
	if err != nil {
		return uuid.Nil, models.Money{}, &models.ValidationError{Message: "amount must be a decimal string"}
	}
	return customerID, amount, nil
}

// Deposit adds cash to the customer's balance.
func (h *CustomerHandler) Deposit(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal in token"})
	}

	customerID, amount, err := h.parseMoneyRequest(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	if err := h.accounts.Deposit(c.Context(), principal, customerID, amount); err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Deposit successful"})
}

// Withdraw removes cash from the customer's balance.
func (h *CustomerHandler) Withdraw(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal in token"})
	}

	customerID, amount, err := h.parseMoneyRequest(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	if err := h.accounts.Withdraw(c.Context(), principal, customerID, amount); err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Withdrawal successful"})
}

// GetCustomer returns a customer the caller may see.
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal in token"})
	}

	customerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID format"})
	}

	customer, err := h.accounts.GetCustomer(c.Context(), principal, customerID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(customer)
}
