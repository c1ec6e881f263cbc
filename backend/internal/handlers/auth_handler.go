package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/brokerage/backend/internal/auth"
	"github.com/user/brokerage/backend/internal/models"
	"github.com/user/brokerage/backend/internal/service"
)

// AuthHandler serves signup and login.
type AuthHandler struct {
	accounts *service.AccountService
	issuer   *auth.TokenIssuer
	log      zerolog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts *service.AccountService, issuer *auth.TokenIssuer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, issuer: issuer, log: log}
}

// SignupCustomerRequest defines the expected JSON body for customer signup.
type SignupCustomerRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	InitialBalance string `json:"initial_balance"` // decimal string, e.g. "1000.00"
}

// SignupAdminRequest defines the expected JSON body for admin signup.
type SignupAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest defines the expected JSON body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse defines the JSON response for successful auth.
type AuthResponse struct {
	Token      string     `json:"token"`
	UserID     uuid.UUID  `json:"user_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	IssuedAt   time.Time  `json:"issued_at"`
}

// SignupCustomer registers a customer-role user together with its brokerage
// account and opening balance.
func (h *AuthHandler) SignupCustomer(c *fiber.Ctx) error {
	req := new(SignupCustomerRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)

	balance := models.ZeroMoney(models.DefaultCurrency)
	if req.InitialBalance != "" {
		var err error
		balance, err = models.MoneyFromString(req.InitialBalance)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "initial_balance must be a decimal string"})
		}
	}

	user, customer, err := h.accounts.RegisterCustomer(c.Context(), req.Username, req.Password, req.Name, balance)
	if err != nil {
		return fail(c, h.log, err)
	}

	token, err := h.issuer.Generate(user)
	if err != nil {
		h.log.Error().Err(err).Str("username", user.Username).Msg("token generation failed after signup")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "User created, but failed to generate token"})
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Token:      token,
		UserID:     user.ID,
		CustomerID: &customer.ID,
		IssuedAt:   time.Now(),
	})
}

// SignupAdmin registers an admin-role user.
func (h *AuthHandler) SignupAdmin(c *fiber.Ctx) error {
	req := new(SignupAdminRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	user, err := h.accounts.RegisterAdmin(c.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return fail(c, h.log, err)
	}

	token, err := h.issuer.Generate(user)
	if err != nil {
		h.log.Error().Err(err).Str("username", user.Username).Msg("token generation failed after signup")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "User created, but failed to generate token"})
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Token:    token,
		UserID:   user.ID,
		IssuedAt: time.Now(),
	})
}

// Login authenticates a username/password pair and issues a token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req := new(LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password cannot be empty"})
	}

	user, err := h.accounts.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		return fail(c, h.log, err)
	}

	token, err := h.issuer.Generate(user)
	if err != nil {
		h.log.Error().Err(err).Str("username", user.Username).Msg("token generation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.Status(fiber.StatusOK).JSON(AuthResponse{
		Token:    token,
		UserID:   user.ID,
		IssuedAt: time.Now(),
	})
}
