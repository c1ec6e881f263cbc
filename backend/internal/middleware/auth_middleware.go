package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/user/brokerage/backend/internal/auth"
)

// PrincipalKey is the fiber.Ctx locals key under which Protected stores the
// resolved caller principal.
const PrincipalKey = "principal"

// Protected verifies the bearer token and stores the resolved principal in
// the request context for downstream handlers.
func Protected(issuer *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization header"})
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization header format"})
		}

		claims, err := issuer.Validate(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals(PrincipalKey, auth.FromClaims(claims))
		c.Locals("username", claims.Username)

		return c.Next()
	}
}
