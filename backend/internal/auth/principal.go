package auth

import (
	"github.com/google/uuid"

	"github.com/user/brokerage/backend/internal/models"
)

// Principal is the resolved caller identity, checked once at each service
// entry point before any ledger mutation. A customer principal may only act
// on customers owned by its own user; an admin principal may act on any.
type Principal struct {
	UserID uuid.UUID
	Role   models.Role
}

// CustomerPrincipal builds a principal for a customer-role user.
func CustomerPrincipal(userID uuid.UUID) Principal {
	return Principal{UserID: userID, Role: models.RoleCustomer}
}

// AdminPrincipal builds a principal that may act on any customer.
func AdminPrincipal(userID uuid.UUID) Principal {
	return Principal{UserID: userID, Role: models.RoleAdmin}
}

// FromClaims derives a principal from validated token claims.
func FromClaims(claims *Claims) Principal {
	return Principal{UserID: claims.UserID, Role: claims.Role}
}

// Authorize checks whether the principal may operate on the given customer.
func (p Principal) Authorize(customer *models.Customer) error {
	if p.Role == models.RoleAdmin {
		return nil
	}
	if customer.UserID == p.UserID {
		return nil
	}
	return models.ErrNotAuthorized
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}
