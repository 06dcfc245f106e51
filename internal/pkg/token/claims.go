// internal/pkg/token/claims.go
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the signed token claims. Subject carries the principal's
// email address.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin checks if the claims belong to an admin principal.
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// IsCustomer checks if the claims belong to a customer principal.
func (c *Claims) IsCustomer() bool {
	return c.Role == "customer"
}
