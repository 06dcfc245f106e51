// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"license-service/internal/domain/customer"
	"license-service/internal/domain/user"
	xerrors "license-service/internal/pkg/errors"
	"license-service/internal/pkg/response"
	"license-service/internal/pkg/token"
	"license-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey     = "user"
	ctxClaimsKey   = "claims"
	ctxCustomerKey = "customer"

	apiKeyHeader = "X-API-Key"
)

type AuthMiddleware struct {
	authService *auth.AuthService
}

func NewAuthMiddleware(authService *auth.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate validates the bearer token and attaches the principal to the
// request context. Every failure is a uniform 401.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := extractBearer(c)
		if tok == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token")
			return
		}

		u, claims, err := m.authService.ResolveToken(c.Request.Context(), tok)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "could not validate credentials")
			return
		}

		c.Set(ctxUserKey, u)
		c.Set(ctxClaimsKey, claims)
		c.Next()
	}
}

// AdminOnly requires an authenticated admin principal. MUST be used after
// Authenticate().
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil || !claims.IsAdmin() {
			response.Error(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

// CustomerOnly requires an authenticated customer principal and resolves its
// linked profile. MUST be used after Authenticate().
func (m *AuthMiddleware) CustomerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		claims := CurrentClaims(c)
		if u == nil || claims == nil || !claims.IsCustomer() {
			response.Error(c, http.StatusForbidden, "customer access required")
			return
		}

		profile, err := m.authService.ResolveCustomer(c.Request.Context(), u.ID)
		if err != nil {
			if xerrors.Is(err, xerrors.ErrNotFound) {
				response.FromError(c, err, "customer profile not found")
			} else {
				response.FromError(c, xerrors.ErrInternal, "failed to resolve customer profile")
			}
			return
		}

		c.Set(ctxCustomerKey, profile)
		c.Next()
	}
}

// APIKeyAuth authenticates SDK requests via the X-API-Key header and attaches
// the key's customer. All failures are a uniform 401.
func (m *AuthMiddleware) APIKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(apiKeyHeader)
		if key == "" {
			response.Error(c, http.StatusUnauthorized, "API key required")
			return
		}

		profile, err := m.authService.ResolveAPIKey(c.Request.Context(), key)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid API key")
			return
		}

		c.Set(ctxCustomerKey, profile)
		c.Next()
	}
}

// CurrentUser returns the principal attached by Authenticate, or nil.
func CurrentUser(c *gin.Context) *user.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*user.User)
	return u
}

// CurrentClaims returns the token claims attached by Authenticate, or nil.
func CurrentClaims(c *gin.Context) *token.Claims {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*token.Claims)
	return claims
}

// CurrentCustomer returns the profile attached by CustomerOnly or APIKeyAuth,
// or nil.
func CurrentCustomer(c *gin.Context) *customer.Customer {
	v, ok := c.Get(ctxCustomerKey)
	if !ok {
		return nil
	}
	profile, _ := v.(*customer.Customer)
	return profile
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
