// internal/middleware/auth_middleware_test.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"license-service/internal/domain/apikey"
	"license-service/internal/domain/customer"
	"license-service/internal/domain/user"
	xerrors "license-service/internal/pkg/errors"
	"license-service/internal/pkg/hash"
	"license-service/internal/pkg/ratelimit"
	"license-service/internal/pkg/token"
	"license-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUserRepo struct {
	byEmail map[string]*user.User
}

func (s *stubUserRepo) Create(context.Context, *user.User) error { return nil }
func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, xerrors.ErrNotFound
}
func (s *stubUserRepo) FindByID(context.Context, int64) (*user.User, error) {
	return nil, xerrors.ErrNotFound
}
func (s *stubUserRepo) UpdatePasswordHash(context.Context, int64, string) error { return nil }

type stubCustomerRepo struct {
	byUserID   map[int64]*customer.Customer
	byID       map[int64]*customer.Customer
	failUserID int64
}

func (s *stubCustomerRepo) Create(context.Context, *customer.Customer) error { return nil }
func (s *stubCustomerRepo) CreateWithUser(context.Context, *user.User, *customer.Customer) error {
	return nil
}
func (s *stubCustomerRepo) UpdateWithUserEmail(context.Context, *customer.Customer) error {
	return nil
}
func (s *stubCustomerRepo) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, xerrors.ErrNotFound
}
func (s *stubCustomerRepo) FindByUserID(_ context.Context, userID int64) (*customer.Customer, error) {
	if s.failUserID != 0 && userID == s.failUserID {
		return nil, errors.New("connection reset")
	}
	if c, ok := s.byUserID[userID]; ok {
		return c, nil
	}
	return nil, xerrors.ErrNotFound
}
func (s *stubCustomerRepo) FindByEmail(context.Context, string) (*customer.Customer, error) {
	return nil, xerrors.ErrNotFound
}
func (s *stubCustomerRepo) Update(context.Context, *customer.Customer) error { return nil }
func (s *stubCustomerRepo) SoftDelete(context.Context, int64) error          { return nil }
func (s *stubCustomerRepo) List(context.Context, customer.ListFilters) ([]customer.Customer, int64, error) {
	return nil, 0, nil
}
func (s *stubCustomerRepo) CountActive(context.Context) (int64, error) { return 0, nil }

type stubApiKeyRepo struct {
	byKey map[string]*apikey.ApiKey
}

func (s *stubApiKeyRepo) Create(context.Context, *apikey.ApiKey) error { return nil }
func (s *stubApiKeyRepo) FindActiveByKey(_ context.Context, key string) (*apikey.ApiKey, error) {
	if k, ok := s.byKey[key]; ok {
		return k, nil
	}
	return nil, xerrors.ErrNotFound
}
func (s *stubApiKeyRepo) FindActiveByCustomer(context.Context, int64) (*apikey.ApiKey, error) {
	return nil, xerrors.ErrNotFound
}

type middlewareFixture struct {
	engine *gin.Engine
	tokens *token.Manager
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := token.NewManager(token.Config{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)

	users := &stubUserRepo{byEmail: map[string]*user.User{
		"admin@example.com":  {ID: 1, Email: "admin@example.com", Role: user.RoleAdmin, IsActive: true},
		"jane@example.com":   {ID: 2, Email: "jane@example.com", Role: user.RoleCustomer, IsActive: true},
		"orphan@example.com": {ID: 3, Email: "orphan@example.com", Role: user.RoleCustomer, IsActive: true},
		"broken@example.com": {ID: 4, Email: "broken@example.com", Role: user.RoleCustomer, IsActive: true},
	}}
	customers := &stubCustomerRepo{
		failUserID: 4,
		byUserID: map[int64]*customer.Customer{
			2: {ID: 10, UserID: 2, Name: "Jane Doe", Email: "jane@example.com", IsActive: true},
		},
		byID: map[int64]*customer.Customer{
			10: {ID: 10, UserID: 2, Name: "Jane Doe", Email: "jane@example.com", IsActive: true},
		},
	}
	keys := &stubApiKeyRepo{byKey: map[string]*apikey.ApiKey{
		"sk-sdk-valid": {ID: 1, CustomerID: 10, Key: "sk-sdk-valid", IsActive: true},
	}}

	svc := auth.NewAuthService(
		users, customers, keys,
		hash.NewHasher(), tokens,
		ratelimit.NewLoginLimiter(nil),
		"sk-sdk-", zap.NewNop(),
	)
	m := NewAuthMiddleware(svc)

	engine := gin.New()
	engine.GET("/admin", m.Authenticate(), m.AdminOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentUser(c).Email})
	})
	engine.GET("/portal", m.Authenticate(), m.CustomerOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"customer": CurrentCustomer(c).Name})
	})
	engine.GET("/sdk", m.APIKeyAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"customer": CurrentCustomer(c).Name})
	})

	return &middlewareFixture{engine: engine, tokens: tokens}
}

func (fx *middlewareFixture) get(path string, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	fx.engine.ServeHTTP(rec, req)
	return rec
}

func (fx *middlewareFixture) bearer(t *testing.T, email, role string) string {
	t.Helper()
	signed, err := fx.tokens.Issue(email, role)
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestAuthenticateMissingToken(t *testing.T) {
	fx := newMiddlewareFixture(t)

	rec := fx.get("/admin", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	fx := newMiddlewareFixture(t)

	for _, header := range []string{"Basic abc", "Bearer", "justatoken"} {
		rec := fx.get("/admin", "Authorization", header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthenticateBadToken(t *testing.T) {
	fx := newMiddlewareFixture(t)

	rec := fx.get("/admin", "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoute(t *testing.T) {
	fx := newMiddlewareFixture(t)

	rec := fx.get("/admin", "Authorization", fx.bearer(t, "admin@example.com", user.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")
}

func TestAdminRouteRejectsCustomer(t *testing.T) {
	fx := newMiddlewareFixture(t)

	rec := fx.get("/admin", "Authorization", fx.bearer(t, "jane@example.com", user.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomerRoute(t *testing.T) {
	fx := newMiddlewareFixture(t)

	rec := fx.get("/portal", "Authorization", fx.bearer(t, "jane@example.com", user.RoleCustomer))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
}

func TestCustomerRouteRejectsAdmin(t *testing.T) {
	fx := newMiddlewareFixture(t)

	rec := fx.get("/portal", "Authorization", fx.bearer(t, "admin@example.com", user.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomerRouteMissingProfile(t *testing.T) {
	fx := newMiddlewareFixture(t)

	rec := fx.get("/portal", "Authorization", fx.bearer(t, "orphan@example.com", user.RoleCustomer))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerRouteProfileLookupFailure(t *testing.T) {
	fx := newMiddlewareFixture(t)

	rec := fx.get("/portal", "Authorization", fx.bearer(t, "broken@example.com", user.RoleCustomer))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAPIKeyRoute(t *testing.T) {
	fx := newMiddlewareFixture(t)

	rec := fx.get("/sdk", "X-API-Key", "sk-sdk-valid")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
}

func TestAPIKeyRouteRejectsMissingOrUnknownKey(t *testing.T) {
	fx := newMiddlewareFixture(t)

	rec := fx.get("/sdk", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = fx.get("/sdk", "X-API-Key", "sk-sdk-bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
