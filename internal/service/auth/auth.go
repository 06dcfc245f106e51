// internal/service/auth/auth.go
package auth

import (
	"context"
	"time"

	"license-service/internal/domain/apikey"
	"license-service/internal/domain/customer"
	"license-service/internal/domain/user"
	keygen "license-service/internal/pkg/apikey"
	xerrors "license-service/internal/pkg/errors"
	"license-service/internal/pkg/hash"
	"license-service/internal/pkg/ratelimit"
	"license-service/internal/pkg/token"

	"go.uber.org/zap"
)

type AuthService struct {
	userRepo     user.Repository
	customerRepo customer.Repository
	apiKeyRepo   apikey.Repository
	hasher       *hash.Hasher
	tokens       *token.Manager
	limiter      *ratelimit.LoginLimiter
	apiKeyPrefix string
	logger       *zap.Logger
}

func NewAuthService(
	userRepo user.Repository,
	customerRepo customer.Repository,
	apiKeyRepo apikey.Repository,
	hasher *hash.Hasher,
	tokens *token.Manager,
	limiter *ratelimit.LoginLimiter,
	apiKeyPrefix string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		apiKeyRepo:   apiKeyRepo,
		hasher:       hasher,
		tokens:       tokens,
		limiter:      limiter,
		apiKeyPrefix: apiKeyPrefix,
		logger:       logger,
	}
}

type AdminLoginResult struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	ExpiresIn int    `json:"expires_in"`
}

type CustomerLoginResult struct {
	Token     string `json:"token"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	ExpiresIn int    `json:"expires_in"`
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"required,min=10,max=20"`
}

type SDKLoginResult struct {
	APIKey    string `json:"api_key"`
	Token     string `json:"token"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	ExpiresIn int    `json:"expires_in"`
}

// AdminLogin verifies admin credentials and issues a token.
func (s *AuthService) AdminLogin(ctx context.Context, ip, email, password string) (*AdminLoginResult, error) {
	u, err := s.verifyCredentials(ctx, ip, email, password, user.RoleAdmin)
	if err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(u.Email, u.Role)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to issue token")
	}

	return &AdminLoginResult{
		Token:     signed,
		Email:     u.Email,
		ExpiresIn: s.expiresIn(),
	}, nil
}

// CustomerLogin verifies customer credentials and issues a token.
func (s *AuthService) CustomerLogin(ctx context.Context, ip, email, password string) (*CustomerLoginResult, error) {
	u, err := s.verifyCredentials(ctx, ip, email, password, user.RoleCustomer)
	if err != nil {
		return nil, err
	}

	c, err := s.customerRepo.FindByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(u.Email, u.Role)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to issue token")
	}

	return &CustomerLoginResult{
		Token:     signed,
		Name:      c.Name,
		Phone:     c.Phone,
		ExpiresIn: s.expiresIn(),
	}, nil
}

// Signup registers a new customer principal and profile and logs them in.
// Fails Conflict when the email is already taken by a user or a customer.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*CustomerLoginResult, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, xerrors.ErrConflict
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}
	if _, err := s.customerRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, xerrors.ErrConflict
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to hash password")
	}

	u := &user.User{
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         user.RoleCustomer,
		IsActive:     true,
	}
	c := &customer.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := s.customerRepo.CreateWithUser(ctx, u, c); err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(u.Email, u.Role)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to issue token")
	}

	s.logger.Info("customer signed up", zap.Int64("customer_id", c.ID), zap.String("email", c.Email))

	return &CustomerLoginResult{
		Token:     signed,
		Name:      c.Name,
		Phone:     c.Phone,
		ExpiresIn: s.expiresIn(),
	}, nil
}

// SDKLogin authenticates customer credentials for the SDK surface. An existing
// active API key is reused; one is minted only when the customer has none.
func (s *AuthService) SDKLogin(ctx context.Context, ip, email, password string) (*SDKLoginResult, error) {
	u, err := s.verifyCredentials(ctx, ip, email, password, user.RoleCustomer)
	if err != nil {
		return nil, err
	}

	c, err := s.customerRepo.FindByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	var keyValue string
	existing, err := s.apiKeyRepo.FindActiveByCustomer(ctx, c.ID)
	switch {
	case err == nil:
		keyValue = existing.Key
	case xerrors.Is(err, xerrors.ErrNotFound):
		keyValue, err = keygen.Generate(s.apiKeyPrefix)
		if err != nil {
			return nil, xerrors.Wrap(err, "failed to generate api key")
		}
		k := &apikey.ApiKey{CustomerID: c.ID, Key: keyValue}
		if err := s.apiKeyRepo.Create(ctx, k); err != nil {
			return nil, err
		}
		s.logger.Info("api key issued", zap.Int64("customer_id", c.ID))
	default:
		return nil, err
	}

	signed, err := s.tokens.Issue(u.Email, u.Role)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to issue token")
	}

	return &SDKLoginResult{
		APIKey:    keyValue,
		Token:     signed,
		Name:      c.Name,
		Phone:     c.Phone,
		ExpiresIn: s.expiresIn(),
	}, nil
}

// ResolveToken maps a bearer token to its principal. Every failure mode,
// internal errors included, collapses to ErrUnauthorized.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (*user.User, *token.Claims, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, nil, xerrors.ErrUnauthorized
	}

	u, err := s.userRepo.FindByEmail(ctx, claims.Subject)
	if err != nil || !u.IsActive {
		return nil, nil, xerrors.ErrUnauthorized
	}

	return u, claims, nil
}

// ResolveCustomer resolves the customer profile linked to a principal.
func (s *AuthService) ResolveCustomer(ctx context.Context, userID int64) (*customer.Customer, error) {
	return s.customerRepo.FindByUserID(ctx, userID)
}

// ResolveAPIKey maps an SDK API key to its customer. Missing, inactive or
// dangling keys all surface as ErrUnauthorized.
func (s *AuthService) ResolveAPIKey(ctx context.Context, key string) (*customer.Customer, error) {
	k, err := s.apiKeyRepo.FindActiveByKey(ctx, key)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	c, err := s.customerRepo.FindByID(ctx, k.CustomerID)
	if err != nil || !c.IsActive {
		return nil, xerrors.ErrUnauthorized
	}

	return c, nil
}

// EnsureAdminExists seeds the default admin principal at startup.
func (s *AuthService) EnsureAdminExists(ctx context.Context, email, password string) error {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !xerrors.Is(err, xerrors.ErrNotFound) {
		return err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return xerrors.Wrap(err, "failed to hash admin password")
	}

	u := &user.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         user.RoleAdmin,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return err
	}

	s.logger.Info("default admin created", zap.String("email", email))
	return nil
}

// verifyCredentials checks the password for a principal with the expected
// role. Rate limited per ip+email. Legacy digests are rehashed to bcrypt on
// the way through so the weak hash never survives a successful login.
func (s *AuthService) verifyCredentials(ctx context.Context, ip, email, password, role string) (*user.User, error) {
	allowed, err := s.limiter.Allow(ctx, ip, email)
	if err != nil {
		s.logger.Warn("rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		return nil, xerrors.ErrRateLimited
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil || u.Role != role || !s.hasher.Verify(password, u.PasswordHash) {
		return nil, xerrors.ErrUnauthorized
	}
	if !u.IsActive {
		return nil, xerrors.ErrForbidden
	}

	if hash.IsLegacy(u.PasswordHash) {
		if rehashed, err := s.hasher.Hash(password); err == nil {
			if err := s.userRepo.UpdatePasswordHash(ctx, u.ID, rehashed); err != nil {
				s.logger.Warn("failed to migrate legacy password hash",
					zap.Int64("user_id", u.ID), zap.Error(err))
			} else {
				u.PasswordHash = rehashed
				s.logger.Info("legacy password hash migrated", zap.Int64("user_id", u.ID))
			}
		}
	}

	if err := s.limiter.Reset(ctx, ip, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	return u, nil
}

func (s *AuthService) expiresIn() int {
	return int(s.tokens.TTL() / time.Second)
}
