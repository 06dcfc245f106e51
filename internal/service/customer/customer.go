// internal/service/customer/customer.go
package customer

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"license-service/internal/domain/customer"
	"license-service/internal/domain/user"
	xerrors "license-service/internal/pkg/errors"
	"license-service/internal/pkg/hash"

	"go.uber.org/zap"
)

// CustomerService is the admin-facing directory over customer profiles and
// their login principals.
type CustomerService struct {
	customerRepo customer.Repository
	userRepo     user.Repository
	hasher       *hash.Hasher
	logger       *zap.Logger
}

func NewCustomerService(customerRepo customer.Repository, userRepo user.Repository, hasher *hash.Hasher, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		userRepo:     userRepo,
		hasher:       hasher,
		logger:       logger,
	}
}

// Create registers a customer on behalf of an admin. A principal with a
// generated temporary password is created alongside the profile; the password
// is returned once so the admin can hand it over.
func (s *CustomerService) Create(ctx context.Context, req customer.CreateRequest) (*customer.Customer, string, error) {
	if err := s.checkEmailUnused(ctx, req.Email, 0); err != nil {
		return nil, "", err
	}

	tempPassword, err := generatePassword()
	if err != nil {
		return nil, "", xerrors.Wrap(err, "failed to generate temporary password")
	}
	hashed, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return nil, "", xerrors.Wrap(err, "failed to hash password")
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
		return nil, "", err
	}

	s.logger.Info("customer created", zap.Int64("customer_id", c.ID), zap.String("email", c.Email))
	return c, tempPassword, nil
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*customer.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

// Update applies a partial update. An email change is checked for uniqueness
// across principals and profiles and written to both.
func (s *CustomerService) Update(ctx context.Context, id int64, req customer.UpdateRequest) (*customer.Customer, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	emailChanged := req.Email != nil && *req.Email != c.Email
	if emailChanged {
		if err := s.checkEmailUnused(ctx, *req.Email, c.ID); err != nil {
			return nil, err
		}
		c.Email = *req.Email
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}

	if emailChanged {
		if err := s.customerRepo.UpdateWithUserEmail(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err := s.customerRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete soft-deletes the profile. Open subscriptions are not checked; the
// subscription rows survive the delete untouched.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if err := s.customerRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.Int64("customer_id", id))
	return nil
}

func (s *CustomerService) List(ctx context.Context, f customer.ListFilters) ([]customer.Customer, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
	return s.customerRepo.List(ctx, f)
}

// checkEmailUnused enforces email uniqueness across both the users and
// customers tables. excludeCustomerID skips the customer being updated.
func (s *CustomerService) checkEmailUnused(ctx context.Context, email string, excludeCustomerID int64) error {
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return xerrors.ErrConflict
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return err
	}

	existing, err := s.customerRepo.FindByEmail(ctx, email)
	if err == nil {
		if existing.ID != excludeCustomerID {
			return xerrors.ErrConflict
		}
		return nil
	}
	if !xerrors.Is(err, xerrors.ErrNotFound) {
		return err
	}
	return nil
}

func generatePassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
