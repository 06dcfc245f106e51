// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"database/sql"
	"time"

	"license-service/internal/domain/customer"
	"license-service/internal/domain/pack"
	"license-service/internal/domain/subscription"
	xerrors "license-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// validityDays converts a pack's validity_months to a duration. Months are a
// flat 30 days, not calendar months; kept for wire compatibility.
const validityDays = 30

// Service is the subscription lifecycle engine. Every state transition runs as
// a conditional repository write so the single-open-subscription rule holds
// under concurrent requests.
type Service struct {
	subscriptionRepo subscription.Repository
	packRepo         pack.Repository
	customerRepo     customer.Repository
	logger           *zap.Logger
}

func NewService(subscriptionRepo subscription.Repository, packRepo pack.Repository, customerRepo customer.Repository, logger *zap.Logger) *Service {
	return &Service{
		subscriptionRepo: subscriptionRepo,
		packRepo:         packRepo,
		customerRepo:     customerRepo,
		logger:           logger,
	}
}

// Request records a customer's request for the pack with the given SKU. The
// subscription starts in requested and waits for admin approval.
func (s *Service) Request(ctx context.Context, customerID int64, sku string) (*subscription.Subscription, *pack.Pack, error) {
	p, err := s.packRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, nil, err
	}

	sub := &subscription.Subscription{
		CustomerID:  customerID,
		PackID:      p.ID,
		Status:      subscription.StatusRequested,
		RequestedAt: time.Now(),
	}

	if err := s.subscriptionRepo.CreateIfNoneOpen(ctx, sub); err != nil {
		return nil, nil, err
	}

	s.logger.Info("subscription requested",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("customer_id", customerID),
		zap.String("sku", p.SKU),
	)
	return sub, p, nil
}

// Assign creates an immediately active subscription for the customer,
// skipping the request/approval steps. Fails NotFound when the customer or
// the pack is missing or soft-deleted.
func (s *Service) Assign(ctx context.Context, customerID, packID int64) (*subscription.Subscription, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}

	p, err := s.packRepo.FindByID(ctx, packID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &subscription.Subscription{
		CustomerID:  customerID,
		PackID:      p.ID,
		Status:      subscription.StatusActive,
		RequestedAt: now,
		AssignedAt:  sql.NullTime{Time: now, Valid: true},
		ExpiresAt:   sql.NullTime{Time: expiry(now, p.ValidityMonths), Valid: true},
	}

	if err := s.subscriptionRepo.CreateIfNoneOpen(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription assigned",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("customer_id", customerID),
		zap.Int64("pack_id", packID),
	)
	return sub, nil
}

// Approve moves a requested subscription to approved and stamps its expiry.
// Fails NotFound if the subscription is missing, PreconditionFailed if it is
// not in requested, Conflict if the customer meanwhile gained another open
// subscription.
func (s *Service) Approve(ctx context.Context, id int64) error {
	sub, err := s.subscriptionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status != subscription.StatusRequested {
		return xerrors.ErrPreconditionFailed
	}

	p, err := s.packRepo.FindByID(ctx, sub.PackID)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := s.subscriptionRepo.Approve(ctx, id, now, expiry(now, p.ValidityMonths)); err != nil {
		return err
	}

	s.logger.Info("subscription approved",
		zap.Int64("subscription_id", id),
		zap.Int64("customer_id", sub.CustomerID),
	)
	return nil
}

// Current returns the customer's approved/active subscription. A subscription
// read past its expiry is transitioned to expired and persisted before being
// returned, so every reader observes the same state. The second return value
// reports whether the subscription is still valid.
func (s *Service) Current(ctx context.Context, customerID int64) (*subscription.Detail, bool, error) {
	d, err := s.subscriptionRepo.FindCurrentByCustomer(ctx, customerID)
	if err != nil {
		return nil, false, err
	}

	if d.ExpiresAt.Valid && d.ExpiresAt.Time.Before(time.Now()) {
		if err := s.subscriptionRepo.MarkExpired(ctx, d.ID); err != nil {
			return nil, false, err
		}
		d.Status = subscription.StatusExpired
		d.IsValid = false
		s.logger.Info("subscription lazily expired",
			zap.Int64("subscription_id", d.ID),
			zap.Time("expires_at", d.ExpiresAt.Time),
		)
		return d, false, nil
	}

	d.IsValid = true
	return d, true, nil
}

// Deactivate turns off the customer's approved/active subscription. Fails
// NotFound when there is none.
func (s *Service) Deactivate(ctx context.Context, customerID int64) (time.Time, error) {
	now := time.Now()
	if err := s.subscriptionRepo.DeactivateCurrent(ctx, customerID, now); err != nil {
		return time.Time{}, err
	}

	s.logger.Info("subscription deactivated", zap.Int64("customer_id", customerID))
	return now, nil
}

// History lists every subscription the customer ever held, terminal states
// included, ordered by creation time.
func (s *Service) History(ctx context.Context, customerID int64, f subscription.HistoryFilters) ([]subscription.Detail, int64, error) {
	normalizeHistoryFilters(&f)
	return s.subscriptionRepo.ListByCustomer(ctx, customerID, f)
}

// List is the admin view across all customers, optionally filtered by status.
func (s *Service) List(ctx context.Context, f subscription.ListFilters) ([]subscription.Detail, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, xerrors.ErrInvalidInput
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
	return s.subscriptionRepo.List(ctx, f)
}

func normalizeHistoryFilters(f *subscription.HistoryFilters) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
}

func expiry(from time.Time, validityMonths int) time.Time {
	return from.Add(time.Duration(validityMonths) * validityDays * 24 * time.Hour)
}
