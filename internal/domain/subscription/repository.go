// internal/domain/subscription/repository.go
package subscription

import (
	"context"
	"time"
)

// Repository persists subscription rows. The check-then-act sequences of the
// lifecycle engine are expressed as conditional single-statement writes so two
// concurrent requests cannot both pass the no-open-subscription check.
type Repository interface {
	// CreateIfNoneOpen inserts sub unless the customer already holds a
	// subscription in an open state, in which case it returns ErrConflict.
	CreateIfNoneOpen(ctx context.Context, sub *Subscription) error

	FindByID(ctx context.Context, id int64) (*Subscription, error)

	// FindCurrentByCustomer returns the customer's subscription in
	// {active, approved}, joined with its pack; ErrNotFound if none.
	FindCurrentByCustomer(ctx context.Context, customerID int64) (*Detail, error)

	// Approve flips a requested subscription to approved, provided no other
	// open approved/active subscription exists for the same customer. Returns
	// ErrConflict when the conditional write matches no row.
	Approve(ctx context.Context, id int64, approvedAt, expiresAt time.Time) error

	// MarkExpired transitions an approved/active subscription to expired.
	// Idempotent: a second call matches no row and is a no-op.
	MarkExpired(ctx context.Context, id int64) error

	// DeactivateCurrent sets the customer's approved/active subscription to
	// inactive. Returns ErrNotFound when no such subscription exists.
	DeactivateCurrent(ctx context.Context, customerID int64, deactivatedAt time.Time) error

	ListByCustomer(ctx context.Context, customerID int64, f HistoryFilters) ([]Detail, int64, error)
	List(ctx context.Context, f ListFilters) ([]Detail, int64, error)

	// Aggregates for the dashboard.
	CountByStatus(ctx context.Context, statuses ...Status) (int64, error)
	SumPackPrice(ctx context.Context, statuses ...Status) (float64, error)
	RecentEvents(ctx context.Context, limit int) ([]Event, error)

	// CountOpenByPack counts approved/active subscriptions referencing a pack.
	CountOpenByPack(ctx context.Context, packID int64) (int64, error)
}
