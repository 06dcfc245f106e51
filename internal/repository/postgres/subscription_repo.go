// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"license-service/internal/domain/subscription"
	xerrors "license-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// CreateIfNoneOpen inserts the subscription only when the customer has no
// subscription in an open state. The guard runs in the same statement as the
// insert; the partial unique index on open subscriptions backs it up under
// concurrency.
func (r *SubscriptionRepository) CreateIfNoneOpen(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (customer_id, pack_id, status, requested_at, assigned_at, expires_at)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE customer_id = $1 AND status IN ('requested', 'approved', 'active')
		)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		sub.CustomerID, sub.PackID, sub.Status, sub.RequestedAt, sub.AssignedAt, sub.ExpiresAt,
	).Scan(&sub.ID, &sub.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	query := `
		SELECT id, customer_id, pack_id, status, requested_at, approved_at,
		       assigned_at, expires_at, deactivated_at, created_at, updated_at
		FROM subscriptions
		WHERE id = $1
	`

	var s subscription.Subscription
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.CustomerID, &s.PackID, &s.Status, &s.RequestedAt, &s.ApprovedAt,
		&s.AssignedAt, &s.ExpiresAt, &s.DeactivatedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) FindCurrentByCustomer(ctx context.Context, customerID int64) (*subscription.Detail, error) {
	query := selectDetail + `
		WHERE s.customer_id = $1 AND s.status IN ('active', 'approved')
		LIMIT 1
	`

	d, err := r.scanDetail(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Approve performs the approve-if-requested conditional write. The inner guard
// rejects the transition when another open approved/active subscription exists
// for the same customer.
func (r *SubscriptionRepository) Approve(ctx context.Context, id int64, approvedAt, expiresAt time.Time) error {
	query := `
		UPDATE subscriptions
		SET status = 'approved', approved_at = $2, expires_at = $3, updated_at = $2
		WHERE id = $1 AND status = 'requested'
		AND NOT EXISTS (
			SELECT 1 FROM subscriptions other
			WHERE other.customer_id = subscriptions.customer_id
			AND other.id <> subscriptions.id
			AND other.status IN ('approved', 'active')
		)
	`

	result, err := r.db.Exec(ctx, query, id, approvedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to approve subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrConflict
	}
	return nil
}

func (r *SubscriptionRepository) MarkExpired(ctx context.Context, id int64) error {
	query := `
		UPDATE subscriptions
		SET status = 'expired', updated_at = $2
		WHERE id = $1 AND status IN ('active', 'approved')
	`

	if _, err := r.db.Exec(ctx, query, id, time.Now()); err != nil {
		return fmt.Errorf("failed to mark subscription expired: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) DeactivateCurrent(ctx context.Context, customerID int64, deactivatedAt time.Time) error {
	query := `
		UPDATE subscriptions
		SET status = 'inactive', deactivated_at = $2, updated_at = $2
		WHERE customer_id = $1 AND status IN ('active', 'approved')
	`

	result, err := r.db.Exec(ctx, query, customerID, deactivatedAt)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) ListByCustomer(ctx context.Context, customerID int64, f subscription.HistoryFilters) ([]subscription.Detail, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE customer_id = $1`, customerID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	order := "ASC"
	if f.SortDesc {
		order = "DESC"
	}

	query := fmt.Sprintf(`%s WHERE s.customer_id = $1 ORDER BY s.created_at %s LIMIT $2 OFFSET $3`,
		selectDetail, order)

	rows, err := r.db.Query(ctx, query, customerID, f.Limit, (f.Page-1)*f.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	details, err := r.scanDetails(rows)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

func (r *SubscriptionRepository) List(ctx context.Context, f subscription.ListFilters) ([]subscription.Detail, int64, error) {
	where := ""
	args := []interface{}{}
	argPos := 1

	if f.Status != "" {
		where = fmt.Sprintf(`WHERE s.status = $%d`, argPos)
		args = append(args, f.Status)
		argPos++
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM subscriptions s
		JOIN customers c ON c.id = s.customer_id
		JOIN subscription_packs p ON p.id = s.pack_id
		%s`, where)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	query := fmt.Sprintf(`%s %s ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d`,
		selectDetail, where, argPos, argPos+1)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	details, err := r.scanDetails(rows)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

func (r *SubscriptionRepository) CountByStatus(ctx context.Context, statuses ...subscription.Status) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE status = ANY($1)`, statusStrings(statuses),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions by status: %w", err)
	}
	return count, nil
}

func (r *SubscriptionRepository) SumPackPrice(ctx context.Context, statuses ...subscription.Status) (float64, error) {
	query := `
		SELECT COALESCE(SUM(p.price), 0)
		FROM subscriptions s
		JOIN subscription_packs p ON p.id = s.pack_id
		WHERE s.status = ANY($1)
	`

	var sum float64
	if err := r.db.QueryRow(ctx, query, statusStrings(statuses)).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum pack prices: %w", err)
	}
	return sum, nil
}

func (r *SubscriptionRepository) RecentEvents(ctx context.Context, limit int) ([]subscription.Event, error) {
	query := `
		SELECT s.status, c.name, p.name, s.created_at
		FROM subscriptions s
		JOIN customers c ON c.id = s.customer_id
		JOIN subscription_packs p ON p.id = s.pack_id
		ORDER BY s.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent events: %w", err)
	}
	defer rows.Close()

	events := []subscription.Event{}
	for rows.Next() {
		var (
			status subscription.Status
			e      subscription.Event
		)
		if err := rows.Scan(&status, &e.Customer, &e.Pack, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = "subscription_" + string(status)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load recent events: %w", err)
	}

	return events, nil
}

func (r *SubscriptionRepository) CountOpenByPack(ctx context.Context, packID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE pack_id = $1 AND status IN ('active', 'approved')`,
		packID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pack subscriptions: %w", err)
	}
	return count, nil
}

const selectDetail = `
	SELECT s.id, s.customer_id, s.pack_id, s.status, s.requested_at, s.approved_at,
	       s.assigned_at, s.expires_at, s.deactivated_at, s.created_at, s.updated_at,
	       c.name, c.email, p.name, p.sku, p.price
	FROM subscriptions s
	JOIN customers c ON c.id = s.customer_id
	JOIN subscription_packs p ON p.id = s.pack_id
`

func (r *SubscriptionRepository) scanDetail(row pgx.Row) (*subscription.Detail, error) {
	var d subscription.Detail
	err := row.Scan(
		&d.ID, &d.CustomerID, &d.PackID, &d.Status, &d.RequestedAt, &d.ApprovedAt,
		&d.AssignedAt, &d.ExpiresAt, &d.DeactivatedAt, &d.CreatedAt, &d.UpdatedAt,
		&d.CustomerName, &d.CustomerEmail, &d.PackName, &d.PackSKU, &d.Price,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscription detail: %w", err)
	}
	return &d, nil
}

func (r *SubscriptionRepository) scanDetails(rows pgx.Rows) ([]subscription.Detail, error) {
	details := []subscription.Detail{}
	for rows.Next() {
		d, err := r.scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan subscription details: %w", err)
	}
	return details, nil
}

func statusStrings(statuses []subscription.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
