// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"license-service/internal/domain/customer"
	"license-service/internal/domain/user"
	xerrors "license-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (user_id, name, email, phone, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, is_active, created_at
	`

	err := r.db.QueryRow(ctx, query, c.UserID, c.Name, c.Email, c.Phone).
		Scan(&c.ID, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// CreateWithUser runs both inserts in a single transaction.
func (r *CustomerRepository) CreateWithUser(ctx context.Context, u *user.User, c *customer.Customer) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, role, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Email, u.PasswordHash, u.Role, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	c.UserID = u.ID
	err = tx.QueryRow(ctx,
		`INSERT INTO customers (user_id, name, email, phone, is_active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id, is_active, created_at`,
		c.UserID, c.Name, c.Email, c.Phone,
	).Scan(&c.ID, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return tx.Commit(ctx)
}

// UpdateWithUserEmail keeps the principal's email in step with the profile.
func (r *CustomerRepository) UpdateWithUserEmail(ctx context.Context, c *customer.Customer) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	result, err := tx.Exec(ctx,
		`UPDATE users SET email = $1, updated_at = $2 WHERE id = $3`,
		c.Email, now, c.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to update user email: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	result, err = tx.Exec(ctx,
		`UPDATE customers
		 SET name = $1, email = $2, phone = $3, updated_at = $4
		 WHERE id = $5 AND is_active = true`,
		c.Name, c.Email, c.Phone, now, c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := selectCustomer + ` WHERE id = $1 AND is_active = true`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *CustomerRepository) FindByUserID(ctx context.Context, userID int64) (*customer.Customer, error) {
	query := selectCustomer + ` WHERE user_id = $1 AND is_active = true`
	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	query := selectCustomer + ` WHERE email = $1 AND is_active = true`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, updated_at = $4
		WHERE id = $5 AND is_active = true
	`

	result, err := r.db.Exec(ctx, query, c.Name, c.Email, c.Phone, time.Now(), c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE customers SET is_active = false, updated_at = $1 WHERE id = $2 AND is_active = true`

	result, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) List(ctx context.Context, f customer.ListFilters) ([]customer.Customer, int64, error) {
	where := `WHERE is_active = true`
	args := []interface{}{}
	argPos := 1

	if f.Search != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, argPos, argPos)
		args = append(args, "%"+f.Search+"%")
		argPos++
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM customers %s`, where)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query := fmt.Sprintf(`%s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		selectCustomer, where, argPos, argPos+1)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []customer.Customer{}
	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	return customers, total, nil
}

func (r *CustomerRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE is_active = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active customers: %w", err)
	}
	return count, nil
}

const selectCustomer = `
	SELECT id, user_id, name, email, phone, is_active, created_at, updated_at
	FROM customers
`

func (r *CustomerRepository) scanOne(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &c, nil
}
