// internal/repository/postgres/pack_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"license-service/internal/domain/pack"
	xerrors "license-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PackRepository struct {
	db *pgxpool.Pool
}

func NewPackRepository(db *pgxpool.Pool) *PackRepository {
	return &PackRepository{db: db}
}

func (r *PackRepository) Create(ctx context.Context, p *pack.Pack) error {
	query := `
		INSERT INTO subscription_packs (name, description, sku, price, validity_months, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING id, is_active, created_at
	`

	err := r.db.QueryRow(ctx, query, p.Name, p.Description, p.SKU, p.Price, p.ValidityMonths).
		Scan(&p.ID, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create subscription pack: %w", err)
	}
	return nil
}

func (r *PackRepository) FindByID(ctx context.Context, id int64) (*pack.Pack, error) {
	query := selectPack + ` WHERE id = $1 AND is_active = true`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *PackRepository) FindBySKU(ctx context.Context, sku string) (*pack.Pack, error) {
	query := selectPack + ` WHERE sku = $1 AND is_active = true`
	return r.scanOne(r.db.QueryRow(ctx, query, sku))
}

func (r *PackRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM subscription_packs WHERE sku = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, sku).Scan(&exists)
	return exists, err
}

func (r *PackRepository) Update(ctx context.Context, p *pack.Pack) error {
	query := `
		UPDATE subscription_packs
		SET name = $1, description = $2, sku = $3, price = $4, validity_months = $5, updated_at = $6
		WHERE id = $7 AND is_active = true
	`

	result, err := r.db.Exec(ctx, query, p.Name, p.Description, p.SKU, p.Price, p.ValidityMonths, time.Now(), p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to update subscription pack: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *PackRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE subscription_packs SET is_active = false, updated_at = $1 WHERE id = $2 AND is_active = true`

	result, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription pack: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *PackRepository) List(ctx context.Context, f pack.ListFilters) ([]pack.Pack, int64, error) {
	where := `WHERE is_active = true`
	args := []interface{}{}
	argPos := 1

	if f.Search != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR sku ILIKE $%d)`, argPos, argPos)
		args = append(args, "%"+f.Search+"%")
		argPos++
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM subscription_packs %s`, where)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count packs: %w", err)
	}

	query := fmt.Sprintf(`%s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		selectPack, where, argPos, argPos+1)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list packs: %w", err)
	}
	defer rows.Close()

	packs := []pack.Pack{}
	for rows.Next() {
		var p pack.Pack
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.Price, &p.ValidityMonths, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan pack: %w", err)
		}
		packs = append(packs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list packs: %w", err)
	}

	return packs, total, nil
}

func (r *PackRepository) ListActive(ctx context.Context) ([]pack.Pack, error) {
	query := selectPack + ` WHERE is_active = true ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active packs: %w", err)
	}
	defer rows.Close()

	packs := []pack.Pack{}
	for rows.Next() {
		var p pack.Pack
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.Price, &p.ValidityMonths, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pack: %w", err)
		}
		packs = append(packs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list active packs: %w", err)
	}

	return packs, nil
}

const selectPack = `
	SELECT id, name, description, sku, price, validity_months, is_active, created_at, updated_at
	FROM subscription_packs
`

func (r *PackRepository) scanOne(row pgx.Row) (*pack.Pack, error) {
	var p pack.Pack
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.Price, &p.ValidityMonths, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription pack: %w", err)
	}
	return &p, nil
}
