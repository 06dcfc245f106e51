// internal/repository/postgres/apikey_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"license-service/internal/domain/apikey"
	xerrors "license-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ApiKeyRepository struct {
	db *pgxpool.Pool
}

func NewApiKeyRepository(db *pgxpool.Pool) *ApiKeyRepository {
	return &ApiKeyRepository{db: db}
}

func (r *ApiKeyRepository) Create(ctx context.Context, k *apikey.ApiKey) error {
	query := `
		INSERT INTO api_keys (customer_id, key, is_active, expires_at)
		VALUES ($1, $2, true, $3)
		RETURNING id, is_active, created_at
	`

	err := r.db.QueryRow(ctx, query, k.CustomerID, k.Key, k.ExpiresAt).
		Scan(&k.ID, &k.IsActive, &k.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

func (r *ApiKeyRepository) FindActiveByKey(ctx context.Context, key string) (*apikey.ApiKey, error) {
	query := selectApiKey + `
		WHERE key = $1 AND is_active = true
		AND (expires_at IS NULL OR expires_at > now())
	`
	return r.scanOne(r.db.QueryRow(ctx, query, key))
}

func (r *ApiKeyRepository) FindActiveByCustomer(ctx context.Context, customerID int64) (*apikey.ApiKey, error) {
	query := selectApiKey + `
		WHERE customer_id = $1 AND is_active = true
		AND (expires_at IS NULL OR expires_at > now())
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, customerID))
}

const selectApiKey = `
	SELECT id, customer_id, key, is_active, created_at, expires_at
	FROM api_keys
`

func (r *ApiKeyRepository) scanOne(row pgx.Row) (*apikey.ApiKey, error) {
	var k apikey.ApiKey
	err := row.Scan(&k.ID, &k.CustomerID, &k.Key, &k.IsActive, &k.CreatedAt, &k.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find api key: %w", err)
	}
	return &k, nil
}
