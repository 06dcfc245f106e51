// internal/domain/apikey/repository.go
package apikey

import "context"

type Repository interface {
	Create(ctx context.Context, k *ApiKey) error
	// FindActiveByKey matches the exact key value; inactive or expired keys
	// are never returned.
	FindActiveByKey(ctx context.Context, key string) (*ApiKey, error)
	FindActiveByCustomer(ctx context.Context, customerID int64) (*ApiKey, error)
}
