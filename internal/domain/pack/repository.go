// internal/domain/pack/repository.go
package pack

import "context"

// Repository excludes soft-deleted rows from every lookup.
type Repository interface {
	Create(ctx context.Context, p *Pack) error
	FindByID(ctx context.Context, id int64) (*Pack, error)
	FindBySKU(ctx context.Context, sku string) (*Pack, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	Update(ctx context.Context, p *Pack) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f ListFilters) ([]Pack, int64, error)
	ListActive(ctx context.Context) ([]Pack, error)
}
