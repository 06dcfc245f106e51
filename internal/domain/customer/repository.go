// internal/domain/customer/repository.go
package customer

import (
	"context"

	"license-service/internal/domain/user"
)

// Repository excludes soft-deleted rows from every lookup.
type Repository interface {
	Create(ctx context.Context, c *Customer) error

	// CreateWithUser inserts the login principal and the profile in one
	// transaction, so a failed profile insert cannot leave an orphaned
	// principal holding the email.
	CreateWithUser(ctx context.Context, u *user.User, c *Customer) error

	// UpdateWithUserEmail writes the profile and the principal's email
	// (keyed by c.UserID) in one transaction.
	UpdateWithUserEmail(ctx context.Context, c *Customer) error

	FindByID(ctx context.Context, id int64) (*Customer, error)
	FindByUserID(ctx context.Context, userID int64) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f ListFilters) ([]Customer, int64, error)
	CountActive(ctx context.Context) (int64, error)
}
