// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"
)

// Customer is the business profile linked 1:1 to a login principal.
type Customer struct {
	ID        int64        `json:"id" db:"id"`
	UserID    int64        `json:"-" db:"user_id"`
	Name      string       `json:"name" db:"name"`
	Email     string       `json:"email" db:"email"`
	Phone     string       `json:"phone" db:"phone"`
	IsActive  bool         `json:"is_active" db:"is_active"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt sql.NullTime `json:"updated_at,omitempty" db:"updated_at"`
}
