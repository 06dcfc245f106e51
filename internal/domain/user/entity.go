// internal/domain/user/entity.go
package user

import (
	"database/sql"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User is a login principal. At most one customer profile links back to it.
type User struct {
	ID           int64        `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"`
	Role         string       `json:"role" db:"role"`
	IsActive     bool         `json:"is_active" db:"is_active"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    sql.NullTime `json:"updated_at,omitempty" db:"updated_at"`
}
