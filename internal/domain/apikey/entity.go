// internal/domain/apikey/entity.go
package apikey

import (
	"database/sql"
	"time"
)

// ApiKey is an opaque secret tied to one customer, used for non-interactive
// SDK authentication. Rows are never hard-deleted.
type ApiKey struct {
	ID         int64        `json:"id" db:"id"`
	CustomerID int64        `json:"customer_id" db:"customer_id"`
	Key        string       `json:"key" db:"key"`
	IsActive   bool         `json:"is_active" db:"is_active"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	ExpiresAt  sql.NullTime `json:"expires_at,omitempty" db:"expires_at"`
}
