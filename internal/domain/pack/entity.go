// internal/domain/pack/entity.go
package pack

import (
	"database/sql"
	"time"
)

// Pack is a purchasable subscription product.
type Pack struct {
	ID             int64          `json:"id" db:"id"`
	Name           string         `json:"name" db:"name"`
	Description    sql.NullString `json:"description,omitempty" db:"description"`
	SKU            string         `json:"sku" db:"sku"`
	Price          float64        `json:"price" db:"price"`
	ValidityMonths int            `json:"validity_months" db:"validity_months"`
	IsActive       bool           `json:"is_active" db:"is_active"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      sql.NullTime   `json:"updated_at,omitempty" db:"updated_at"`
}
