// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusExpired   Status = "expired"
)

// OpenStatuses are the states counted against the one-subscription-per-customer
// rule. A customer holds at most one subscription in any of these at a time.
var OpenStatuses = []Status{StatusRequested, StatusApproved, StatusActive}

// CurrentStatuses are the states a customer-facing "current subscription" read
// resolves against.
var CurrentStatuses = []Status{StatusActive, StatusApproved}

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusActive, StatusInactive, StatusExpired:
		return true
	}
	return false
}

// Subscription joins a customer to a pack with its lifecycle state. Rows are
// never hard-deleted.
type Subscription struct {
	ID            int64        `json:"id" db:"id"`
	CustomerID    int64        `json:"customer_id" db:"customer_id"`
	PackID        int64        `json:"pack_id" db:"pack_id"`
	Status        Status       `json:"status" db:"status"`
	RequestedAt   time.Time    `json:"requested_at" db:"requested_at"`
	ApprovedAt    sql.NullTime `json:"approved_at,omitempty" db:"approved_at"`
	AssignedAt    sql.NullTime `json:"assigned_at,omitempty" db:"assigned_at"`
	ExpiresAt     sql.NullTime `json:"expires_at,omitempty" db:"expires_at"`
	DeactivatedAt sql.NullTime `json:"deactivated_at,omitempty" db:"deactivated_at"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     sql.NullTime `json:"updated_at,omitempty" db:"updated_at"`
}

// Detail is a subscription row joined with its customer and pack.
type Detail struct {
	Subscription
	CustomerName  string  `json:"customer_name,omitempty"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	PackName      string  `json:"pack_name"`
	PackSKU       string  `json:"pack_sku"`
	Price         float64 `json:"price"`

	// IsValid reports whether the subscription is still usable at read time.
	// Stamped by the lifecycle engine, not stored.
	IsValid bool `json:"is_valid"`
}

// Event is a recent-activity row for the dashboard.
type Event struct {
	Type      string    `json:"type"`
	Customer  string    `json:"customer"`
	Pack      string    `json:"pack"`
	Timestamp time.Time `json:"timestamp"`
}
