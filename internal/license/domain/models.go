// Package domain contains persistence models and contracts for kit licenses.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusPending        = "pending"
	StatusClaimed        = "claimed"
	StatusRejected       = "rejected"
	StatusClaimedByOther = "claimed_by_other"
)

// License is a single kit entitlement issued against a purchase.
type License struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Code string       `gorm:"type:text;not null;uniqueIndex" json:"code"`

	// pending until claimed or rejected; claimed_by_other is written by the
	// issuance pipeline, never by this service.
	Status string `gorm:"type:text;not null;default:pending" json:"status"`

	// Purchase email, stored as issued. Comparisons are case-insensitive.
	CustomerEmail string `gorm:"type:text;not null;index" json:"customer_email"`

	OwnerID   *snowflake.ID `gorm:"index" json:"owner_id,omitempty"`
	ProductID snowflake.ID  `gorm:"not null;index" json:"product_id"`
	ClaimedAt *time.Time    `json:"claimed_at,omitempty"`

	// Single-use credential for emailed claim links. Cleared in the same
	// write that moves the license out of pending.
	ClaimToken *string `gorm:"type:text;uniqueIndex" json:"-"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (License) TableName() string { return "licenses" }

// Terminal reports whether the license can no longer transition.
func (l License) Terminal() bool {
	return l.Status != StatusPending
}
