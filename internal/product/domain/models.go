// Package domain contains the minimal kit product catalog.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Product is one purchasable kit SKU. The storefront owns the full catalog;
// this service only needs enough to label claims and kits.
type Product struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	SKU       string       `gorm:"type:text;not null;uniqueIndex" json:"sku"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*Product, error)
}

// Service resolves display names for claim responses and kit views.
type Service interface {
	GetName(ctx context.Context, id snowflake.ID) (string, error)
}

var ErrNotFound = errors.New("product_not_found")
