// Package seed loads demo catalog data for development environments.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	licensedomain "github.com/starter-spark/kitclaim/internal/license/domain"
	productdomain "github.com/starter-spark/kitclaim/internal/product/domain"
	productrepo "github.com/starter-spark/kitclaim/internal/product/repository"
)

const demoEmail = "maker@example.com"

var demoProducts = []struct {
	SKU  string
	Name string
}{
	{SKU: "spark-solar-01", Name: "Solar Rover Kit"},
	{SKU: "spark-synth-01", Name: "Pocket Synth Kit"},
	{SKU: "spark-radio-01", Name: "Crystal Radio Kit"},
}

var demoCodes = []string{
	"DEMO-1111-2222-3333",
	"DEMO-4444-5555-6666",
	"DEMO-7777-8888-9999",
}

// EnsureDemoCatalog seeds demo products plus claimable pending licenses.
// Idempotent; existing rows are left untouched.
func EnsureDemoCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	products := productrepo.Provide()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		productIDs := make([]snowflake.ID, 0, len(demoProducts))
		for _, demo := range demoProducts {
			existing, err := products.FindBySKU(ctx, tx, demo.SKU)
			if err != nil {
				return err
			}
			if existing != nil {
				productIDs = append(productIDs, existing.ID)
				continue
			}

			product := productdomain.Product{
				ID:        node.Generate(),
				SKU:       demo.SKU,
				Name:      demo.Name,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			productIDs = append(productIDs, product.ID)
		}

		for i, code := range demoCodes {
			token := uuid.NewString()
			license := licensedomain.License{
				ID:            node.Generate(),
				Code:          code,
				Status:        licensedomain.StatusPending,
				CustomerEmail: demoEmail,
				ProductID:     productIDs[i%len(productIDs)],
				ClaimToken:    &token,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			err := tx.
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "code"}},
					DoNothing: true,
				}).
				Create(&license).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
