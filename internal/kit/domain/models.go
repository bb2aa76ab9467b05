// Package domain contains the kit view model derived from claimed licenses.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	licensedomain "github.com/starter-spark/kitclaim/internal/license/domain"
)

// Kit is a purely derived aggregate: a user's claimed licenses for one
// product folded into quantity plus the date the kit was first claimed.
// It has no lifecycle of its own and is recomputed on every read.
type Kit struct {
	ProductID         snowflake.ID `json:"product_id"`
	ProductName       string       `json:"product_name,omitempty"`
	Quantity          int          `json:"quantity"`
	EarliestClaimedAt time.Time    `json:"earliest_claimed_at"`
}

// Service is the read-side kit projection.
type Service interface {
	ListKits(ctx context.Context) ([]Kit, error)
}

// Aggregate folds claimed licenses into kits grouped by product. Quantity
// counts licenses in the group; EarliestClaimedAt is the minimum claim time,
// stable even when duplicates are claimed later. Output order is first-seen
// input order. Licenses that are not claimed yet are skipped.
func Aggregate(licenses []licensedomain.License) []Kit {
	var order []snowflake.ID
	byProduct := make(map[snowflake.ID]*Kit)

	for _, license := range licenses {
		if license.Status != licensedomain.StatusClaimed || license.ClaimedAt == nil {
			continue
		}
		kit, ok := byProduct[license.ProductID]
		if !ok {
			kit = &Kit{
				ProductID:         license.ProductID,
				EarliestClaimedAt: *license.ClaimedAt,
			}
			byProduct[license.ProductID] = kit
			order = append(order, license.ProductID)
		}
		kit.Quantity++
		if license.ClaimedAt.Before(kit.EarliestClaimedAt) {
			kit.EarliestClaimedAt = *license.ClaimedAt
		}
	}

	kits := make([]Kit, 0, len(order))
	for _, productID := range order {
		kits = append(kits, *byProduct[productID])
	}
	return kits
}
