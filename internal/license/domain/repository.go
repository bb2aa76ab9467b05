package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the only write path to licenses. Transitions are single
// conditional statements; a false return with a nil error means the
// predicate did not hold at write time (state already terminal, email
// mismatch, or a concurrent request won).
type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*License, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*License, error)
	FindByClaimToken(ctx context.Context, db *gorm.DB, token string) (*License, error)
	ListPendingByEmail(ctx context.Context, db *gorm.DB, email string) ([]License, error)
	ListClaimedByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]License, error)

	ClaimPending(ctx context.Context, db *gorm.DB, id, ownerID snowflake.ID, email string, now time.Time) (bool, error)
	RejectPending(ctx context.Context, db *gorm.DB, id snowflake.ID, email string, now time.Time) (bool, error)
}
