// Package achievement dispatches post-claim achievement checks. Dispatch is
// decoupled from the claim response: events land in the outbox inside the
// claim transaction and a background worker drains them, so a failed or slow
// check can never affect a success already returned to the caller.
package achievement

import (
	"context"

	"go.uber.org/zap"

	"github.com/starter-spark/kitclaim/internal/events"
)

// Checker receives one claimed-license notification. Implementations are
// best-effort; the worker logs and retries on error.
type Checker interface {
	CheckClaim(ctx context.Context, payload events.LicenseClaimedPayload) error
}

// LogChecker records the check without calling out anywhere. Stands in
// until the community service exposes its achievement endpoint.
type LogChecker struct {
	log *zap.Logger
}

func NewLogChecker(log *zap.Logger) Checker {
	return &LogChecker{log: log.Named("achievement.checker")}
}

func (c *LogChecker) CheckClaim(ctx context.Context, payload events.LicenseClaimedPayload) error {
	c.log.Info("achievement check",
		zap.String("owner_id", payload.OwnerID),
		zap.String("license_id", payload.LicenseID),
		zap.String("product_id", payload.ProductID),
	)
	return nil
}
