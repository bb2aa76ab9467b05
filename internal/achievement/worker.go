package achievement

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/starter-spark/kitclaim/internal/events"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Outbox  *events.Outbox
	Checker Checker
	Config  Config `optional:"true"`
}

type Worker struct {
	log     *zap.Logger
	outbox  *events.Outbox
	checker Checker
	cfg     Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:     p.Log.Named("achievement.worker"),
		outbox:  p.Outbox,
		checker: p.Checker,
		cfg:     p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.log.Warn("achievement dispatch run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce drains one batch of unpublished events. Delivery is at least
// once: a row is marked published only after its check returns, and a
// failed check leaves the row for the next tick.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	if w.outbox == nil || w.checker == nil {
		return 0, errors.New("achievement_worker_unavailable")
	}

	rows, err := w.outbox.FetchUnpublished(ctx, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, row := range rows {
		if row.EventType != events.EventLicenseClaimed {
			// Unknown events are drained so they cannot wedge the queue.
			if err := w.outbox.MarkPublished(ctx, row.ID); err != nil {
				return dispatched, err
			}
			continue
		}

		payload := payloadFromRow(row)
		if err := w.checker.CheckClaim(ctx, payload); err != nil {
			w.log.Warn("achievement check failed",
				zap.String("event_id", row.ID.String()),
				zap.String("license_id", payload.LicenseID),
				zap.Error(err),
			)
			continue
		}
		if err := w.outbox.MarkPublished(ctx, row.ID); err != nil {
			return dispatched, err
		}
		dispatched++
	}
	return dispatched, nil
}

func payloadFromRow(row events.KitEvent) events.LicenseClaimedPayload {
	str := func(key string) string {
		value, _ := row.Payload[key].(string)
		return value
	}
	return events.LicenseClaimedPayload{
		LicenseID: str("license_id"),
		OwnerID:   str("owner_id"),
		ProductID: str("product_id"),
		ClaimedAt: str("claimed_at"),
	}
}
