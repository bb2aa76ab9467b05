package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/starter-spark/kitclaim/internal/clock"
	"github.com/starter-spark/kitclaim/internal/events"
	"github.com/starter-spark/kitclaim/internal/identity"
	licensedomain "github.com/starter-spark/kitclaim/internal/license/domain"
	"github.com/starter-spark/kitclaim/internal/observability/logger"
	productdomain "github.com/starter-spark/kitclaim/internal/product/domain"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Repo       licensedomain.Repository
	ProductSvc productdomain.Service
	Outbox     *events.Outbox
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	repo       licensedomain.Repository
	productSvc productdomain.Service
	outbox     *events.Outbox
}

func NewService(p Params) licensedomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("license.service"),
		clock:      p.Clock,
		repo:       p.Repo,
		productSvc: p.ProductSvc,
		outbox:     p.Outbox,
	}
}

func (s *Service) Claim(ctx context.Context, licenseID string) (*licensedomain.ClaimResult, error) {
	ident, err := s.identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	id, err := licensedomain.ParseID(licenseID)
	if err != nil {
		return nil, err
	}

	license, err := s.transition(ctx, ident, id, licensedomain.ActionClaim)
	if err != nil {
		return nil, err
	}
	return s.claimResult(ctx, license), nil
}

func (s *Service) Reject(ctx context.Context, licenseID string) (*licensedomain.License, error) {
	ident, err := s.identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	id, err := licensedomain.ParseID(licenseID)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, ident, id, licensedomain.ActionReject)
}

// ClaimByCode is the interactive entry point: free text is normalized to the
// canonical code shape, resolved by exact match, then run through the same
// transition as Claim.
func (s *Service) ClaimByCode(ctx context.Context, rawCode string) (*licensedomain.ClaimResult, error) {
	ident, err := s.identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	code := licensedomain.NormalizeCode(strings.TrimSpace(rawCode))
	if code == "" {
		return nil, licensedomain.ErrInvalidCode
	}

	match, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if match == nil {
		s.log.Info("activation code matched nothing",
			zap.String("code", logger.MaskCode(code)),
		)
		return nil, licensedomain.ErrNotFound
	}

	license, err := s.transition(ctx, ident, match.ID, licensedomain.ActionClaim)
	if err != nil {
		return nil, err
	}
	return s.claimResult(ctx, license), nil
}

// ClaimByToken resolves an emailed claim link. The token is single-use
// because every transition out of pending clears it.
func (s *Service) ClaimByToken(ctx context.Context, token string) (*licensedomain.ClaimResult, error) {
	ident, err := s.identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, licensedomain.ErrInvalidToken
	}

	match, err := s.repo.FindByClaimToken(ctx, s.db, token)
	if err != nil {
		return nil, err
	}
	if match == nil {
		s.log.Info("claim link matched nothing",
			zap.String("token", logger.MaskToken(token)),
		)
		return nil, licensedomain.ErrNotFound
	}

	license, err := s.transition(ctx, ident, match.ID, licensedomain.ActionClaim)
	if err != nil {
		return nil, err
	}
	return s.claimResult(ctx, license), nil
}

// Reconcile fans a single action out over a set of licenses. The batch is
// validated wholesale before any storage access; after that every item is
// independent and one failure never blocks another.
func (s *Service) Reconcile(ctx context.Context, req licensedomain.ReconcileRequest) (*licensedomain.ReconcileResult, error) {
	ident, err := s.identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := licensedomain.ParseAction(string(req.Action)); err != nil {
		return nil, err
	}
	if len(req.LicenseIDs) == 0 {
		return nil, licensedomain.ErrEmptyBatch
	}
	// Dedupe on the parsed ID so alternate spellings of the same license
	// ("1" vs "01") cannot race each other inside one batch. Unparsable
	// entries stay in the batch and fail per item.
	seenIDs := make(map[snowflake.ID]struct{}, len(req.LicenseIDs))
	seenRaw := make(map[string]struct{}, len(req.LicenseIDs))
	for _, raw := range req.LicenseIDs {
		id, err := licensedomain.ParseID(raw)
		if err != nil {
			key := strings.TrimSpace(raw)
			if _, dup := seenRaw[key]; dup {
				return nil, licensedomain.ErrDuplicateBatch
			}
			seenRaw[key] = struct{}{}
			continue
		}
		if _, dup := seenIDs[id]; dup {
			return nil, licensedomain.ErrDuplicateBatch
		}
		seenIDs[id] = struct{}{}
	}

	result := &licensedomain.ReconcileResult{
		Results: make([]licensedomain.ReconcileItem, 0, len(req.LicenseIDs)),
	}
	for _, raw := range req.LicenseIDs {
		item := licensedomain.ReconcileItem{LicenseID: raw}
		if err := s.reconcileOne(ctx, ident, raw, req.Action); err != nil {
			item.Error = itemReason(err)
			result.ErrorCount++
		} else {
			item.Success = true
			result.SuccessCount++
		}
		result.Results = append(result.Results, item)
	}
	return result, nil
}

func (s *Service) ListPending(ctx context.Context) ([]licensedomain.License, error) {
	ident, err := s.identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPendingByEmail(ctx, s.db, ident.Email)
}

// itemReason maps a transition error onto the per-item reason string.
// Only domain errors carry their own text; anything else is a storage
// failure whose internals must not reach the caller.
func itemReason(err error) string {
	if licensedomain.IsValidation(err) || licensedomain.IsConflict(err) ||
		errors.Is(err, licensedomain.ErrNotFound) || errors.Is(err, licensedomain.ErrForbidden) {
		return err.Error()
	}
	return "store_failure"
}

func (s *Service) reconcileOne(ctx context.Context, ident identity.Identity, rawID string, action licensedomain.Action) error {
	id, err := licensedomain.ParseID(rawID)
	if err != nil {
		return err
	}
	_, err = s.transition(ctx, ident, id, action)
	return err
}

// transition applies one claim or reject. The pre-read only classifies the
// expected failure; every precondition is re-asserted by the conditional
// write itself, so two concurrent requests resolve to exactly one winner.
func (s *Service) transition(ctx context.Context, ident identity.Identity, id snowflake.ID, action licensedomain.Action) (*licensedomain.License, error) {
	license, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, s.storeFailure("load license", id, err)
	}
	if license == nil {
		return nil, licensedomain.ErrNotFound
	}
	if !strings.EqualFold(license.CustomerEmail, ident.Email) {
		return nil, licensedomain.ErrForbidden
	}
	if license.Terminal() {
		return nil, s.terminalError(license, ident)
	}

	now := s.clock.Now().UTC()
	won := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		switch action {
		case licensedomain.ActionClaim:
			won, txErr = s.repo.ClaimPending(ctx, tx, id, ident.UserID, ident.Email, now)
		case licensedomain.ActionReject:
			won, txErr = s.repo.RejectPending(ctx, tx, id, ident.Email, now)
		default:
			return licensedomain.ErrInvalidAction
		}
		if txErr != nil {
			return txErr
		}
		if won && action == licensedomain.ActionClaim {
			return s.outbox.PublishTx(ctx, tx, events.Event{
				Type: events.EventLicenseClaimed,
				Payload: events.LicenseClaimedPayload{
					LicenseID: id.String(),
					OwnerID:   ident.UserID.String(),
					ProductID: license.ProductID.String(),
					ClaimedAt: now.Format(time.RFC3339),
				}.ToMap(),
				DedupeKey: "license_claimed:" + id.String(),
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, licensedomain.ErrInvalidAction) {
			return nil, err
		}
		return nil, s.storeFailure("apply transition", id, err)
	}

	if !won {
		// Zero rows affected: somebody else got there between our read and
		// our write. Re-read purely to report the friendlier reason.
		current, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil || current == nil {
			return nil, licensedomain.ErrAlreadyProcessed
		}
		if terminal := s.terminalError(current, ident); terminal != nil {
			return nil, terminal
		}
		return nil, licensedomain.ErrAlreadyProcessed
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil || updated == nil {
		return nil, s.storeFailure("reload license", id, err)
	}

	s.log.Info("license transition applied",
		zap.String("license_id", id.String()),
		zap.String("action", string(action)),
		zap.String("owner_id", ident.UserID.String()),
		zap.String("customer_email", logger.MaskEmail(license.CustomerEmail)),
	)
	return updated, nil
}

func (s *Service) terminalError(license *licensedomain.License, ident identity.Identity) error {
	switch license.Status {
	case licensedomain.StatusClaimed:
		if license.OwnerID != nil && *license.OwnerID == ident.UserID {
			return licensedomain.ErrAlreadyClaimedBySelf
		}
		return licensedomain.ErrAlreadyClaimedByOther
	case licensedomain.StatusClaimedByOther:
		return licensedomain.ErrAlreadyClaimedByOther
	case licensedomain.StatusRejected:
		return licensedomain.ErrAlreadyRejected
	default:
		return nil
	}
}

// claimResult decorates a claimed license with its product name. A catalog
// miss only degrades the label, never the claim.
func (s *Service) claimResult(ctx context.Context, license *licensedomain.License) *licensedomain.ClaimResult {
	result := &licensedomain.ClaimResult{License: license}
	name, err := s.productSvc.GetName(ctx, license.ProductID)
	if err != nil {
		s.log.Warn("product name lookup failed",
			zap.String("product_id", license.ProductID.String()),
			zap.Error(err),
		)
		return result
	}
	result.ProductName = name
	return result
}

func (s *Service) identityFromContext(ctx context.Context) (identity.Identity, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, licensedomain.ErrInvalidActor
	}
	return ident, nil
}

func (s *Service) storeFailure(op string, id snowflake.ID, err error) error {
	s.log.Error("license store failure",
		zap.String("op", op),
		zap.String("license_id", id.String()),
		zap.Error(err),
	)
	return err
}
