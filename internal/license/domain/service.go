package domain

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Action selects which transition a request applies.
type Action string

const (
	ActionClaim  Action = "claim"
	ActionReject Action = "reject"
)

// ParseAction validates a wire-level action string.
func ParseAction(raw string) (Action, error) {
	switch Action(strings.TrimSpace(raw)) {
	case ActionClaim:
		return ActionClaim, nil
	case ActionReject:
		return ActionReject, nil
	default:
		return "", ErrInvalidAction
	}
}

// ClaimResult is the outcome of a successful claim.
type ClaimResult struct {
	License     *License `json:"license"`
	ProductName string   `json:"product_name"`
}

// ReconcileRequest fans one action out over a set of licenses.
type ReconcileRequest struct {
	LicenseIDs []string `json:"licenseIds"`
	Action     Action   `json:"action"`
}

// ReconcileItem is the independent outcome for one license in a batch.
type ReconcileItem struct {
	LicenseID string `json:"licenseId"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// ReconcileResult aggregates per-item outcomes. Partial failure is the
// expected shape, not an error.
type ReconcileResult struct {
	Results      []ReconcileItem `json:"results"`
	SuccessCount int             `json:"successCount"`
	ErrorCount   int             `json:"errorCount"`
}

// Service is the claim engine: single-license transitions, the code and
// claim-link entry points, and the batch reconciler.
type Service interface {
	Claim(ctx context.Context, licenseID string) (*ClaimResult, error)
	Reject(ctx context.Context, licenseID string) (*License, error)
	ClaimByCode(ctx context.Context, rawCode string) (*ClaimResult, error)
	ClaimByToken(ctx context.Context, token string) (*ClaimResult, error)
	Reconcile(ctx context.Context, req ReconcileRequest) (*ReconcileResult, error)
	ListPending(ctx context.Context) ([]License, error)
}

// ParseID parses a wire-level license identifier.
func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
