package domain

import "errors"

var (
	ErrInvalidID      = errors.New("invalid_license_id")
	ErrInvalidCode    = errors.New("invalid_code")
	ErrInvalidToken   = errors.New("invalid_claim_token")
	ErrInvalidAction  = errors.New("invalid_action")
	ErrInvalidActor   = errors.New("invalid_actor")
	ErrEmptyBatch     = errors.New("empty_batch")
	ErrDuplicateBatch = errors.New("duplicate_license_id")

	ErrNotFound  = errors.New("license_not_found")
	ErrForbidden = errors.New("email_mismatch")

	// Conflict family. Distinct sentinels so callers can render the exact
	// reason a license could not transition.
	ErrAlreadyClaimedBySelf  = errors.New("already_claimed_by_you")
	ErrAlreadyClaimedByOther = errors.New("already_claimed")
	ErrAlreadyRejected       = errors.New("already_rejected")
	ErrAlreadyProcessed      = errors.New("already_processed")
)

// IsConflict reports whether err is one of the terminal-state outcomes.
func IsConflict(err error) bool {
	switch {
	case errors.Is(err, ErrAlreadyClaimedBySelf),
		errors.Is(err, ErrAlreadyClaimedByOther),
		errors.Is(err, ErrAlreadyRejected),
		errors.Is(err, ErrAlreadyProcessed):
		return true
	default:
		return false
	}
}

// IsValidation reports whether err is an input-shape failure.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidAction),
		errors.Is(err, ErrEmptyBatch),
		errors.Is(err, ErrDuplicateBatch):
		return true
	default:
		return false
	}
}
