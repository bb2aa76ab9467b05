// Package events defines the post-claim event contract and its outbox.
package events

// Event types drained by the achievement worker.
const (
	EventLicenseClaimed = "license.claimed"
)

// LicenseClaimedPayload captures the minimal data the achievement check
// needs. The claim response never waits on this.
type LicenseClaimedPayload struct {
	LicenseID string `json:"license_id"`
	OwnerID   string `json:"owner_id"`
	ProductID string `json:"product_id"`
	ClaimedAt string `json:"claimed_at"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p LicenseClaimedPayload) ToMap() map[string]any {
	return map[string]any{
		"license_id": p.LicenseID,
		"owner_id":   p.OwnerID,
		"product_id": p.ProductID,
		"claimed_at": p.ClaimedAt,
	}
}
