package delegation

import "time"

// Delegation statuses. Transitions are one-directional: active to revoked
// (manual) or active to expired (sweeper). Revoked and expired are terminal.
const (
	StatusActive  = "active"
	StatusRevoked = "revoked"
	StatusExpired = "expired"
)

type Delegation struct {
	ID             int64     `json:"id"`
	CaseID         string    `json:"case_id"`
	DelegatedBy    string    `json:"delegated_by"`
	DelegatedTo    string    `json:"delegated_to"`
	DelegationDate time.Time `json:"delegation_date"`
	ExpiryDate     time.Time `json:"expiry_date"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsActive means the delegation currently grants access: status is active
// and the expiry has not passed, regardless of whether the sweeper has run.
func (d *Delegation) IsActive(now time.Time) bool {
	return d.Status == StatusActive && now.Before(d.ExpiryDate)
}

// SweepResult summarises one expiry sweep.
type SweepResult struct {
	ExpiredCount  int      `json:"expired_count"`
	NotifiedUsers []string `json:"notified_users"`
}

// ExpiredRow is one row transitioned by a sweep, used to group notifications
// per delegatee.
type ExpiredRow struct {
	ID          int64
	CaseID      string
	DelegatedTo string
}
