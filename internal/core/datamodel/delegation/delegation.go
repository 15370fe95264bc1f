package delegation

import "time"

// Delegation is a time-bounded grant of case access from delegated_by to
// delegated_to. Rows are never deleted; revoked and expired rows remain as
// an audit trail. At most one row per case_id may be active at a time
// (enforced by a partial unique index).
type Delegation struct {
	ID             int64     `gorm:"primaryKey"`
	CaseID         string    `gorm:"column:case_id;index;not null"`
	DelegatedBy    string    `gorm:"column:delegated_by;not null"`
	DelegatedTo    string    `gorm:"column:delegated_to;index;not null"`
	DelegationDate time.Time `gorm:"column:delegation_date"`
	ExpiryDate     time.Time `gorm:"column:expiry_date;not null"`
	Status         string    `gorm:"column:status;default:active"`
	Notes          string    `gorm:"column:notes"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (Delegation) TableName() string {
	return "delegations"
}
