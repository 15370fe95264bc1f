package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventDelegationCreated = "delegation.created"
	EventDelegationRevoked = "delegation.revoked"
	EventDelegationExpired = "delegation.expired"
)

func NewDelegationCreatedEvent(caseIDs []string, delegatedBy, delegatedTo string, expiry time.Time) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventDelegationCreated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"case_ids":     caseIDs,
			"delegated_by": delegatedBy,
			"delegated_to": delegatedTo,
			"expiry_date":  expiry,
		},
	}
}

func NewDelegationRevokedEvent(delegationID int64, caseID, revokedBy string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventDelegationRevoked,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"delegation_id": delegationID,
			"case_id":       caseID,
			"revoked_by":    revokedBy,
		},
	}
}

// NewDelegationExpiredEvent summarises one sweep for one delegatee: how many
// of their delegated cases just lost access.
func NewDelegationExpiredEvent(delegatedTo string, caseIDs []string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventDelegationExpired,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"delegated_to":  delegatedTo,
			"case_ids":      caseIDs,
			"expired_count": len(caseIDs),
		},
	}
}
