package delegation

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/core/common/validation"
)

type CreateDelegationsDTO struct {
	CaseIDs []string `json:"case_ids"`
	// DelegatedBy is optional; when empty the authenticated caller is the
	// delegator. Managers and administrators may name another delegator.
	DelegatedBy string    `json:"delegated_by,omitempty"`
	DelegatedTo string    `json:"delegated_to"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Notes       string    `json:"notes,omitempty"`
}

func (d *CreateDelegationsDTO) Validate() error {
	d.DelegatedBy = strings.TrimSpace(d.DelegatedBy)
	d.DelegatedTo = strings.TrimSpace(d.DelegatedTo)

	if d.DelegatedTo == "" {
		return errors.NewValidationFieldError("delegated_to", "delegatee is required", errors.ErrCodeValidationFailed)
	}
	if appErr := validation.ValidateCaseBatch(d.CaseIDs); appErr != nil {
		return appErr
	}
	if appErr := validation.ValidateDelegationExpiry(d.ExpiryDate); appErr != nil {
		return appErr
	}
	return nil
}

type ListFilter struct {
	DelegatedBy string
	DelegatedTo string
	Status      string
	CaseID      string
	// Involving matches rows where the code is delegator or delegatee. Set
	// server-side for non-administrators.
	Involving string
}

func (f *ListFilter) Validate() error {
	if f.Status != "" && f.Status != StatusActive && f.Status != StatusRevoked && f.Status != StatusExpired {
		return errors.NewValidationError("unknown delegation status", errors.ErrCodeInvalidStatus)
	}
	return nil
}
