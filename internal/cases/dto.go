package cases

import (
	"strings"

	errors "github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/core/common/validation"
)

// ListFilter narrows a scoped case listing. Scope itself never comes from the
// client; it is resolved from the identity server-side.
type ListFilter struct {
	Status     string
	DebtGroup  int
	Department string
	Search     string
	Page       int
	PerPage    int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
}

func (f *ListFilter) Validate() error {
	if f.Status != "" && !IsValidStatus(f.Status) {
		return errors.NewValidationError("unknown case status", errors.ErrCodeInvalidStatus)
	}
	if f.DebtGroup != 0 {
		valid := false
		for _, g := range VisibleDebtGroups {
			if f.DebtGroup == g {
				valid = true
				break
			}
		}
		if !valid {
			return errors.NewValidationError("debt group must be 3, 4 or 5", errors.ErrCodeInvalidDebtGroup)
		}
	}
	return nil
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

func (d *UpdateStatusDTO) Validate() error {
	d.Status = strings.TrimSpace(d.Status)
	if d.Status == "" {
		return errors.NewValidationFieldError("status", "status is required", errors.ErrCodeValidationFailed)
	}
	if !IsValidStatus(d.Status) {
		return errors.NewValidationError("unknown case status", errors.ErrCodeInvalidStatus)
	}
	return nil
}

type TransferDTO struct {
	ToEmployeeCode string `json:"to_employee_code"`
	Note           string `json:"note,omitempty"`
}

func (d *TransferDTO) Validate() error {
	d.ToEmployeeCode = strings.TrimSpace(d.ToEmployeeCode)
	if d.ToEmployeeCode == "" {
		return errors.NewValidationFieldError("to_employee_code", "target employee is required", errors.ErrCodeValidationFailed)
	}
	return nil
}

type CreateActivityDTO struct {
	ActivityType string `json:"activity_type"`
	Content      string `json:"content"`
}

func (d *CreateActivityDTO) Validate() error {
	if d.ActivityType == "" {
		d.ActivityType = ActivityTypeNote
	}
	if appErr := validation.ValidateActivityContent(d.Content); appErr != nil {
		return appErr
	}
	return nil
}
