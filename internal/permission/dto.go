package permission

import (
	"strings"

	errors "github.com/frahmantamala/collection-management/internal"
)

type CreatePermissionDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *CreatePermissionDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return errors.NewValidationFieldError("name", "name is required", errors.ErrCodeValidationFailed)
	}
	if len(d.Name) > 100 {
		return errors.NewValidationFieldError("name", "name must be at most 100 characters", errors.ErrCodeValidationFailed)
	}
	return nil
}

type GrantPermissionDTO struct {
	PermissionName string `json:"permission_name"`
}

func (d *GrantPermissionDTO) Validate() error {
	d.PermissionName = strings.TrimSpace(d.PermissionName)
	if d.PermissionName == "" {
		return errors.NewValidationFieldError("permission_name", "permission_name is required", errors.ErrCodeValidationFailed)
	}
	return nil
}
