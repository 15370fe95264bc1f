package postgres

import (
	"context"

	errors "github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/cases"
	userDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// DirectorySource resolves case-transfer targets from the users table.
type DirectorySource struct {
	db *gorm.DB
}

func NewDirectorySource(db *gorm.DB) cases.Directory {
	return &DirectorySource{db: db}
}

func (s *DirectorySource) GetByEmployeeCode(ctx context.Context, employeeCode string) (*cases.DirectoryEntry, error) {
	var row userDatamodel.User
	err := s.db.WithContext(ctx).Where("employee_code = ?", employeeCode).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return &cases.DirectoryEntry{
		EmployeeCode: row.EmployeeCode,
		Department:   row.Department,
		BranchCode:   row.BranchCode,
		IsActive:     row.IsActive,
	}, nil
}
