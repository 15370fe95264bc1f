package postgres

import (
	"context"

	errors "github.com/frahmantamala/collection-management/internal"
	casesDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/cases"
	userDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/user"
	"github.com/frahmantamala/collection-management/internal/delegation"
	"gorm.io/gorm"
)

// CaseOwnershipSource reads the ownership slice of cases the delegation rules
// need, without pulling in the full case listing layer.
type CaseOwnershipSource struct {
	db *gorm.DB
}

func NewCaseOwnershipSource(db *gorm.DB) delegation.CaseSource {
	return &CaseOwnershipSource{db: db}
}

func (s *CaseOwnershipSource) GetOwnership(ctx context.Context, caseIDs []string) (map[string]delegation.CaseOwnership, error) {
	var rows []casesDatamodel.Case
	err := s.db.WithContext(ctx).
		Select("case_id", "assigned_employee_code", "department", "branch_code").
		Where("case_id IN ?", caseIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ownership := make(map[string]delegation.CaseOwnership, len(rows))
	for _, row := range rows {
		ownership[row.CaseID] = delegation.CaseOwnership{
			CaseID:               row.CaseID,
			AssignedEmployeeCode: row.AssignedEmployeeCode,
			Department:           row.Department,
			BranchCode:           row.BranchCode,
		}
	}
	return ownership, nil
}

// PartySource resolves delegators and delegatees from the users table.
type PartySource struct {
	db *gorm.DB
}

func NewPartySource(db *gorm.DB) delegation.UserSource {
	return &PartySource{db: db}
}

func (s *PartySource) GetParty(ctx context.Context, employeeCode string) (*delegation.Party, error) {
	var row userDatamodel.User
	err := s.db.WithContext(ctx).Where("employee_code = ?", employeeCode).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return &delegation.Party{
		EmployeeCode: row.EmployeeCode,
		Department:   row.Department,
		BranchCode:   row.BranchCode,
		IsActive:     row.IsActive,
	}, nil
}
