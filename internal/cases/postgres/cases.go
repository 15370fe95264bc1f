package postgres

import (
	"context"
	"time"

	errors "github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/cases"
	casesDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/cases"
	"gorm.io/gorm"
)

type CaseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) cases.Repository {
	return &CaseRepository{db: db}
}

// scoped applies the debt-group base predicate and the resolved access scope.
// Every case query goes through here.
func (r *CaseRepository) scoped(ctx context.Context, access cases.AccessScope) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&casesDatamodel.Case{}).
		Where("debt_group IN ?", cases.VisibleDebtGroups)

	switch access.Scope {
	case auth.ScopeAll:
		// unrestricted beyond the debt-group invariant
	case auth.ScopeDepartment:
		q = q.Where("department = ?", access.Department)
	default:
		q = q.Where("assigned_employee_code = ?", access.EmployeeCode)
	}
	return q
}

func (r *CaseRepository) List(ctx context.Context, access cases.AccessScope, filter cases.ListFilter) ([]*cases.Case, int64, error) {
	q := r.scoped(ctx, access)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.DebtGroup != 0 {
		q = q.Where("debt_group = ?", filter.DebtGroup)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("customer_name LIKE ? OR case_id LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []casesDatamodel.Case
	err := q.Order("created_at DESC").
		Limit(filter.PerPage).
		Offset((filter.Page - 1) * filter.PerPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	list := make([]*cases.Case, 0, len(rows))
	for _, row := range rows {
		list = append(list, toDomain(row))
	}
	return list, total, nil
}

func (r *CaseRepository) GetByCaseID(ctx context.Context, caseID string) (*cases.Case, error) {
	var row casesDatamodel.Case
	err := r.db.WithContext(ctx).
		Where("case_id = ? AND debt_group IN ?", caseID, cases.VisibleDebtGroups).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCaseNotFound
		}
		return nil, err
	}
	return toDomain(row), nil
}

func (r *CaseRepository) UpdateStatus(ctx context.Context, caseID, status string) error {
	res := r.db.WithContext(ctx).
		Model(&casesDatamodel.Case{}).
		Where("case_id = ?", caseID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrCaseNotFound
	}
	return nil
}

func (r *CaseRepository) Transfer(ctx context.Context, caseID, toEmployeeCode, toDepartment, toBranchCode string) error {
	res := r.db.WithContext(ctx).
		Model(&casesDatamodel.Case{}).
		Where("case_id = ?", caseID).
		Updates(map[string]any{
			"assigned_employee_code": toEmployeeCode,
			"department":             toDepartment,
			"branch_code":            toBranchCode,
			"updated_at":             time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrCaseNotFound
	}
	return nil
}

func (r *CaseRepository) CreateActivity(ctx context.Context, activity *cases.Activity) error {
	row := casesDatamodel.CaseActivity{
		CaseID:       activity.CaseID,
		EmployeeCode: activity.EmployeeCode,
		ActivityType: activity.ActivityType,
		Content:      activity.Content,
		CreatedAt:    time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	activity.ID = row.ID
	activity.CreatedAt = row.CreatedAt
	return nil
}

func (r *CaseRepository) ListActivities(ctx context.Context, caseID string) ([]*cases.Activity, error) {
	var rows []casesDatamodel.CaseActivity
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	activities := make([]*cases.Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, &cases.Activity{
			ID:           row.ID,
			CaseID:       row.CaseID,
			EmployeeCode: row.EmployeeCode,
			ActivityType: row.ActivityType,
			Content:      row.Content,
			CreatedAt:    row.CreatedAt,
		})
	}
	return activities, nil
}

func toDomain(row casesDatamodel.Case) *cases.Case {
	return &cases.Case{
		ID:                   row.ID,
		CaseID:               row.CaseID,
		CustomerName:         row.CustomerName,
		CustomerIDNumber:     row.CustomerIDNumber,
		OutstandingAmount:    row.OutstandingAmount,
		CaseType:             row.CaseType,
		Status:               row.Status,
		DebtGroup:            row.DebtGroup,
		AssignedEmployeeCode: row.AssignedEmployeeCode,
		Department:           row.Department,
		BranchCode:           row.BranchCode,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
}
