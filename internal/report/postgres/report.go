package postgres

import (
	"context"

	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/cases"
	casesDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/cases"
	"github.com/frahmantamala/collection-management/internal/report"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) report.Repository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) scoped(ctx context.Context, access cases.AccessScope) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&casesDatamodel.Case{}).
		Where("debt_group IN ?", cases.VisibleDebtGroups)

	switch access.Scope {
	case auth.ScopeAll:
	case auth.ScopeDepartment:
		q = q.Where("department = ?", access.Department)
	default:
		q = q.Where("assigned_employee_code = ?", access.EmployeeCode)
	}
	return q
}

func (r *ReportRepository) ListForExport(ctx context.Context, access cases.AccessScope, filter cases.ListFilter) ([]*cases.Case, error) {
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

	var rows []casesDatamodel.Case
	if err := q.Order("case_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	list := make([]*cases.Case, 0, len(rows))
	for _, row := range rows {
		list = append(list, &cases.Case{
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
		})
	}
	return list, nil
}

func (r *ReportRepository) SummarizeByStatus(ctx context.Context, access cases.AccessScope) ([]report.StatusSummary, error) {
	var rows []report.StatusSummary
	err := r.scoped(ctx, access).
		Select("status, COUNT(*) AS count, COALESCE(SUM(outstanding_amount), 0) AS outstanding_total").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *ReportRepository) SummarizeByDebtGroup(ctx context.Context, access cases.AccessScope) ([]report.DebtGroupSummary, error) {
	var rows []report.DebtGroupSummary
	err := r.scoped(ctx, access).
		Select("debt_group, COUNT(*) AS count, COALESCE(SUM(outstanding_amount), 0) AS outstanding_total").
		Group("debt_group").
		Order("debt_group ASC").
		Scan(&rows).Error
	return rows, err
}
