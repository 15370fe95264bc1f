package postgres

import (
	"context"
	"time"

	errors "github.com/frahmantamala/collection-management/internal"
	reportDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/report"
	"github.com/frahmantamala/collection-management/internal/report"
	"gorm.io/gorm"
)

type AllowlistRepository struct {
	db *gorm.DB
}

func NewAllowlistRepository(db *gorm.DB) report.AllowlistStore {
	return &AllowlistRepository{db: db}
}

func (r *AllowlistRepository) IsAllowed(ctx context.Context, employeeCode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&reportDatamodel.ExportAllowlistEntry{}).
		Where("employee_code = ?", employeeCode).
		Count(&count).Error
	return count > 0, err
}

func (r *AllowlistRepository) Add(ctx context.Context, employeeCode, addedBy string) (*report.AllowlistEntry, error) {
	var existing int64
	err := r.db.WithContext(ctx).
		Model(&reportDatamodel.ExportAllowlistEntry{}).
		Where("employee_code = ?", employeeCode).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, errors.NewConflictError("employee is already on the allowlist", errors.ErrCodeDuplicateEntry)
	}

	row := reportDatamodel.ExportAllowlistEntry{
		EmployeeCode: employeeCode,
		AddedBy:      addedBy,
		CreatedAt:    time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return toEntry(row), nil
}

func (r *AllowlistRepository) Remove(ctx context.Context, employeeCode string) error {
	res := r.db.WithContext(ctx).
		Where("employee_code = ?", employeeCode).
		Delete(&reportDatamodel.ExportAllowlistEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.NewNotFoundError("allowlist entry not found", errors.ErrCodeUserNotFound)
	}
	return nil
}

func (r *AllowlistRepository) List(ctx context.Context) ([]*report.AllowlistEntry, error) {
	var rows []reportDatamodel.ExportAllowlistEntry
	err := r.db.WithContext(ctx).Order("employee_code ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*report.AllowlistEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toEntry(row))
	}
	return entries, nil
}

func toEntry(row reportDatamodel.ExportAllowlistEntry) *report.AllowlistEntry {
	return &report.AllowlistEntry{
		ID:           row.ID,
		EmployeeCode: row.EmployeeCode,
		AddedBy:      row.AddedBy,
		CreatedAt:    row.CreatedAt,
	}
}
