package postgres

import (
	"context"

	errors "github.com/frahmantamala/collection-management/internal"
	userDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/user"
	"github.com/frahmantamala/collection-management/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByEmployeeCode(ctx context.Context, employeeCode string) (*employee.Employee, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("employee_code = ?", employeeCode).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return toDomain(row), nil
}

func (r *EmployeeRepository) ListByDepartment(ctx context.Context, department string) ([]*employee.Employee, error) {
	var rows []userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("department = ? AND is_active = ?", department, true).
		Order("full_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

func (r *EmployeeRepository) ListAll(ctx context.Context) ([]*employee.Employee, error) {
	var rows []userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("full_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

func toDomain(row userDatamodel.User) *employee.Employee {
	return &employee.Employee{
		ID:           row.ID,
		EmployeeCode: row.EmployeeCode,
		FullName:     row.FullName,
		Email:        row.Email,
		Role:         row.Role,
		Department:   row.Department,
		BranchCode:   row.BranchCode,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
	}
}

func toDomainSlice(rows []userDatamodel.User) []*employee.Employee {
	employees := make([]*employee.Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, toDomain(row))
	}
	return employees
}
