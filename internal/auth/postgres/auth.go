package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/frahmantamala/collection-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(employeeCode string) (string, error) {
	var passwordHash string
	query := `SELECT password_hash FROM users WHERE employee_code = ? AND is_active = true`

	row := r.db.Raw(query, employeeCode).Row()
	if err := row.Scan(&passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("user not found")
		}
		return "", err
	}
	return passwordHash, nil
}

func (r *Repository) GetIdentity(ctx context.Context, employeeCode string) (*auth.Identity, error) {
	var identity auth.Identity
	var roleStr string

	query := `SELECT id, employee_code, full_name, role, department, branch_code, is_active
	          FROM users WHERE employee_code = ?`

	row := r.db.WithContext(ctx).Raw(query, employeeCode).Row()
	if err := row.Scan(&identity.ID, &identity.EmployeeCode, &identity.FullName,
		&roleStr, &identity.Department, &identity.BranchCode, &identity.IsActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	role, ok := auth.ParseRole(roleStr)
	if !ok {
		return nil, fmt.Errorf("unknown role %q for user %s", roleStr, employeeCode)
	}
	identity.Role = role

	permissions, err := r.GetGrantedPermissions(ctx, employeeCode)
	if err != nil {
		return nil, err
	}
	identity.Permissions = permissions

	return &identity, nil
}

func (r *Repository) GetGrantedPermissions(ctx context.Context, employeeCode string) ([]string, error) {
	query := `SELECT p.name
	          FROM permissions p
	          JOIN user_permissions up ON p.id = up.permission_id
	          JOIN users u ON u.id = up.user_id
	          WHERE u.employee_code = ?`

	rows, err := r.db.WithContext(ctx).Raw(query, employeeCode).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var permName string
		if err := rows.Scan(&permName); err != nil {
			return nil, err
		}
		permissions = append(permissions, permName)
	}

	return permissions, rows.Err()
}
