package postgres

import (
	"context"
	"time"

	errors "github.com/frahmantamala/collection-management/internal"
	permissionDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/permission"
	"github.com/frahmantamala/collection-management/internal/permission"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.Repository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) ListPermissions(ctx context.Context) ([]*permission.Permission, error) {
	var rows []permissionDatamodel.Permission
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	perms := make([]*permission.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, toDomain(row))
	}
	return perms, nil
}

func (r *PermissionRepository) GetPermissionByName(ctx context.Context, name string) (*permission.Permission, error) {
	var row permissionDatamodel.Permission
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPermissionNotFound
		}
		return nil, err
	}
	return toDomain(row), nil
}

func (r *PermissionRepository) CreatePermission(ctx context.Context, p *permission.Permission) error {
	row := permissionDatamodel.Permission{
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt
	return nil
}

func (r *PermissionRepository) DeletePermission(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&permissionDatamodel.Permission{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.ErrPermissionNotFound
		}
		// orphaned grants go with the permission
		return tx.Where("permission_id = ?", id).Delete(&permissionDatamodel.UserPermission{}).Error
	})
}

func (r *PermissionRepository) GetUserIDByEmployeeCode(ctx context.Context, employeeCode string) (int64, error) {
	var userID int64
	err := r.db.WithContext(ctx).
		Raw("SELECT id FROM users WHERE employee_code = ?", employeeCode).
		Scan(&userID).Error
	if err != nil {
		return 0, err
	}
	if userID == 0 {
		return 0, errors.ErrUserNotFound
	}
	return userID, nil
}

func (r *PermissionRepository) ListGrants(ctx context.Context, employeeCode string) ([]*permission.Grant, error) {
	var grants []*permission.Grant
	err := r.db.WithContext(ctx).
		Raw(`SELECT up.id, up.user_id, u.employee_code, up.permission_id, p.name AS permission_name,
			up.granted_by, up.created_at
			FROM user_permissions up
			JOIN users u ON u.id = up.user_id
			JOIN permissions p ON p.id = up.permission_id
			WHERE u.employee_code = ?
			ORDER BY p.name ASC`, employeeCode).
		Scan(&grants).Error
	return grants, err
}

func (r *PermissionRepository) HasGrant(ctx context.Context, userID, permissionID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&permissionDatamodel.UserPermission{}).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Count(&count).Error
	return count > 0, err
}

func (r *PermissionRepository) CreateGrant(ctx context.Context, userID, permissionID int64, grantedBy *int64) error {
	row := permissionDatamodel.UserPermission{
		UserID:       userID,
		PermissionID: permissionID,
		GrantedBy:    grantedBy,
		CreatedAt:    time.Now(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *PermissionRepository) DeleteGrant(ctx context.Context, userID, permissionID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Delete(&permissionDatamodel.UserPermission{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrPermissionNotFound
	}
	return nil
}

func toDomain(row permissionDatamodel.Permission) *permission.Permission {
	return &permission.Permission{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}
