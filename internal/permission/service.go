package permission

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/collection-management/internal"
)

type Repository interface {
	ListPermissions(ctx context.Context) ([]*Permission, error)
	GetPermissionByName(ctx context.Context, name string) (*Permission, error)
	CreatePermission(ctx context.Context, p *Permission) error
	DeletePermission(ctx context.Context, id int64) error

	GetUserIDByEmployeeCode(ctx context.Context, employeeCode string) (int64, error)
	ListGrants(ctx context.Context, employeeCode string) ([]*Grant, error)
	HasGrant(ctx context.Context, userID, permissionID int64) (bool, error)
	CreateGrant(ctx context.Context, userID, permissionID int64, grantedBy *int64) error
	DeleteGrant(ctx context.Context, userID, permissionID int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListPermissions(ctx context.Context) ([]*Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *Service) CreatePermission(ctx context.Context, dto CreatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetPermissionByName(ctx, dto.Name)
	if err != nil && err != errors.ErrPermissionNotFound {
		return nil, errors.NewInternalError("failed to look up permission", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("permission already exists", errors.ErrCodeDuplicateEntry)
	}

	p := &Permission{Name: dto.Name, Description: dto.Description}
	if err := s.repo.CreatePermission(ctx, p); err != nil {
		return nil, errors.NewInternalError("failed to create permission", err)
	}

	s.logger.InfoContext(ctx, "permission created", "permission", p.Name)
	return p, nil
}

func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	if err := s.repo.DeletePermission(ctx, id); err != nil {
		if err == errors.ErrPermissionNotFound {
			return err
		}
		return errors.NewInternalError("failed to delete permission", err)
	}
	return nil
}

func (s *Service) ListGrants(ctx context.Context, employeeCode string) ([]*Grant, error) {
	return s.repo.ListGrants(ctx, employeeCode)
}

// Grant attaches a named permission to a user. Granting the same permission
// twice is a conflict, not a no-op, so admin tooling notices typos.
func (s *Service) Grant(ctx context.Context, employeeCode string, dto GrantPermissionDTO, grantedBy *int64) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	userID, err := s.repo.GetUserIDByEmployeeCode(ctx, employeeCode)
	if err != nil {
		return err
	}

	perm, err := s.repo.GetPermissionByName(ctx, dto.PermissionName)
	if err != nil {
		return err
	}

	held, err := s.repo.HasGrant(ctx, userID, perm.ID)
	if err != nil {
		return errors.NewInternalError("failed to check existing grant", err)
	}
	if held {
		return errors.NewConflictError("permission already granted", errors.ErrCodeDuplicateGrant)
	}

	if err := s.repo.CreateGrant(ctx, userID, perm.ID, grantedBy); err != nil {
		return errors.NewInternalError("failed to grant permission", err)
	}

	s.logger.InfoContext(ctx, "permission granted",
		"employee_code", employeeCode,
		"permission", dto.PermissionName)
	return nil
}

func (s *Service) Revoke(ctx context.Context, employeeCode string, permissionID int64) error {
	userID, err := s.repo.GetUserIDByEmployeeCode(ctx, employeeCode)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteGrant(ctx, userID, permissionID); err != nil {
		if err == errors.ErrPermissionNotFound {
			return err
		}
		return errors.NewInternalError("failed to revoke permission", err)
	}

	s.logger.InfoContext(ctx, "permission revoked",
		"employee_code", employeeCode,
		"permission_id", permissionID)
	return nil
}
