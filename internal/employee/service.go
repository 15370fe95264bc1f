package employee

import (
	"context"

	errors "github.com/frahmantamala/collection-management/internal"
)

type Repository interface {
	GetByEmployeeCode(ctx context.Context, employeeCode string) (*Employee, error)
	ListByDepartment(ctx context.Context, department string) ([]*Employee, error)
	ListAll(ctx context.Context) ([]*Employee, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByEmployeeCode(ctx context.Context, employeeCode string) (*Employee, error) {
	e, err := s.repo.GetByEmployeeCode(ctx, employeeCode)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.ErrUserNotFound
	}
	return e, nil
}

// ListEmployees returns active directory entries, optionally narrowed to one
// department. Used to pick delegatees, so disabled accounts are excluded.
func (s *Service) ListEmployees(ctx context.Context, department string) ([]*Employee, error) {
	if department != "" {
		return s.repo.ListByDepartment(ctx, department)
	}
	return s.repo.ListAll(ctx)
}
