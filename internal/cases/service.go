package cases

import (
	"context"
	"fmt"
	"log/slog"

	errors "github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/auth"
)

// AccessScope is the resolved breadth a repository query must honor. The
// repository translates it into a WHERE predicate on top of the debt-group
// base predicate.
type AccessScope struct {
	Scope        auth.Scope
	EmployeeCode string
	Department   string
}

type Repository interface {
	List(ctx context.Context, access AccessScope, filter ListFilter) ([]*Case, int64, error)
	GetByCaseID(ctx context.Context, caseID string) (*Case, error)
	UpdateStatus(ctx context.Context, caseID, status string) error
	Transfer(ctx context.Context, caseID, toEmployeeCode, toDepartment, toBranchCode string) error
	CreateActivity(ctx context.Context, activity *Activity) error
	ListActivities(ctx context.Context, caseID string) ([]*Activity, error)
}

// AccessChecker answers whether an identity may touch one specific case:
// administrator, current owner, or holder of an active delegation.
type AccessChecker interface {
	CanAccess(ctx context.Context, caseID string, identity *auth.Identity) (bool, error)
}

// Directory resolves transfer targets.
type Directory interface {
	GetByEmployeeCode(ctx context.Context, employeeCode string) (*DirectoryEntry, error)
}

type DirectoryEntry struct {
	EmployeeCode string
	Department   string
	BranchCode   string
	IsActive     bool
}

type Service struct {
	repo   Repository
	scopes *auth.ScopeFilter
	access AccessChecker
	users  Directory
	logger *slog.Logger
}

func NewService(repo Repository, scopes *auth.ScopeFilter, access AccessChecker, users Directory, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		scopes: scopes,
		access: access,
		users:  users,
		logger: logger,
	}
}

// List returns the cases visible to the identity at its resolved view scope.
func (s *Service) List(ctx context.Context, identity *auth.Identity, filter ListFilter) ([]*Case, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	filter.Normalize()

	scope := s.scopes.ResolveScope(identity, auth.ActionView)
	if scope == auth.ScopeNone {
		return nil, 0, errors.ErrInsufficientScope
	}

	access := AccessScope{
		Scope:        scope,
		EmployeeCode: identity.EmployeeCode,
		Department:   identity.Department,
	}

	list, total, err := s.repo.List(ctx, access, filter)
	if err != nil {
		return nil, 0, errors.NewInternalError("failed to list cases", err)
	}

	for _, c := range list {
		c.StatusLabel = StatusLabels[c.Status]
	}
	return list, total, nil
}

// Get returns one case when the identity's view scope covers it or when an
// active delegation grants access outside that scope.
func (s *Service) Get(ctx context.Context, identity *auth.Identity, caseID string) (*Case, error) {
	c, err := s.repo.GetByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.mayView(ctx, identity, c)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.ErrUnauthorizedAccess
	}

	c.StatusLabel = StatusLabels[c.Status]
	return c, nil
}

// UpdateStatus mutates a case's lifecycle state. Mutation requires per-case
// access, not merely a covering view scope.
func (s *Service) UpdateStatus(ctx context.Context, identity *auth.Identity, caseID string, dto UpdateStatusDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	c, err := s.repo.GetByCaseID(ctx, caseID)
	if err != nil {
		return err
	}

	if err := s.requireAccess(ctx, identity, c.CaseID); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, c.CaseID, dto.Status); err != nil {
		return errors.NewInternalError("failed to update case status", err)
	}

	content := fmt.Sprintf("status changed from %s to %s", c.Status, dto.Status)
	if dto.Note != "" {
		content += ": " + dto.Note
	}
	s.recordActivity(ctx, &Activity{
		CaseID:       c.CaseID,
		EmployeeCode: identity.EmployeeCode,
		ActivityType: ActivityTypeStatusChange,
		Content:      content,
	})

	s.logger.InfoContext(ctx, "case status updated",
		"case_id", c.CaseID,
		"from", c.Status,
		"to", dto.Status,
		"employee_code", identity.EmployeeCode)
	return nil
}

// Transfer reassigns ownership to another active employee. Ownership moves
// are always explicit; the case follows the new owner's department and
// branch.
func (s *Service) Transfer(ctx context.Context, identity *auth.Identity, caseID string, dto TransferDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	c, err := s.repo.GetByCaseID(ctx, caseID)
	if err != nil {
		return err
	}

	if err := s.requireAccess(ctx, identity, c.CaseID); err != nil {
		return err
	}

	target, err := s.users.GetByEmployeeCode(ctx, dto.ToEmployeeCode)
	if err != nil {
		return err
	}
	if !target.IsActive {
		return errors.NewValidationError("target employee is disabled", errors.ErrCodeValidationFailed)
	}
	if target.EmployeeCode == c.AssignedEmployeeCode {
		return errors.NewValidationError("case already assigned to this employee", errors.ErrCodeValidationFailed)
	}

	if err := s.repo.Transfer(ctx, c.CaseID, target.EmployeeCode, target.Department, target.BranchCode); err != nil {
		return errors.NewInternalError("failed to transfer case", err)
	}

	content := fmt.Sprintf("case transferred from %s to %s", c.AssignedEmployeeCode, target.EmployeeCode)
	if dto.Note != "" {
		content += ": " + dto.Note
	}
	s.recordActivity(ctx, &Activity{
		CaseID:       c.CaseID,
		EmployeeCode: identity.EmployeeCode,
		ActivityType: ActivityTypeTransfer,
		Content:      content,
	})

	s.logger.InfoContext(ctx, "case transferred",
		"case_id", c.CaseID,
		"from", c.AssignedEmployeeCode,
		"to", target.EmployeeCode,
		"actor", identity.EmployeeCode)
	return nil
}

func (s *Service) CreateActivity(ctx context.Context, identity *auth.Identity, caseID string, dto CreateActivityDTO) (*Activity, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if err := s.requireAccess(ctx, identity, c.CaseID); err != nil {
		return nil, err
	}

	activity := &Activity{
		CaseID:       c.CaseID,
		EmployeeCode: identity.EmployeeCode,
		ActivityType: dto.ActivityType,
		Content:      dto.Content,
	}
	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		return nil, errors.NewInternalError("failed to record activity", err)
	}
	return activity, nil
}

func (s *Service) ListActivities(ctx context.Context, identity *auth.Identity, caseID string) ([]*Activity, error) {
	c, err := s.repo.GetByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.mayView(ctx, identity, c)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.ErrUnauthorizedAccess
	}

	return s.repo.ListActivities(ctx, c.CaseID)
}

// mayView is scope OR per-case access: a delegatee sees a delegated case even
// when it sits outside their department scope.
func (s *Service) mayView(ctx context.Context, identity *auth.Identity, c *Case) (bool, error) {
	scope := s.scopes.ResolveScope(identity, auth.ActionView)
	switch scope {
	case auth.ScopeAll:
		return true, nil
	case auth.ScopeDepartment:
		if c.Department == identity.Department {
			return true, nil
		}
	case auth.ScopeOwn:
		if c.AssignedEmployeeCode == identity.EmployeeCode {
			return true, nil
		}
	}

	return s.access.CanAccess(ctx, c.CaseID, identity)
}

func (s *Service) requireAccess(ctx context.Context, identity *auth.Identity, caseID string) error {
	allowed, err := s.access.CanAccess(ctx, caseID, identity)
	if err != nil {
		return errors.NewInternalError("failed to check case access", err)
	}
	if !allowed {
		return errors.ErrUnauthorizedAccess
	}
	return nil
}

func (s *Service) recordActivity(ctx context.Context, activity *Activity) {
	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		s.logger.ErrorContext(ctx, "failed to record case activity",
			"case_id", activity.CaseID,
			"activity_type", activity.ActivityType,
			"error", err)
	}
}
