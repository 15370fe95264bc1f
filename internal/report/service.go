package report

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/cases"
	"github.com/xuri/excelize/v2"
)

// AllowlistStore is the administrative override list for exports.
type AllowlistStore interface {
	IsAllowed(ctx context.Context, employeeCode string) (bool, error)
	Add(ctx context.Context, employeeCode, addedBy string) (*AllowlistEntry, error)
	Remove(ctx context.Context, employeeCode string) error
	List(ctx context.Context) ([]*AllowlistEntry, error)
}

type Repository interface {
	ListForExport(ctx context.Context, access cases.AccessScope, filter cases.ListFilter) ([]*cases.Case, error)
	SummarizeByStatus(ctx context.Context, access cases.AccessScope) ([]StatusSummary, error)
	SummarizeByDebtGroup(ctx context.Context, access cases.AccessScope) ([]DebtGroupSummary, error)
}

type Service struct {
	repo      Repository
	allowlist AllowlistStore
	scopes    *auth.ScopeFilter
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, allowlist AllowlistStore, scopes *auth.ScopeFilter, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		allowlist: allowlist,
		scopes:    scopes,
		logger:    logger,
		now:       time.Now,
	}
}

var exportPermissions = []string{
	auth.PermAdmin,
	auth.PermExportOwnData,
	auth.PermExportDepartmentData,
	auth.PermExportAllData,
}

// ExportCases renders the identity's visible cases into an xlsx workbook.
// The allowlist and export permissions gate whether an export may happen at
// all; the scope filter alone decides how much data goes into it.
func (s *Service) ExportCases(ctx context.Context, identity *auth.Identity, filter cases.ListFilter) (*excelize.File, string, error) {
	if identity == nil || !identity.IsActive {
		return nil, "", errors.ErrExportNotAllowed
	}

	allowed := identity.HasAnyPermission(exportPermissions)
	if !allowed {
		listed, err := s.allowlist.IsAllowed(ctx, identity.EmployeeCode)
		if err != nil {
			// fail closed, same as a permission lookup failure
			s.logger.ErrorContext(ctx, "allowlist lookup failed, denying export",
				"employee_code", identity.EmployeeCode,
				"error", err)
			return nil, "", errors.ErrExportNotAllowed
		}
		allowed = listed
	}
	if !allowed {
		return nil, "", errors.ErrExportNotAllowed
	}

	scope := s.scopes.ResolveScope(identity, auth.ActionExport)
	if scope == auth.ScopeNone {
		// allowlisted identities without any export scope fall back to their
		// own cases; the allowlist opens the gate, not the breadth
		scope = auth.ScopeOwn
	}

	if err := filter.Validate(); err != nil {
		return nil, "", err
	}

	access := cases.AccessScope{
		Scope:        scope,
		EmployeeCode: identity.EmployeeCode,
		Department:   identity.Department,
	}
	list, err := s.repo.ListForExport(ctx, access, filter)
	if err != nil {
		return nil, "", errors.NewInternalError("failed to load cases for export", err)
	}

	workbook, err := BuildCaseWorkbook(list)
	if err != nil {
		return nil, "", errors.NewInternalError("failed to build export workbook", err)
	}

	s.logger.InfoContext(ctx, "case export generated",
		"employee_code", identity.EmployeeCode,
		"scope", scope.String(),
		"rows", len(list))
	return workbook, ExportFilename(s.now()), nil
}

// Summary aggregates the identity's visible cases for the dashboard.
func (s *Service) Summary(ctx context.Context, identity *auth.Identity) (*Summary, error) {
	scope := s.scopes.ResolveScope(identity, auth.ActionView)
	if scope == auth.ScopeNone {
		return nil, errors.ErrInsufficientScope
	}

	access := cases.AccessScope{
		Scope:        scope,
		EmployeeCode: identity.EmployeeCode,
		Department:   identity.Department,
	}

	byStatus, err := s.repo.SummarizeByStatus(ctx, access)
	if err != nil {
		return nil, errors.NewInternalError("failed to summarize by status", err)
	}
	for i := range byStatus {
		byStatus[i].StatusLabel = cases.StatusLabels[byStatus[i].Status]
	}

	byGroup, err := s.repo.SummarizeByDebtGroup(ctx, access)
	if err != nil {
		return nil, errors.NewInternalError("failed to summarize by debt group", err)
	}

	summary := &Summary{
		ByStatus:    byStatus,
		ByDebtGroup: byGroup,
		GeneratedAt: s.now(),
		Scope:       scope.String(),
	}
	for _, row := range byStatus {
		summary.TotalCases += row.Count
		summary.OutstandingTotal += row.OutstandingTotal
	}
	return summary, nil
}

func (s *Service) ListAllowlist(ctx context.Context) ([]*AllowlistEntry, error) {
	return s.allowlist.List(ctx)
}

func (s *Service) AddAllowlistEntry(ctx context.Context, employeeCode, addedBy string) (*AllowlistEntry, error) {
	employeeCode = strings.TrimSpace(employeeCode)
	if employeeCode == "" {
		return nil, errors.NewValidationFieldError("employee_code", "employee_code is required", errors.ErrCodeValidationFailed)
	}

	entry, err := s.allowlist.Add(ctx, employeeCode, addedBy)
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to add allowlist entry", err)
	}

	s.logger.InfoContext(ctx, "export allowlist entry added",
		"employee_code", employeeCode,
		"added_by", addedBy)
	return entry, nil
}

func (s *Service) RemoveAllowlistEntry(ctx context.Context, employeeCode string) error {
	if err := s.allowlist.Remove(ctx, employeeCode); err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return err
		}
		return errors.NewInternalError("failed to remove allowlist entry", err)
	}

	s.logger.InfoContext(ctx, "export allowlist entry removed", "employee_code", employeeCode)
	return nil
}
