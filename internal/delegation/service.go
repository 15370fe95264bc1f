package delegation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/core/events"
	"github.com/frahmantamala/collection-management/internal/notification"
)

type Repository interface {
	CreateBatch(ctx context.Context, rows []*Delegation) error
	GetByID(ctx context.Context, id int64) (*Delegation, error)
	List(ctx context.Context, filter ListFilter) ([]*Delegation, error)
	// RevokeActive transitions active → revoked with a conditional UPDATE and
	// reports whether a row actually changed.
	RevokeActive(ctx context.Context, id int64) (bool, error)
	// HasActiveAccess reports an active, unexpired delegation of caseID to
	// the given delegatee.
	HasActiveAccess(ctx context.Context, caseID, delegateeCode string, now time.Time) (bool, error)
	// ExpireDue transitions every row with status=active and expiry_date
	// before now to expired, in one conditional UPDATE, and returns the rows
	// it touched.
	ExpireDue(ctx context.Context, now time.Time) ([]ExpiredRow, error)
}

// CaseOwnership is the slice of a case the delegation rules need.
type CaseOwnership struct {
	CaseID               string
	AssignedEmployeeCode string
	Department           string
	BranchCode           string
}

type CaseSource interface {
	GetOwnership(ctx context.Context, caseIDs []string) (map[string]CaseOwnership, error)
}

// Party is a user seen as delegator or delegatee.
type Party struct {
	EmployeeCode string
	Department   string
	BranchCode   string
	IsActive     bool
}

type UserSource interface {
	GetParty(ctx context.Context, employeeCode string) (*Party, error)
}

type Service struct {
	repo     Repository
	caseSrc  CaseSource
	users    UserSource
	sink     notification.Sink
	eventBus *events.EventBus
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, caseSrc CaseSource, users UserSource, sink notification.Sink, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		caseSrc:  caseSrc,
		users:    users,
		sink:     sink,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateDelegations creates one delegation row per case in the batch, all in
// one transaction. Any single violation rejects the whole batch.
func (s *Service) CreateDelegations(ctx context.Context, actor *auth.Identity, dto CreateDelegationsDTO) ([]*Delegation, error) {
	if actor == nil || !actor.IsActive {
		return nil, errors.ErrUnauthorizedAccess
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	delegatorCode := dto.DelegatedBy
	if delegatorCode == "" {
		delegatorCode = actor.EmployeeCode
	}

	if delegatorCode == dto.DelegatedTo {
		return nil, errors.NewValidationError("cannot delegate a case to its own delegator", errors.ErrCodeSelfDelegation)
	}

	delegator, err := s.users.GetParty(ctx, delegatorCode)
	if err != nil {
		return nil, err
	}
	if !delegator.IsActive {
		return nil, errors.NewValidationError("delegator account is disabled", errors.ErrCodeValidationFailed)
	}

	delegatee, err := s.users.GetParty(ctx, dto.DelegatedTo)
	if err != nil {
		return nil, err
	}
	if !delegatee.IsActive {
		return nil, errors.NewValidationError("delegatee account is disabled", errors.ErrCodeValidationFailed)
	}

	ownership, err := s.caseSrc.GetOwnership(ctx, dto.CaseIDs)
	if err != nil {
		return nil, errors.NewInternalError("failed to load cases for delegation", err)
	}

	if err := s.checkActorRules(actor, delegator, delegatee, ownership, dto.CaseIDs); err != nil {
		return nil, err
	}

	now := s.now()
	rows := make([]*Delegation, 0, len(dto.CaseIDs))
	for _, caseID := range dto.CaseIDs {
		rows = append(rows, &Delegation{
			CaseID:         caseID,
			DelegatedBy:    delegatorCode,
			DelegatedTo:    dto.DelegatedTo,
			DelegationDate: now,
			ExpiryDate:     dto.ExpiryDate,
			Status:         StatusActive,
			Notes:          dto.Notes,
		})
	}

	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to create delegations", err)
	}

	s.eventBus.Publish(ctx, events.NewDelegationCreatedEvent(dto.CaseIDs, delegatorCode, dto.DelegatedTo, dto.ExpiryDate))
	s.notify(ctx, notification.Message{
		TargetEmployeeCode: dto.DelegatedTo,
		Type:               events.EventDelegationCreated,
		Message:            fmt.Sprintf("%d case(s) delegated to you until %s", len(rows), dto.ExpiryDate.Format("2006-01-02")),
		Payload: map[string]any{
			"case_ids":     dto.CaseIDs,
			"delegated_by": delegatorCode,
			"expiry_date":  dto.ExpiryDate,
		},
	})

	s.logger.InfoContext(ctx, "delegations created",
		"count", len(rows),
		"delegated_by", delegatorCode,
		"delegated_to", dto.DelegatedTo,
		"actor", actor.EmployeeCode)
	return rows, nil
}

// checkActorRules enforces who may delegate what:
// administrators and directors may delegate any existing case; managers and
// deputy managers may delegate only within their own department and branch;
// everyone else may delegate only cases they own themselves.
func (s *Service) checkActorRules(actor *auth.Identity, delegator, delegatee *Party, ownership map[string]CaseOwnership, caseIDs []string) error {
	for _, caseID := range caseIDs {
		c, found := ownership[caseID]
		if !found {
			return errors.NewNotFoundError(fmt.Sprintf("case %s not found", caseID), errors.ErrCodeCaseNotFound)
		}

		switch actor.Role {
		case auth.RoleAdministrator, auth.RoleDirector:
			// ownership check bypassed
		case auth.RoleManager, auth.RoleDeputyManager:
			if delegator.Department != actor.Department || delegator.BranchCode != actor.BranchCode {
				return errors.NewForbiddenError("delegator is outside your department", errors.ErrCodeUnauthorizedAccess)
			}
			if delegatee.Department != actor.Department || delegatee.BranchCode != actor.BranchCode {
				return errors.NewForbiddenError("delegatee is outside your department", errors.ErrCodeUnauthorizedAccess)
			}
			if c.AssignedEmployeeCode != delegator.EmployeeCode {
				return errors.NewValidationError(
					fmt.Sprintf("case %s is not owned by delegator %s", caseID, delegator.EmployeeCode),
					errors.ErrCodeCaseNotOwned)
			}
		default:
			if delegator.EmployeeCode != actor.EmployeeCode {
				return errors.NewForbiddenError("only managers may delegate on behalf of others", errors.ErrCodeUnauthorizedAccess)
			}
			if c.AssignedEmployeeCode != actor.EmployeeCode {
				return errors.NewValidationError(
					fmt.Sprintf("case %s is not owned by you", caseID),
					errors.ErrCodeCaseNotOwned)
			}
		}
	}
	return nil
}

// Revoke transitions one active delegation to revoked. Only the original
// delegator or an administrator may revoke.
func (s *Service) Revoke(ctx context.Context, actor *auth.Identity, delegationID int64) error {
	if actor == nil || !actor.IsActive {
		return errors.ErrUnauthorizedAccess
	}

	d, err := s.repo.GetByID(ctx, delegationID)
	if err != nil {
		return err
	}

	if actor.EmployeeCode != d.DelegatedBy && !actor.IsAdministrator() {
		return errors.NewForbiddenError("only the delegator or an administrator may revoke", errors.ErrCodeUnauthorizedAccess)
	}
	if d.Status != StatusActive {
		return errors.NewConflictError("delegation is not active", errors.ErrCodeDelegationNotActive)
	}

	revoked, err := s.repo.RevokeActive(ctx, delegationID)
	if err != nil {
		return errors.NewInternalError("failed to revoke delegation", err)
	}
	if !revoked {
		// lost the race to the sweeper or a concurrent revoke
		return errors.NewConflictError("delegation is not active", errors.ErrCodeDelegationNotActive)
	}

	s.eventBus.Publish(ctx, events.NewDelegationRevokedEvent(d.ID, d.CaseID, actor.EmployeeCode))
	s.notify(ctx, notification.Message{
		TargetEmployeeCode: d.DelegatedTo,
		Type:               events.EventDelegationRevoked,
		Message:            fmt.Sprintf("your delegated access to case %s was revoked", d.CaseID),
		Payload:            map[string]any{"case_id": d.CaseID, "delegation_id": d.ID},
	})

	s.logger.InfoContext(ctx, "delegation revoked",
		"delegation_id", d.ID,
		"case_id", d.CaseID,
		"actor", actor.EmployeeCode)
	return nil
}

// List returns delegations visible to the identity: administrators see
// everything, everyone else sees rows where they are delegator or delegatee.
func (s *Service) List(ctx context.Context, identity *auth.Identity, filter ListFilter) ([]*Delegation, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if !identity.IsAdministrator() {
		filter.Involving = identity.EmployeeCode
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.NewInternalError("failed to list delegations", err)
	}
	return list, nil
}

// CanAccess implements the per-case access check every case-mutating call
// performs: administrator, current owner, or active unexpired delegatee.
func (s *Service) CanAccess(ctx context.Context, caseID string, identity *auth.Identity) (bool, error) {
	if identity == nil || !identity.IsActive {
		return false, nil
	}
	if identity.IsAdministrator() {
		return true, nil
	}

	ownership, err := s.caseSrc.GetOwnership(ctx, []string{caseID})
	if err != nil {
		return false, err
	}
	if c, found := ownership[caseID]; found && c.AssignedEmployeeCode == identity.EmployeeCode {
		return true, nil
	}

	return s.repo.HasActiveAccess(ctx, caseID, identity.EmployeeCode, s.now())
}

// SweepExpired expires every overdue active delegation in a single
// conditional UPDATE, then notifies each affected delegatee once. Safe to run
// concurrently with creation and revocation and idempotent across runs.
func (s *Service) SweepExpired(ctx context.Context) (*SweepResult, error) {
	expired, err := s.repo.ExpireDue(ctx, s.now())
	if err != nil {
		return nil, errors.NewInternalError("failed to sweep expired delegations", err)
	}

	byDelegatee := make(map[string][]string)
	for _, row := range expired {
		byDelegatee[row.DelegatedTo] = append(byDelegatee[row.DelegatedTo], row.CaseID)
	}

	notified := make([]string, 0, len(byDelegatee))
	for delegatee, caseIDs := range byDelegatee {
		s.eventBus.Publish(ctx, events.NewDelegationExpiredEvent(delegatee, caseIDs))
		s.notify(ctx, notification.Message{
			TargetEmployeeCode: delegatee,
			Type:               events.EventDelegationExpired,
			Message:            fmt.Sprintf("delegated access to %d case(s) has expired", len(caseIDs)),
			Payload:            map[string]any{"case_ids": caseIDs, "expired_count": len(caseIDs)},
		})
		notified = append(notified, delegatee)
	}

	if len(expired) > 0 {
		s.logger.InfoContext(ctx, "delegation sweep finished",
			"expired_count", len(expired),
			"notified_users", len(notified))
	}

	return &SweepResult{ExpiredCount: len(expired), NotifiedUsers: notified}, nil
}

// notify delivers best-effort: a broken notification transport never fails
// the business operation.
func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Notify(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "notification delivery failed",
			"target", msg.TargetEmployeeCode,
			"type", msg.Type,
			"error", err)
	}
}
