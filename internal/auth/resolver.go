package auth

import (
	"context"
	"log/slog"
)

// PermissionSource supplies a user's explicit DB grants. The resolver only
// touches it after the role allowlist fails, so routine role-gated requests
// survive a database outage.
type PermissionSource interface {
	GetGrantedPermissions(ctx context.Context, employeeCode string) ([]string, error)
}

// Resolver is the single authorization decision point. Routes declare the
// permissions and roles they require; nothing outside this type re-implements
// the role-or-permission check.
type Resolver struct {
	permissions PermissionSource
	logger      *slog.Logger
}

func NewResolver(permissions PermissionSource, logger *slog.Logger) *Resolver {
	return &Resolver{
		permissions: permissions,
		logger:      logger,
	}
}

// Resolve grants when the identity's role is in allowedRoles, or when the
// identity's effective permission set intersects requiredPermissions
// (any-of). Permission lookup errors deny: the resolver fails closed.
func (r *Resolver) Resolve(ctx context.Context, identity *Identity, requiredPermissions []string, allowedRoles []Role) bool {
	decision := r.resolve(ctx, identity, requiredPermissions, allowedRoles, false)
	r.audit(ctx, identity, requiredPermissions, allowedRoles, decision, "any_of")
	return decision
}

// ResolveAll is the all-of variant: every required permission must be held.
// Only the user-permission-management surface uses it.
func (r *Resolver) ResolveAll(ctx context.Context, identity *Identity, requiredPermissions []string, allowedRoles []Role) bool {
	decision := r.resolve(ctx, identity, requiredPermissions, allowedRoles, true)
	r.audit(ctx, identity, requiredPermissions, allowedRoles, decision, "all_of")
	return decision
}

func (r *Resolver) resolve(ctx context.Context, identity *Identity, requiredPermissions []string, allowedRoles []Role, requireAll bool) bool {
	if identity == nil || !identity.IsActive {
		return false
	}

	for _, role := range allowedRoles {
		if identity.Role == role {
			return true
		}
	}

	if len(requiredPermissions) == 0 {
		return false
	}

	effective := r.effectivePermissions(ctx, identity)

	held := make(map[string]struct{}, len(effective))
	for _, p := range effective {
		held[p] = struct{}{}
	}

	if requireAll {
		for _, required := range requiredPermissions {
			if _, ok := held[required]; !ok {
				return false
			}
		}
		return true
	}

	for _, required := range requiredPermissions {
		if _, ok := held[required]; ok {
			return true
		}
	}
	return false
}

// effectivePermissions fetches the current explicit grants and unions them
// with the role-implied set. A fetch failure downgrades to role-implied
// permissions only, never to "all permissions".
func (r *Resolver) effectivePermissions(ctx context.Context, identity *Identity) []string {
	granted, err := r.permissions.GetGrantedPermissions(ctx, identity.EmployeeCode)
	if err != nil {
		r.logger.ErrorContext(ctx, "permission lookup failed, treating as no grants",
			"error", err,
			"employee_code", identity.EmployeeCode)
		granted = nil
	}

	scoped := &Identity{Role: identity.Role, Permissions: granted}
	return scoped.EffectivePermissions()
}

func (r *Resolver) audit(ctx context.Context, identity *Identity, requiredPermissions []string, allowedRoles []Role, granted bool, mode string) {
	code := ""
	role := Role("")
	if identity != nil {
		code = identity.EmployeeCode
		role = identity.Role
	}

	outcome := "deny"
	if granted {
		outcome = "grant"
	}

	r.logger.InfoContext(ctx, "authorization decision",
		"employee_code", code,
		"role", role,
		"required_permissions", requiredPermissions,
		"allowed_roles", allowedRoles,
		"mode", mode,
		"decision", outcome)
}
