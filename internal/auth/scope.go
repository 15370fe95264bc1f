package auth

import "strings"

// Scope is the breadth of data an identity may see for a given action.
type Scope int

const (
	// ScopeNone denies the action outright: no rule matched and the filter
	// fails closed rather than falling through to ScopeAll.
	ScopeNone Scope = iota
	ScopeOwn
	ScopeDepartment
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeOwn:
		return "own"
	case ScopeDepartment:
		return "department"
	case ScopeAll:
		return "all"
	default:
		return "none"
	}
}

// ActionCategory selects which permission family the scope filter inspects.
type ActionCategory string

const (
	ActionView   ActionCategory = "view"
	ActionEdit   ActionCategory = "edit"
	ActionExport ActionCategory = "export"
)

// ScopeException is one entry of the authoritative carve-out table. A match
// on BranchCode alone, or on (Role, Department), overrides the normal
// resolution. Business carve-outs live here and nowhere else.
type ScopeException struct {
	BranchCode string
	Role       Role
	Department string
	Scope      Scope
}

func (e ScopeException) matches(identity *Identity) bool {
	if e.BranchCode != "" {
		return identity.BranchCode == e.BranchCode
	}
	return identity.Role == e.Role && identity.Department == e.Department
}

// DefaultScopeExceptions returns the production carve-outs: the 6421 branch
// is globally unrestricted, and the KHDN department's management sees all
// data rather than department data.
func DefaultScopeExceptions() []ScopeException {
	return []ScopeException{
		{BranchCode: "6421", Scope: ScopeAll},
		{Role: RoleManager, Department: "KHDN", Scope: ScopeAll},
		{Role: RoleDeputyManager, Department: "KHDN", Scope: ScopeAll},
	}
}

// ScopeFilter derives the data breadth for an identity and action. The
// consuming query layer applies the result as a WHERE predicate; the filter
// itself never touches the database.
type ScopeFilter struct {
	exceptions []ScopeException
}

func NewScopeFilter(exceptions []ScopeException) *ScopeFilter {
	return &ScopeFilter{exceptions: exceptions}
}

// ResolveScope walks the ordered rules; the first match wins:
//  1. exception table,
//  2. *_all_* permission for the action,
//  3. *_department_* permission,
//  4. *_own_* permission,
//  5. legacy role-only fallback,
// and denies when nothing matched.
func (f *ScopeFilter) ResolveScope(identity *Identity, action ActionCategory) Scope {
	if identity == nil || !identity.IsActive {
		return ScopeNone
	}

	for _, exc := range f.exceptions {
		if exc.matches(identity) {
			return exc.Scope
		}
	}

	effective := identity.EffectivePermissions()
	for _, level := range []Scope{ScopeAll, ScopeDepartment, ScopeOwn} {
		for _, perm := range effective {
			if permissionScope(perm, action) == level {
				return level
			}
		}
	}

	return f.legacyRoleScope(identity.Role)
}

// permissionScope reads the breadth encoded in a permission name, e.g.
// view_all_cases or export_department_data. Names outside the action's
// family contribute nothing.
func permissionScope(perm string, action ActionCategory) Scope {
	if !strings.HasPrefix(perm, string(action)+"_") {
		return ScopeNone
	}
	rest := strings.TrimPrefix(perm, string(action)+"_")
	switch {
	case strings.HasPrefix(rest, "all_") || rest == "all":
		return ScopeAll
	case strings.HasPrefix(rest, "department_") || rest == "department":
		return ScopeDepartment
	case strings.HasPrefix(rest, "own_") || rest == "own":
		return ScopeOwn
	default:
		return ScopeNone
	}
}

// legacyRoleScope preserves the pre-permission-system rules for identities
// whose roles predate explicit grants.
func (f *ScopeFilter) legacyRoleScope(role Role) Scope {
	switch role {
	case RoleAdministrator, RoleDirector, RoleDeputyDirector:
		return ScopeAll
	case RoleManager, RoleDeputyManager:
		return ScopeDepartment
	case RoleEmployee:
		return ScopeOwn
	default:
		return ScopeNone
	}
}
