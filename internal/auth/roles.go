package auth

// Role is the closed set of organisational roles. A user's role is resolved
// at login and embedded in the session token; it never changes within a
// session.
type Role string

const (
	RoleEmployee       Role = "employee"
	RoleDeputyManager  Role = "deputy_manager"
	RoleManager        Role = "manager"
	RoleDeputyDirector Role = "deputy_director"
	RoleDirector       Role = "director"
	RoleAdministrator  Role = "administrator"
)

var allRoles = map[Role]struct{}{
	RoleEmployee:       {},
	RoleDeputyManager:  {},
	RoleManager:        {},
	RoleDeputyDirector: {},
	RoleDirector:       {},
	RoleAdministrator:  {},
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := allRoles[r]
	return r, ok
}

func (r Role) IsValid() bool {
	_, ok := allRoles[r]
	return ok
}

// Permission names. The *_own_*/*_department_*/*_all_* naming is load-bearing:
// the scope filter derives data breadth from these patterns.
const (
	PermAdmin = "admin"

	PermViewOwnCases        = "view_own_cases"
	PermViewDepartmentCases = "view_department_cases"
	PermViewAllCases        = "view_all_cases"

	PermEditOwnCases        = "edit_own_cases"
	PermEditDepartmentCases = "edit_department_cases"
	PermEditAllCases        = "edit_all_cases"

	PermExportOwnData        = "export_own_data"
	PermExportDepartmentData = "export_department_data"
	PermExportAllData        = "export_all_data"

	PermManagePermissions = "manage_permissions"
	PermManageDelegations = "manage_delegations"
	PermManageAllowlist   = "manage_export_allowlist"
	PermTransferCases     = "transfer_cases"
)

// rolePermissions maps each role to the permission set it implies. Explicit
// UserPermission grants are layered on top of this table; the table itself
// is the single source of role semantics (no role string comparisons at
// call sites).
var rolePermissions = map[Role][]string{
	RoleEmployee: {
		PermViewOwnCases,
		PermEditOwnCases,
	},
	RoleDeputyManager: {
		PermViewDepartmentCases,
		PermEditDepartmentCases,
		PermExportDepartmentData,
		PermManageDelegations,
	},
	RoleManager: {
		PermViewDepartmentCases,
		PermEditDepartmentCases,
		PermExportDepartmentData,
		PermManageDelegations,
		PermTransferCases,
	},
	RoleDeputyDirector: {
		PermViewAllCases,
		PermExportAllData,
		PermManageDelegations,
	},
	RoleDirector: {
		PermViewAllCases,
		PermExportAllData,
		PermManageDelegations,
		PermTransferCases,
	},
	RoleAdministrator: {
		PermAdmin,
		PermViewAllCases,
		PermEditAllCases,
		PermExportAllData,
		PermManagePermissions,
		PermManageDelegations,
		PermManageAllowlist,
		PermTransferCases,
	},
}

// ImpliedPermissions returns a copy of the permission set implied by role.
func ImpliedPermissions(role Role) []string {
	implied := rolePermissions[role]
	out := make([]string, len(implied))
	copy(out, implied)
	return out
}
