package auth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/collection-management/internal/auth"
)

var _ = Describe("ScopeFilter", func() {
	var filter *auth.ScopeFilter

	identity := func(role auth.Role, perms ...string) *auth.Identity {
		return &auth.Identity{
			EmployeeCode: "EM001",
			Role:         role,
			Department:   "XLTN",
			BranchCode:   "6400",
			IsActive:     true,
			Permissions:  perms,
		}
	}

	BeforeEach(func() {
		filter = auth.NewScopeFilter(auth.DefaultScopeExceptions())
	})

	Describe("permission-derived scope", func() {
		It("resolves *_all_* before *_department_* before *_own_*", func() {
			id := identity(auth.RoleEmployee, "view_own_cases", "view_department_cases", "view_all_cases")
			Expect(filter.ResolveScope(id, auth.ActionView)).To(Equal(auth.ScopeAll))

			id = identity(auth.RoleEmployee, "view_own_cases", "view_department_cases")
			Expect(filter.ResolveScope(id, auth.ActionView)).To(Equal(auth.ScopeDepartment))

			id = identity(auth.RoleEmployee, "view_own_cases")
			Expect(filter.ResolveScope(id, auth.ActionView)).To(Equal(auth.ScopeOwn))
		})

		It("keeps action families separate", func() {
			id := identity(auth.RoleEmployee, "view_all_cases")
			Expect(filter.ResolveScope(id, auth.ActionExport)).To(Equal(auth.ScopeOwn),
				"a view grant must not widen export breadth past the legacy rule")
		})

		It("ignores misspelled permissions and falls back to the legacy role rule", func() {
			id := identity(auth.RoleEmployee, "view_alll_cases", "viewall")
			Expect(filter.ResolveScope(id, auth.ActionView)).To(Equal(auth.ScopeOwn))
		})
	})

	Describe("legacy role fallback", func() {
		It("maps administrator, director and deputy director to ALL", func() {
			Expect(filter.ResolveScope(identity(auth.RoleAdministrator), auth.ActionView)).To(Equal(auth.ScopeAll))
			Expect(filter.ResolveScope(identity(auth.RoleDirector), auth.ActionView)).To(Equal(auth.ScopeAll))
			Expect(filter.ResolveScope(identity(auth.RoleDeputyDirector), auth.ActionView)).To(Equal(auth.ScopeAll))
		})

		It("maps managers to DEPARTMENT and employees to OWN", func() {
			Expect(filter.ResolveScope(identity(auth.RoleManager), auth.ActionView)).To(Equal(auth.ScopeDepartment))
			Expect(filter.ResolveScope(identity(auth.RoleDeputyManager), auth.ActionView)).To(Equal(auth.ScopeDepartment))
			Expect(filter.ResolveScope(identity(auth.RoleEmployee), auth.ActionView)).To(Equal(auth.ScopeOwn))
		})

		It("denies an unknown role instead of falling through to ALL", func() {
			id := identity(auth.Role("intern"))
			Expect(filter.ResolveScope(id, auth.ActionView)).To(Equal(auth.ScopeNone))
		})
	})

	Describe("exception table", func() {
		It("gives branch 6421 unrestricted scope regardless of role", func() {
			id := identity(auth.RoleEmployee)
			id.BranchCode = "6421"
			Expect(filter.ResolveScope(id, auth.ActionView)).To(Equal(auth.ScopeAll))
			Expect(filter.ResolveScope(id, auth.ActionExport)).To(Equal(auth.ScopeAll))
		})

		It("gives KHDN management unrestricted scope", func() {
			id := identity(auth.RoleManager)
			id.Department = "KHDN"
			Expect(filter.ResolveScope(id, auth.ActionView)).To(Equal(auth.ScopeAll))

			id = identity(auth.RoleDeputyManager)
			id.Department = "KHDN"
			Expect(filter.ResolveScope(id, auth.ActionView)).To(Equal(auth.ScopeAll))
		})

		It("does not widen KHDN non-management", func() {
			id := identity(auth.RoleEmployee)
			id.Department = "KHDN"
			Expect(filter.ResolveScope(id, auth.ActionView)).To(Equal(auth.ScopeOwn))
		})
	})

	It("denies nil and disabled identities", func() {
		Expect(filter.ResolveScope(nil, auth.ActionView)).To(Equal(auth.ScopeNone))

		id := identity(auth.RoleAdministrator)
		id.IsActive = false
		Expect(filter.ResolveScope(id, auth.ActionView)).To(Equal(auth.ScopeNone))
	})
})
