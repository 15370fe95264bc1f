package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/collection-management/internal/auth"
)

type mockPermissionSource struct {
	grants    map[string][]string
	fetchErr  error
	callCount int
}

func (m *mockPermissionSource) GetGrantedPermissions(ctx context.Context, employeeCode string) ([]string, error) {
	m.callCount++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.grants[employeeCode], nil
}

var _ = Describe("Resolver", func() {
	var (
		source   *mockPermissionSource
		resolver *auth.Resolver
		ctx      context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	activeEmployee := func(code string, role auth.Role) *auth.Identity {
		return &auth.Identity{
			ID:           1,
			EmployeeCode: code,
			Role:         role,
			Department:   "XLTN",
			BranchCode:   "6400",
			IsActive:     true,
		}
	}

	BeforeEach(func() {
		source = &mockPermissionSource{grants: make(map[string][]string)}
		resolver = auth.NewResolver(source, testLogger)
		ctx = context.Background()
	})

	Describe("role short-circuit", func() {
		It("grants without touching the permission source when the role is allowed", func() {
			identity := activeEmployee("EM001", auth.RoleManager)

			granted := resolver.Resolve(ctx, identity, []string{"view_all_cases"}, []auth.Role{auth.RoleManager})

			Expect(granted).To(BeTrue())
			Expect(source.callCount).To(Equal(0))
		})

		It("survives a permission source outage for role-gated requests", func() {
			source.fetchErr = errors.New("connection refused")
			identity := activeEmployee("EM001", auth.RoleAdministrator)

			granted := resolver.Resolve(ctx, identity, nil, []auth.Role{auth.RoleAdministrator})

			Expect(granted).To(BeTrue())
		})
	})

	Describe("any-of permission semantics", func() {
		It("grants when one of the required permissions is held", func() {
			source.grants["EM001"] = []string{"view_all_cases"}
			identity := activeEmployee("EM001", auth.RoleEmployee)

			granted := resolver.Resolve(ctx, identity, []string{"view_all_cases", "export_all_data"}, nil)

			Expect(granted).To(BeTrue())
		})

		It("grants via role-implied permissions without explicit grants", func() {
			identity := activeEmployee("EM001", auth.RoleEmployee)

			granted := resolver.Resolve(ctx, identity, []string{"view_own_cases"}, nil)

			Expect(granted).To(BeTrue())
		})

		It("denies when nothing intersects", func() {
			identity := activeEmployee("EM001", auth.RoleEmployee)

			granted := resolver.Resolve(ctx, identity, []string{"export_all_data"}, nil)

			Expect(granted).To(BeFalse())
		})

		It("denies when required permissions are empty and no role matches", func() {
			identity := activeEmployee("EM001", auth.RoleEmployee)

			granted := resolver.Resolve(ctx, identity, nil, []auth.Role{auth.RoleAdministrator})

			Expect(granted).To(BeFalse())
		})

		It("is deterministic for the same inputs", func() {
			source.grants["EM001"] = []string{"export_department_data"}
			identity := activeEmployee("EM001", auth.RoleEmployee)

			first := resolver.Resolve(ctx, identity, []string{"export_department_data"}, nil)
			for i := 0; i < 10; i++ {
				Expect(resolver.Resolve(ctx, identity, []string{"export_department_data"}, nil)).To(Equal(first))
			}
		})
	})

	Describe("all-of permission semantics", func() {
		It("requires every listed permission", func() {
			source.grants["EM001"] = []string{"admin"}
			identity := activeEmployee("EM001", auth.RoleEmployee)

			Expect(resolver.ResolveAll(ctx, identity, []string{"admin", "manage_permissions"}, nil)).To(BeFalse())

			source.grants["EM001"] = []string{"admin", "manage_permissions"}
			Expect(resolver.ResolveAll(ctx, identity, []string{"admin", "manage_permissions"}, nil)).To(BeTrue())
		})
	})

	Describe("fail-closed behaviour", func() {
		It("treats a permission fetch error as no explicit grants", func() {
			source.fetchErr = errors.New("timeout")
			identity := activeEmployee("EM001", auth.RoleEmployee)

			Expect(resolver.Resolve(ctx, identity, []string{"export_all_data"}, nil)).To(BeFalse())
		})

		It("still honours role-implied permissions during an outage", func() {
			source.fetchErr = errors.New("timeout")
			identity := activeEmployee("EM001", auth.RoleEmployee)

			Expect(resolver.Resolve(ctx, identity, []string{"view_own_cases"}, nil)).To(BeTrue())
		})

		It("denies a nil identity", func() {
			Expect(resolver.Resolve(ctx, nil, []string{"view_own_cases"}, nil)).To(BeFalse())
		})

		It("denies a disabled identity regardless of role", func() {
			identity := activeEmployee("EM001", auth.RoleAdministrator)
			identity.IsActive = false

			Expect(resolver.Resolve(ctx, identity, nil, []auth.Role{auth.RoleAdministrator})).To(BeFalse())
		})
	})
})
