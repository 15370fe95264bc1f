package permission_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/permission"
)

type mockPermissionRepo struct {
	permissions map[string]*permission.Permission
	users       map[string]int64
	grants      map[int64]map[int64]bool
	grantErr    error
	nextID      int64
}

func newMockPermissionRepo() *mockPermissionRepo {
	return &mockPermissionRepo{
		permissions: make(map[string]*permission.Permission),
		users:       make(map[string]int64),
		grants:      make(map[int64]map[int64]bool),
		nextID:      1,
	}
}

func (m *mockPermissionRepo) ListPermissions(_ context.Context) ([]*permission.Permission, error) {
	var out []*permission.Permission
	for _, p := range m.permissions {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPermissionRepo) GetPermissionByName(_ context.Context, name string) (*permission.Permission, error) {
	p, found := m.permissions[name]
	if !found {
		return nil, apperrors.ErrPermissionNotFound
	}
	return p, nil
}

func (m *mockPermissionRepo) CreatePermission(_ context.Context, p *permission.Permission) error {
	p.ID = m.nextID
	m.nextID++
	m.permissions[p.Name] = p
	return nil
}

func (m *mockPermissionRepo) DeletePermission(_ context.Context, id int64) error {
	for name, p := range m.permissions {
		if p.ID == id {
			delete(m.permissions, name)
			return nil
		}
	}
	return apperrors.ErrPermissionNotFound
}

func (m *mockPermissionRepo) GetUserIDByEmployeeCode(_ context.Context, employeeCode string) (int64, error) {
	id, found := m.users[employeeCode]
	if !found {
		return 0, apperrors.ErrUserNotFound
	}
	return id, nil
}

func (m *mockPermissionRepo) ListGrants(_ context.Context, employeeCode string) ([]*permission.Grant, error) {
	userID, found := m.users[employeeCode]
	if !found {
		return nil, apperrors.ErrUserNotFound
	}
	var out []*permission.Grant
	for permID := range m.grants[userID] {
		out = append(out, &permission.Grant{UserID: userID, EmployeeCode: employeeCode, PermissionID: permID})
	}
	return out, nil
}

func (m *mockPermissionRepo) HasGrant(_ context.Context, userID, permissionID int64) (bool, error) {
	return m.grants[userID][permissionID], nil
}

func (m *mockPermissionRepo) CreateGrant(_ context.Context, userID, permissionID int64, _ *int64) error {
	if m.grantErr != nil {
		return m.grantErr
	}
	if m.grants[userID] == nil {
		m.grants[userID] = make(map[int64]bool)
	}
	m.grants[userID][permissionID] = true
	return nil
}

func (m *mockPermissionRepo) DeleteGrant(_ context.Context, userID, permissionID int64) error {
	if !m.grants[userID][permissionID] {
		return apperrors.ErrPermissionNotFound
	}
	delete(m.grants[userID], permissionID)
	return nil
}

var _ = Describe("Permission Service", func() {
	var (
		repo    *mockPermissionRepo
		service *permission.Service
		ctx     context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockPermissionRepo()
		service = permission.NewService(repo, testLogger)

		repo.users["EM001"] = 10
	})

	Describe("CreatePermission", func() {
		It("creates a new permission", func() {
			p, err := service.CreatePermission(ctx, permission.CreatePermissionDTO{
				Name:        "view_all_cases",
				Description: "unrestricted case visibility",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).NotTo(BeZero())
		})

		It("conflicts on a duplicate name", func() {
			_, err := service.CreatePermission(ctx, permission.CreatePermissionDTO{Name: "view_all_cases"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreatePermission(ctx, permission.CreatePermissionDTO{Name: "view_all_cases"})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeDuplicateEntry))
		})

		It("rejects a blank name", func() {
			_, err := service.CreatePermission(ctx, permission.CreatePermissionDTO{Name: "   "})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Grant", func() {
		var permID int64

		BeforeEach(func() {
			p, err := service.CreatePermission(ctx, permission.CreatePermissionDTO{Name: "export_all_data"})
			Expect(err).NotTo(HaveOccurred())
			permID = p.ID
		})

		It("grants a named permission to a user", func() {
			err := service.Grant(ctx, "EM001", permission.GrantPermissionDTO{PermissionName: "export_all_data"}, nil)
			Expect(err).NotTo(HaveOccurred())

			grants, err := service.ListGrants(ctx, "EM001")
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(1))
			Expect(grants[0].PermissionID).To(Equal(permID))
		})

		It("conflicts on a second grant of the same permission", func() {
			Expect(service.Grant(ctx, "EM001", permission.GrantPermissionDTO{PermissionName: "export_all_data"}, nil)).To(Succeed())

			err := service.Grant(ctx, "EM001", permission.GrantPermissionDTO{PermissionName: "export_all_data"}, nil)
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeDuplicateGrant))
		})

		It("fails for an unknown user", func() {
			err := service.Grant(ctx, "EM404", permission.GrantPermissionDTO{PermissionName: "export_all_data"}, nil)
			Expect(err).To(Equal(apperrors.ErrUserNotFound))
		})

		It("fails for an unknown permission name", func() {
			err := service.Grant(ctx, "EM001", permission.GrantPermissionDTO{PermissionName: "fly_to_the_moon"}, nil)
			Expect(err).To(Equal(apperrors.ErrPermissionNotFound))
		})
	})

	Describe("Revoke", func() {
		BeforeEach(func() {
			_, err := service.CreatePermission(ctx, permission.CreatePermissionDTO{Name: "export_all_data"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Grant(ctx, "EM001", permission.GrantPermissionDTO{PermissionName: "export_all_data"}, nil)).To(Succeed())
		})

		It("removes an existing grant", func() {
			Expect(service.Revoke(ctx, "EM001", 1)).To(Succeed())

			grants, err := service.ListGrants(ctx, "EM001")
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(BeEmpty())
		})

		It("reports a missing grant", func() {
			Expect(service.Revoke(ctx, "EM001", 99)).To(Equal(apperrors.ErrPermissionNotFound))
		})
	})

	Describe("DeletePermission", func() {
		It("propagates not found", func() {
			Expect(service.DeletePermission(ctx, 42)).To(Equal(apperrors.ErrPermissionNotFound))
		})
	})
})
