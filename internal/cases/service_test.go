package cases_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/cases"
)

type mockCaseRepo struct {
	cases         map[string]*cases.Case
	activities    []*cases.Activity
	listAccess    *cases.AccessScope
	updateErr     error
	transferErr   error
	activityErr   error
	transferCalls int
}

func newMockCaseRepo() *mockCaseRepo {
	return &mockCaseRepo{cases: make(map[string]*cases.Case)}
}

func (m *mockCaseRepo) List(_ context.Context, access cases.AccessScope, _ cases.ListFilter) ([]*cases.Case, int64, error) {
	m.listAccess = &access
	var out []*cases.Case
	for _, c := range m.cases {
		switch access.Scope {
		case auth.ScopeAll:
		case auth.ScopeDepartment:
			if c.Department != access.Department {
				continue
			}
		case auth.ScopeOwn:
			if c.AssignedEmployeeCode != access.EmployeeCode {
				continue
			}
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (m *mockCaseRepo) GetByCaseID(_ context.Context, caseID string) (*cases.Case, error) {
	c, found := m.cases[caseID]
	if !found {
		return nil, apperrors.ErrCaseNotFound
	}
	return c, nil
}

func (m *mockCaseRepo) UpdateStatus(_ context.Context, caseID, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.cases[caseID].Status = status
	return nil
}

func (m *mockCaseRepo) Transfer(_ context.Context, caseID, toEmployeeCode, toDepartment, toBranchCode string) error {
	if m.transferErr != nil {
		return m.transferErr
	}
	m.transferCalls++
	c := m.cases[caseID]
	c.AssignedEmployeeCode = toEmployeeCode
	c.Department = toDepartment
	c.BranchCode = toBranchCode
	return nil
}

func (m *mockCaseRepo) CreateActivity(_ context.Context, activity *cases.Activity) error {
	if m.activityErr != nil {
		return m.activityErr
	}
	m.activities = append(m.activities, activity)
	return nil
}

func (m *mockCaseRepo) ListActivities(_ context.Context, caseID string) ([]*cases.Activity, error) {
	var out []*cases.Activity
	for _, a := range m.activities {
		if a.CaseID == caseID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockAccessChecker struct {
	allowed map[string]bool
	err     error
}

func (m *mockAccessChecker) CanAccess(_ context.Context, caseID string, identity *auth.Identity) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.allowed[caseID+"|"+identity.EmployeeCode], nil
}

type mockDirectory struct {
	entries map[string]*cases.DirectoryEntry
}

func (m *mockDirectory) GetByEmployeeCode(_ context.Context, employeeCode string) (*cases.DirectoryEntry, error) {
	e, found := m.entries[employeeCode]
	if !found {
		return nil, apperrors.ErrUserNotFound
	}
	return e, nil
}

var _ = Describe("Cases Service", func() {
	var (
		repo      *mockCaseRepo
		access    *mockAccessChecker
		directory *mockDirectory
		service   *cases.Service
		ctx       context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	identity := func(code string, role auth.Role, department string) *auth.Identity {
		return &auth.Identity{
			EmployeeCode: code,
			Role:         role,
			Department:   department,
			BranchCode:   "6400",
			IsActive:     true,
		}
	}

	seedCase := func(caseID, owner, department, status string) {
		repo.cases[caseID] = &cases.Case{
			CaseID:               caseID,
			CustomerName:         "Nguyễn Văn A",
			Status:               status,
			DebtGroup:            3,
			AssignedEmployeeCode: owner,
			Department:           department,
			BranchCode:           "6400",
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockCaseRepo()
		access = &mockAccessChecker{allowed: make(map[string]bool)}
		directory = &mockDirectory{entries: make(map[string]*cases.DirectoryEntry)}
		service = cases.NewService(repo, auth.NewScopeFilter(auth.DefaultScopeExceptions()), access, directory, testLogger)

		seedCase("KH2024-0001", "EM001", "XLTN", cases.StatusNew)
		seedCase("KH2024-0002", "EM002", "KHDN", cases.StatusProcessing)
	})

	Describe("List", func() {
		It("passes the resolved scope to the repository", func() {
			list, total, err := service.List(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), cases.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(list[0].CaseID).To(Equal("KH2024-0001"))
			Expect(repo.listAccess.Scope).To(Equal(auth.ScopeOwn))
		})

		It("fills the display label for each status", func() {
			list, _, err := service.List(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), cases.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(list[0].StatusLabel).To(Equal("Mới"))
		})

		It("rejects a debt group outside the visible set", func() {
			_, _, err := service.List(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), cases.ListFilter{DebtGroup: 2})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidDebtGroup))
		})

		It("denies identities that resolve to no scope", func() {
			id := identity("EM001", auth.Role("contractor"), "XLTN")
			_, _, err := service.List(ctx, id, cases.ListFilter{})
			Expect(err).To(Equal(apperrors.ErrInsufficientScope))
		})
	})

	Describe("Get", func() {
		It("allows a case covered by scope", func() {
			c, err := service.Get(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.StatusLabel).To(Equal("Mới"))
		})

		It("allows a delegated case outside scope", func() {
			access.allowed["KH2024-0002|EM001"] = true

			c, err := service.Get(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0002")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.CaseID).To(Equal("KH2024-0002"))
		})

		It("denies an uncovered, undelegated case", func() {
			_, err := service.Get(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0002")
			Expect(err).To(Equal(apperrors.ErrUnauthorizedAccess))
		})

		It("lets a manager read across their department but not others", func() {
			seedCase("KH2024-0003", "EM005", "XLTN", cases.StatusProcessing)

			_, err := service.Get(ctx, identity("EM010", auth.RoleManager, "XLTN"), "KH2024-0003")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Get(ctx, identity("EM010", auth.RoleManager, "XLTN"), "KH2024-0002")
			Expect(err).To(Equal(apperrors.ErrUnauthorizedAccess))
		})

		It("propagates not found", func() {
			_, err := service.Get(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-9999")
			Expect(err).To(Equal(apperrors.ErrCaseNotFound))
		})
	})

	Describe("UpdateStatus", func() {
		It("requires per-case access even when scope covers the case", func() {
			// manager's department scope covers the case, but mutation needs
			// ownership or a delegation
			err := service.UpdateStatus(ctx, identity("EM010", auth.RoleManager, "XLTN"), "KH2024-0001",
				cases.UpdateStatusDTO{Status: cases.StatusProcessing})
			Expect(err).To(Equal(apperrors.ErrUnauthorizedAccess))
			Expect(repo.cases["KH2024-0001"].Status).To(Equal(cases.StatusNew))
		})

		It("updates and records a status_change activity", func() {
			access.allowed["KH2024-0001|EM001"] = true

			err := service.UpdateStatus(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001",
				cases.UpdateStatusDTO{Status: cases.StatusCommitted, Note: "khách hứa trả trước 15/09"})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.cases["KH2024-0001"].Status).To(Equal(cases.StatusCommitted))

			Expect(repo.activities).To(HaveLen(1))
			Expect(repo.activities[0].ActivityType).To(Equal(cases.ActivityTypeStatusChange))
			Expect(repo.activities[0].Content).To(ContainSubstring("khách hứa trả trước 15/09"))
		})

		It("rejects an unknown status", func() {
			access.allowed["KH2024-0001|EM001"] = true

			err := service.UpdateStatus(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001",
				cases.UpdateStatusDTO{Status: "archived"})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidStatus))
		})

		It("does not swallow a failed activity write into the update result", func() {
			access.allowed["KH2024-0001|EM001"] = true
			repo.activityErr = apperrors.NewInternalError("activities table gone", nil)

			err := service.UpdateStatus(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001",
				cases.UpdateStatusDTO{Status: cases.StatusProcessing})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.cases["KH2024-0001"].Status).To(Equal(cases.StatusProcessing))
		})
	})

	Describe("Transfer", func() {
		BeforeEach(func() {
			directory.entries["EM002"] = &cases.DirectoryEntry{
				EmployeeCode: "EM002", Department: "KHDN", BranchCode: "6400", IsActive: true,
			}
		})

		It("moves the case to the new owner's department and branch", func() {
			access.allowed["KH2024-0001|EM001"] = true

			err := service.Transfer(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001",
				cases.TransferDTO{ToEmployeeCode: "EM002"})
			Expect(err).NotTo(HaveOccurred())

			c := repo.cases["KH2024-0001"]
			Expect(c.AssignedEmployeeCode).To(Equal("EM002"))
			Expect(c.Department).To(Equal("KHDN"))

			Expect(repo.activities).To(HaveLen(1))
			Expect(repo.activities[0].ActivityType).To(Equal(cases.ActivityTypeTransfer))
		})

		It("rejects a disabled target", func() {
			access.allowed["KH2024-0001|EM001"] = true
			directory.entries["EM002"].IsActive = false

			err := service.Transfer(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001",
				cases.TransferDTO{ToEmployeeCode: "EM002"})
			Expect(err).To(HaveOccurred())
			Expect(repo.transferCalls).To(BeZero())
		})

		It("rejects transferring to the current owner", func() {
			access.allowed["KH2024-0001|EM001"] = true
			directory.entries["EM001"] = &cases.DirectoryEntry{
				EmployeeCode: "EM001", Department: "XLTN", BranchCode: "6400", IsActive: true,
			}

			err := service.Transfer(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001",
				cases.TransferDTO{ToEmployeeCode: "EM001"})
			Expect(err).To(HaveOccurred())
			Expect(repo.transferCalls).To(BeZero())
		})

		It("rejects an unknown target", func() {
			access.allowed["KH2024-0001|EM001"] = true

			err := service.Transfer(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001",
				cases.TransferDTO{ToEmployeeCode: "EM404"})
			Expect(err).To(Equal(apperrors.ErrUserNotFound))
		})
	})

	Describe("Activities", func() {
		It("creates a note for an accessible case", func() {
			access.allowed["KH2024-0001|EM001"] = true

			activity, err := service.CreateActivity(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001",
				cases.CreateActivityDTO{Content: "gọi điện lần 2, không nghe máy"})
			Expect(err).NotTo(HaveOccurred())
			Expect(activity.ActivityType).To(Equal(cases.ActivityTypeNote))
			Expect(activity.EmployeeCode).To(Equal("EM001"))
		})

		It("refuses a note on an inaccessible case even when scope covers it", func() {
			_, err := service.CreateActivity(ctx, identity("EM010", auth.RoleManager, "XLTN"), "KH2024-0001",
				cases.CreateActivityDTO{Content: "ghi chú"})
			Expect(err).To(Equal(apperrors.ErrUnauthorizedAccess))
		})

		It("lists activities under the same visibility rule as Get", func() {
			access.allowed["KH2024-0001|EM001"] = true
			_, err := service.CreateActivity(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001",
				cases.CreateActivityDTO{Content: "đã gửi thông báo"})
			Expect(err).NotTo(HaveOccurred())

			list, err := service.ListActivities(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), "KH2024-0001")
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))

			_, err = service.ListActivities(ctx, identity("EM003", auth.RoleEmployee, "KHDN"), "KH2024-0001")
			Expect(err).To(Equal(apperrors.ErrUnauthorizedAccess))
		})
	})
})
