package report_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/collection-management/internal"
	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/cases"
	"github.com/frahmantamala/collection-management/internal/report"
)

type mockReportRepo struct {
	cases      []*cases.Case
	lastAccess *cases.AccessScope
	byStatus   []report.StatusSummary
	byGroup    []report.DebtGroupSummary
	listErr    error
}

func (m *mockReportRepo) ListForExport(_ context.Context, access cases.AccessScope, _ cases.ListFilter) ([]*cases.Case, error) {
	m.lastAccess = &access
	if m.listErr != nil {
		return nil, m.listErr
	}
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
	return out, nil
}

func (m *mockReportRepo) SummarizeByStatus(_ context.Context, access cases.AccessScope) ([]report.StatusSummary, error) {
	m.lastAccess = &access
	return m.byStatus, nil
}

func (m *mockReportRepo) SummarizeByDebtGroup(_ context.Context, _ cases.AccessScope) ([]report.DebtGroupSummary, error) {
	return m.byGroup, nil
}

type mockAllowlist struct {
	allowed map[string]bool
	err     error
}

func (m *mockAllowlist) IsAllowed(_ context.Context, employeeCode string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.allowed[employeeCode], nil
}

func (m *mockAllowlist) Add(_ context.Context, employeeCode, addedBy string) (*report.AllowlistEntry, error) {
	if m.allowed[employeeCode] {
		return nil, apperrors.NewConflictError("employee already allowlisted", apperrors.ErrCodeDuplicateEntry)
	}
	m.allowed[employeeCode] = true
	return &report.AllowlistEntry{EmployeeCode: employeeCode, AddedBy: addedBy}, nil
}

func (m *mockAllowlist) Remove(_ context.Context, employeeCode string) error {
	if !m.allowed[employeeCode] {
		return apperrors.NewNotFoundError("allowlist entry not found", apperrors.ErrCodeUserNotFound)
	}
	delete(m.allowed, employeeCode)
	return nil
}

func (m *mockAllowlist) List(_ context.Context) ([]*report.AllowlistEntry, error) {
	var out []*report.AllowlistEntry
	for code := range m.allowed {
		out = append(out, &report.AllowlistEntry{EmployeeCode: code})
	}
	return out, nil
}

var _ = Describe("Report Service", func() {
	var (
		repo      *mockReportRepo
		allowlist *mockAllowlist
		service   *report.Service
		ctx       context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	identity := func(code string, role auth.Role, department string, perms ...string) *auth.Identity {
		return &auth.Identity{
			EmployeeCode: code,
			Role:         role,
			Department:   department,
			BranchCode:   "6400",
			IsActive:     true,
			Permissions:  perms,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = &mockReportRepo{
			cases: []*cases.Case{
				{CaseID: "KH2024-0001", AssignedEmployeeCode: "EM001", Department: "XLTN", DebtGroup: 3, Status: cases.StatusNew, OutstandingAmount: 120_000_000},
				{CaseID: "KH2024-0002", AssignedEmployeeCode: "EM002", Department: "XLTN", DebtGroup: 4, Status: cases.StatusProcessing, OutstandingAmount: 45_000_000},
				{CaseID: "KH2024-0003", AssignedEmployeeCode: "EM003", Department: "KHDN", DebtGroup: 5, Status: cases.StatusLitigation, OutstandingAmount: 800_000_000},
			},
		}
		allowlist = &mockAllowlist{allowed: make(map[string]bool)}
		service = report.NewService(repo, allowlist, auth.NewScopeFilter(auth.DefaultScopeExceptions()), testLogger)
	})

	Describe("ExportCases", func() {
		It("denies an employee with no export permission and no allowlist entry", func() {
			_, _, err := service.ExportCases(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), cases.ListFilter{})
			Expect(err).To(Equal(apperrors.ErrExportNotAllowed))
			Expect(repo.lastAccess).To(BeNil())
		})

		It("lets an allowlisted employee export, but only their own cases", func() {
			allowlist.allowed["EM001"] = true

			workbook, filename, err := service.ExportCases(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), cases.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(workbook).NotTo(BeNil())
			Expect(filename).To(HavePrefix("cases_export_"))
			Expect(filename).To(HaveSuffix(".xlsx"))

			// allowlist opens the gate; breadth stays at OWN
			Expect(repo.lastAccess.Scope).To(Equal(auth.ScopeOwn))
		})

		It("keeps permission-derived breadth for export permissions", func() {
			id := identity("EM010", auth.RoleManager, "XLTN", auth.PermExportDepartmentData)

			_, _, err := service.ExportCases(ctx, id, cases.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastAccess.Scope).To(Equal(auth.ScopeDepartment))
			Expect(repo.lastAccess.Department).To(Equal("XLTN"))
		})

		It("fails closed when the allowlist lookup errors", func() {
			allowlist.err = fmt.Errorf("connection refused")

			_, _, err := service.ExportCases(ctx, identity("EM001", auth.RoleEmployee, "XLTN"), cases.ListFilter{})
			Expect(err).To(Equal(apperrors.ErrExportNotAllowed))
		})

		It("denies disabled identities", func() {
			id := identity("EM001", auth.RoleEmployee, "XLTN", auth.PermExportAllData)
			id.IsActive = false

			_, _, err := service.ExportCases(ctx, id, cases.ListFilter{})
			Expect(err).To(Equal(apperrors.ErrExportNotAllowed))
		})

		It("writes one row per case plus the header", func() {
			workbook, _, err := service.ExportCases(ctx, identity("EM099", auth.RoleAdministrator, "CNTT"), cases.ListFilter{})
			Expect(err).NotTo(HaveOccurred())

			rows, err := workbook.GetRows("Cases")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(4))
			Expect(rows[1][0]).To(Equal("KH2024-0001"))
		})
	})

	Describe("Summary", func() {
		BeforeEach(func() {
			repo.byStatus = []report.StatusSummary{
				{Status: cases.StatusNew, Count: 2, OutstandingTotal: 165_000_000},
				{Status: cases.StatusLitigation, Count: 1, OutstandingTotal: 800_000_000},
			}
			repo.byGroup = []report.DebtGroupSummary{
				{DebtGroup: 3, Count: 1, OutstandingTotal: 120_000_000},
				{DebtGroup: 4, Count: 1, OutstandingTotal: 45_000_000},
				{DebtGroup: 5, Count: 1, OutstandingTotal: 800_000_000},
			}
		})

		It("totals across statuses and fills display labels", func() {
			summary, err := service.Summary(ctx, identity("EM099", auth.RoleAdministrator, "CNTT"))
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.TotalCases).To(Equal(int64(3)))
			Expect(summary.OutstandingTotal).To(Equal(float64(965_000_000)))
			Expect(summary.ByStatus[0].StatusLabel).To(Equal("Mới"))
			Expect(summary.ByStatus[1].StatusLabel).To(Equal("Khởi kiện"))
			Expect(summary.Scope).To(Equal("all"))
		})

		It("resolves the view scope for the aggregation", func() {
			_, err := service.Summary(ctx, identity("EM001", auth.RoleEmployee, "XLTN"))
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastAccess.Scope).To(Equal(auth.ScopeOwn))
		})

		It("denies identities with no view scope", func() {
			_, err := service.Summary(ctx, identity("EM001", auth.Role("contractor"), "XLTN"))
			Expect(err).To(Equal(apperrors.ErrInsufficientScope))
		})
	})

	Describe("Allowlist management", func() {
		It("adds, lists and removes entries", func() {
			entry, err := service.AddAllowlistEntry(ctx, "EM001", "EM099")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.EmployeeCode).To(Equal("EM001"))

			list, err := service.ListAllowlist(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))

			Expect(service.RemoveAllowlistEntry(ctx, "EM001")).To(Succeed())
		})

		It("conflicts on a duplicate entry", func() {
			_, err := service.AddAllowlistEntry(ctx, "EM001", "EM099")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AddAllowlistEntry(ctx, "EM001", "EM099")
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeDuplicateEntry))
		})

		It("rejects a blank employee code", func() {
			_, err := service.AddAllowlistEntry(ctx, "  ", "EM099")
			Expect(err).To(HaveOccurred())
		})
	})
})
