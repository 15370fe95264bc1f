package report

import "time"

// AllowlistEntry grants "may export at all" outside the role/permission
// system. Breadth of the export is still decided by the scope filter.
type AllowlistEntry struct {
	ID           int64     `json:"id"`
	EmployeeCode string    `json:"employee_code"`
	AddedBy      string    `json:"added_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StatusSummary aggregates visible cases by lifecycle state.
type StatusSummary struct {
	Status           string  `json:"status"`
	StatusLabel      string  `json:"status_label,omitempty"`
	Count            int64   `json:"count"`
	OutstandingTotal float64 `json:"outstanding_total"`
}

// DebtGroupSummary aggregates visible cases by risk bucket.
type DebtGroupSummary struct {
	DebtGroup        int     `json:"debt_group"`
	Count            int64   `json:"count"`
	OutstandingTotal float64 `json:"outstanding_total"`
}

type Summary struct {
	TotalCases       int64              `json:"total_cases"`
	OutstandingTotal float64            `json:"outstanding_total"`
	ByStatus         []StatusSummary    `json:"by_status"`
	ByDebtGroup      []DebtGroupSummary `json:"by_debt_group"`
	GeneratedAt      time.Time          `json:"generated_at"`
	Scope            string             `json:"scope"`
}
