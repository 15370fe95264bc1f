package cases

import "time"

// Case is the persistence shape of a debt-collection case. Ownership is
// exclusive: exactly one assigned_employee_code at a time, changed only by
// an explicit transfer.
type Case struct {
	ID                   int64     `gorm:"primaryKey"`
	CaseID               string    `gorm:"column:case_id;uniqueIndex;not null"`
	CustomerName         string    `gorm:"column:customer_name;not null"`
	CustomerIDNumber     string    `gorm:"column:customer_id_number"`
	OutstandingAmount    float64   `gorm:"column:outstanding_amount"`
	CaseType             string    `gorm:"column:case_type"`
	Status               string    `gorm:"column:status"`
	DebtGroup            int       `gorm:"column:debt_group"`
	AssignedEmployeeCode string    `gorm:"column:assigned_employee_code;index"`
	Department           string    `gorm:"column:department"`
	BranchCode           string    `gorm:"column:branch_code"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (Case) TableName() string {
	return "cases"
}

// CaseActivity is a note or action recorded against a case.
type CaseActivity struct {
	ID           int64     `gorm:"primaryKey"`
	CaseID       string    `gorm:"column:case_id;index;not null"`
	EmployeeCode string    `gorm:"column:employee_code;not null"`
	ActivityType string    `gorm:"column:activity_type"`
	Content      string    `gorm:"column:content"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (CaseActivity) TableName() string {
	return "case_activities"
}
