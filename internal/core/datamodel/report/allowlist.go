package report

import "time"

// ExportAllowlistEntry grants report-export rights outside the
// role/permission system. Read-heavy, rarely written.
type ExportAllowlistEntry struct {
	ID           int64     `gorm:"primaryKey"`
	EmployeeCode string    `gorm:"column:employee_code;uniqueIndex;not null"`
	AddedBy      string    `gorm:"column:added_by"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (ExportAllowlistEntry) TableName() string {
	return "report_export_allowlist"
}
