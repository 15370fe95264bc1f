package report

import (
	"fmt"
	"time"

	"github.com/frahmantamala/collection-management/internal/cases"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Case ID",
	"Customer Name",
	"Customer ID Number",
	"Outstanding Amount",
	"Case Type",
	"Status",
	"Debt Group",
	"Assigned Employee",
	"Department",
	"Branch",
	"Created At",
}

const exportSheet = "Cases"

// BuildCaseWorkbook renders the case rows into a plain tabular xlsx sheet.
func BuildCaseWorkbook(list []*cases.Case) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create export sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, c := range list {
		values := []any{
			c.CaseID,
			c.CustomerName,
			c.CustomerIDNumber,
			c.OutstandingAmount,
			c.CaseType,
			cases.StatusLabels[c.Status],
			c.DebtGroup,
			c.AssignedEmployeeCode,
			c.Department,
			c.BranchCode,
			c.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// ExportFilename stamps the download with the generation time.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("cases_export_%s.xlsx", now.Format("20060102_150405"))
}
