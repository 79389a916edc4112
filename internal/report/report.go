// Package report lays out ledger rows as spreadsheet tables and writes them as xlsx.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"dayflow-backend/internal/models"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02"

// Table becomes one worksheet: a bold header row followed by data rows.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]any
}

// Write renders the tables into a single workbook, one sheet each, in order.
func Write(w io.Writer, tables ...Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, table := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", table.Sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(table.Sheet); err != nil {
			return err
		}
		if err := writeTable(f, table, header); err != nil {
			return fmt.Errorf("sheet %s: %w", table.Sheet, err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeTable(f *excelize.File, table Table, headerStyle int) error {
	headers := make([]any, len(table.Headers))
	for i, h := range table.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(table.Sheet, "A1", &headers); err != nil {
		return err
	}
	if len(table.Headers) > 0 {
		if err := f.SetRowStyle(table.Sheet, 1, 1, headerStyle); err != nil {
			return err
		}
		last, err := excelize.ColumnNumberToName(len(table.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(table.Sheet, "A", last, 18); err != nil {
			return err
		}
	}
	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(table.Sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

func AttendanceTable(records []models.Attendance) Table {
	t := Table{
		Sheet:   "Attendance",
		Headers: []string{"Date", "Employee ID", "Employee", "Status", "Check In", "Check Out", "Hours", "Remarks"},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []any{
			r.Date.Format(dateLayout),
			r.EmployeeCode,
			r.EmployeeName,
			string(r.Status),
			formatTime(r.CheckIn, "15:04"),
			formatTime(r.CheckOut, "15:04"),
			r.Hours,
			r.Remarks,
		})
	}
	return t
}

func LeaveTable(leaves []models.Leave) Table {
	t := Table{
		Sheet:   "Leaves",
		Headers: []string{"Applied", "Employee ID", "Employee", "Type", "Start", "End", "Days", "Status", "Reason", "Remarks"},
	}
	for _, l := range leaves {
		t.Rows = append(t.Rows, []any{
			l.AppliedDate.Format(dateLayout),
			l.EmployeeCode,
			l.EmployeeName,
			string(l.LeaveType),
			l.StartDate.Format(dateLayout),
			l.EndDate.Format(dateLayout),
			l.Days,
			string(l.Status),
			l.Reason,
			l.Remarks,
		})
	}
	return t
}

func PayrollTable(payrolls []models.Payroll) Table {
	t := Table{
		Sheet:   "Payroll",
		Headers: []string{"Month", "Employee ID", "Employee", "Base Salary", "Allowances", "Bonus", "Deductions", "Tax", "Net Salary", "Status", "Payment Date", "Payment Method"},
	}
	for _, p := range payrolls {
		t.Rows = append(t.Rows, []any{
			p.Month,
			p.EmployeeCode,
			p.EmployeeName,
			p.BaseSalary,
			p.Allowances,
			p.Bonus,
			p.Deductions,
			p.Tax,
			p.NetSalary,
			string(p.Status),
			formatTime(p.PaymentDate, dateLayout),
			p.PaymentMethod,
		})
	}
	return t
}

func EmployeeTable(employees []models.Employee) Table {
	t := Table{
		Sheet:   "Employees",
		Headers: []string{"Employee ID", "Name", "Email", "Role", "Department", "Position", "Status", "Join Date"},
	}
	for _, e := range employees {
		t.Rows = append(t.Rows, []any{
			e.EmployeeID,
			e.Name,
			e.Email,
			string(e.Role),
			e.Department,
			e.Position,
			string(e.Status),
			e.JoinDate.Format(dateLayout),
		})
	}
	return t
}

// SummaryTable lists label/value pairs, used for a report's totals sheet.
func SummaryTable(pairs [][2]any) Table {
	t := Table{Sheet: "Summary", Headers: []string{"Metric", "Value"}}
	for _, p := range pairs {
		t.Rows = append(t.Rows, []any{p[0], p[1]})
	}
	return t
}
