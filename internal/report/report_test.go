package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"dayflow-backend/internal/models"
)

func TestWriteProducesOneSheetPerTable(t *testing.T) {
	checkIn := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	records := []models.Attendance{{
		Date:         time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		EmployeeCode: "EMP100",
		EmployeeName: "Ada",
		Status:       models.AttendancePresent,
		CheckIn:      &checkIn,
		Hours:        8.5,
	}}

	var buf bytes.Buffer
	err := Write(&buf, AttendanceTable(records), SummaryTable([][2]any{{"Present", 1}}))
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Attendance" || sheets[1] != "Summary" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	rows, err := f.GetRows("Attendance")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[0][0] != "Date" || rows[1][1] != "EMP100" || rows[1][3] != "Present" || rows[1][4] != "09:00" {
		t.Fatalf("unexpected content %v", rows)
	}
}

func TestWriteEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, EmployeeTable(nil)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected a workbook")
	}
}
