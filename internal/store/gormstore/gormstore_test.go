package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"dayflow-backend/internal/db"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return New(database)
}

func createEmployee(t *testing.T, s *Store, code string, created time.Time) *models.Employee {
	t.Helper()
	e := &models.Employee{
		EmployeeID:   code,
		Email:        code + "@example.com",
		Name:         "Name " + code,
		PasswordHash: "hash",
		Role:         models.RoleEmployee,
		Status:       models.EmployeeActive,
		Department:   "Engineering",
		CreatedAt:    created,
	}
	if err := s.CreateEmployee(context.Background(), e); err != nil {
		t.Fatalf("create %s: %v", code, err)
	}
	return e
}

func TestCreateEmployeeDuplicateIsTranslated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	first := createEmployee(t, s, "EMP001", time.Now())
	if first.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}

	sameEmail := &models.Employee{EmployeeID: "EMP002", Email: first.Email, Name: "B", PasswordHash: "hash"}
	if err := s.CreateEmployee(ctx, sameEmail); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for email, got %v", err)
	}
	sameCode := &models.Employee{EmployeeID: "EMP001", Email: "other@example.com", Name: "B", PasswordHash: "hash"}
	if err := s.CreateEmployee(ctx, sameCode); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for code, got %v", err)
	}
	if _, err := s.EmployeeByID(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveEmployeeLeavesRefreshTokenAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := createEmployee(t, s, "EMP001", time.Now())
	if err := s.SetRefreshToken(ctx, e.ID, "token-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	stale, _ := s.EmployeeByID(ctx, e.ID)
	if stale.RefreshToken != "token-1" {
		t.Fatalf("token not stored: %q", stale.RefreshToken)
	}
	if err := s.SetRefreshToken(ctx, e.ID, ""); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	stale.Name = "Renamed"
	if err := s.SaveEmployee(ctx, stale); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := s.EmployeeByID(ctx, e.ID)
	if got.Name != "Renamed" {
		t.Fatalf("save lost the name change: %q", got.Name)
	}
	if got.RefreshToken != "" {
		t.Fatalf("stale save brought back refresh token %q", got.RefreshToken)
	}
	if err := s.SetRefreshToken(ctx, uuid.New(), "x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListEmployeesCountsBeforePaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	for i, code := range []string{"EMP001", "EMP002", "EMP003"} {
		createEmployee(t, s, code, base.Add(time.Duration(i)*time.Minute))
	}

	page, total, err := s.ListEmployees(ctx, store.EmployeeFilter{Page: store.Page{Page: 1, Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(page) != 2 || page[0].EmployeeID != "EMP003" {
		t.Fatalf("page: total=%d page=%+v", total, page)
	}
	last, _, _ := s.ListEmployees(ctx, store.EmployeeFilter{Page: store.Page{Page: 2, Limit: 2}})
	if len(last) != 1 || last[0].EmployeeID != "EMP001" {
		t.Fatalf("second page: %+v", last)
	}

	found, total, _ := s.ListEmployees(ctx, store.EmployeeFilter{Search: "emp002", Status: models.EmployeeActive})
	if total != 1 || len(found) != 1 || found[0].EmployeeID != "EMP002" {
		t.Fatalf("search: total=%d found=%+v", total, found)
	}
}

func TestAttendanceKeepsOneRowPerDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := createEmployee(t, s, "EMP001", time.Now())
	day := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	checkIn := day.Add(9 * time.Hour)

	first := &models.Attendance{EmployeeRef: e.ID, EmployeeCode: e.EmployeeID, EmployeeName: e.Name, Date: day, CheckIn: &checkIn, Status: models.AttendancePresent, Hours: 8.5}
	if err := s.CreateAttendance(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	again := &models.Attendance{EmployeeRef: e.ID, EmployeeCode: e.EmployeeID, EmployeeName: e.Name, Date: day, Status: models.AttendancePresent}
	if err := s.CreateAttendance(ctx, again); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	leave := &models.Attendance{EmployeeRef: e.ID, EmployeeCode: e.EmployeeID, EmployeeName: e.Name, Date: day, Status: models.AttendanceLeave, Remarks: "sick leave"}
	for i := 0; i < 2; i++ {
		if err := s.UpsertAttendanceDay(ctx, leave, []string{"status", "remarks"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	rows, total, err := s.ListAttendance(ctx, store.AttendanceFilter{EmployeeRef: &e.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected one row for the day, got %d", total)
	}
	row := rows[0]
	if row.Status != models.AttendanceLeave || row.Remarks != "sick leave" {
		t.Fatalf("upsert did not overwrite: %+v", row)
	}
	if row.CheckIn == nil || !row.CheckIn.Equal(checkIn) || row.Hours != 8.5 {
		t.Fatalf("upsert touched columns it was not given: %+v", row)
	}

	other := day.AddDate(0, 0, 1)
	fresh := &models.Attendance{EmployeeRef: e.ID, EmployeeCode: e.EmployeeID, EmployeeName: e.Name, Date: other, Status: models.AttendanceLeave}
	if err := s.UpsertAttendanceDay(ctx, fresh, []string{"status", "remarks"}); err != nil {
		t.Fatalf("upsert new day: %v", err)
	}
	got, err := s.AttendanceForDay(ctx, e.ID, other)
	if err != nil || got.Status != models.AttendanceLeave {
		t.Fatalf("new day not inserted: %v %+v", err, got)
	}
}

func TestListAttendanceRangeIsInclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := createEmployee(t, s, "EMP001", time.Now())
	for d := 1; d <= 5; d++ {
		record := &models.Attendance{EmployeeRef: e.ID, EmployeeCode: e.EmployeeID, EmployeeName: e.Name, Date: time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC), Status: models.AttendancePresent}
		if err := s.CreateAttendance(ctx, record); err != nil {
			t.Fatalf("create day %d: %v", d, err)
		}
	}
	from := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	rows, total, err := s.ListAttendance(ctx, store.AttendanceFilter{From: &from, To: &to, Page: store.Page{Page: 1, Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Fatalf("expected 3 matches and a page of 2, got total=%d len=%d", total, len(rows))
	}
	if rows[0].Date.Day() != 4 || rows[1].Date.Day() != 3 {
		t.Fatalf("expected day desc order, got %v, %v", rows[0].Date, rows[1].Date)
	}
}

func TestPayrollMonthIsUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := createEmployee(t, s, "EMP001", time.Now())
	p := &models.Payroll{EmployeeRef: e.ID, EmployeeCode: e.EmployeeID, EmployeeName: e.Name, Month: "January 2026", BaseSalary: 1000, Tax: 100, NetSalary: 99999}
	if err := s.CreatePayroll(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	stored, err := s.PayrollForMonth(ctx, e.ID, "January 2026")
	if err != nil || stored.NetSalary != 900 {
		t.Fatalf("net salary not derived on save: %v %+v", err, stored)
	}

	dup := &models.Payroll{EmployeeRef: e.ID, EmployeeCode: e.EmployeeID, EmployeeName: e.Name, Month: "January 2026", BaseSalary: 1000}
	if err := s.CreatePayroll(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	next := &models.Payroll{EmployeeRef: e.ID, EmployeeCode: e.EmployeeID, EmployeeName: e.Name, Month: "February 2026", BaseSalary: 1000}
	if err := s.CreatePayroll(ctx, next); err != nil {
		t.Fatalf("another month should be allowed: %v", err)
	}
	_, total, _ := s.ListPayrolls(ctx, store.PayrollFilter{EmployeeRef: &e.ID})
	if total != 2 {
		t.Fatalf("expected 2 payrolls, got %d", total)
	}
}

func TestDeleteLeave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := createEmployee(t, s, "EMP001", time.Now())
	leave := &models.Leave{
		EmployeeRef:  e.ID,
		EmployeeCode: e.EmployeeID,
		EmployeeName: e.Name,
		LeaveType:    models.LeaveSick,
		StartDate:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		Days:         2,
		Reason:       "Flu, need rest",
		Status:       models.LeavePending,
		AppliedDate:  time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC),
	}
	if err := s.CreateLeave(ctx, leave); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeleteLeave(ctx, leave.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.LeaveByID(ctx, leave.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteLeave(ctx, leave.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
