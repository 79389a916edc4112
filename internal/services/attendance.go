package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/clock"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/store"
	"dayflow-backend/internal/utils"
)

const (
	msgAlreadyCheckedIn  = "Already checked in today"
	msgCheckInFirst      = "Please check in first"
	msgAlreadyCheckedOut = "Already checked out today"

	defaultMyAttendanceLimit  = 31
	defaultAllAttendanceLimit = 50
)

// dayStatusColumns are the only columns an existing day row loses on a status write.
var dayStatusColumns = []string{"status", "remarks", "employee_name", "employee_code"}

type AttendanceService struct {
	attendance store.AttendanceRepository
	employees  store.EmployeeRepository
	clock      clock.Clock
}

func NewAttendanceService(attendance store.AttendanceRepository, employees store.EmployeeRepository, clk clock.Clock) *AttendanceService {
	return &AttendanceService{attendance: attendance, employees: employees, clock: clk}
}

// Location is the zone that defines calendar days.
func (s *AttendanceService) Location() *time.Location {
	return s.clock.Now().Location()
}

func (s *AttendanceService) CheckIn(ctx context.Context, employee *models.Employee, geo *models.GeoPoint) (*models.Attendance, error) {
	now := s.clock.Now()
	day := clock.StartOfDay(now)

	record, err := s.attendance.AttendanceForDay(ctx, employee.ID, day)
	switch {
	case err == nil:
		if record.CheckIn != nil {
			return nil, apperr.Conflict(msgAlreadyCheckedIn)
		}
	case errors.Is(err, store.ErrNotFound):
		record = nil
	default:
		return nil, err
	}

	if record == nil {
		record = &models.Attendance{
			EmployeeRef:  employee.ID,
			EmployeeCode: employee.EmployeeID,
			EmployeeName: employee.Name,
			Date:         day,
		}
		record.CheckIn = &now
		record.Status = models.AttendancePresent
		record.SetCheckInLocation(geo)
		if err := s.attendance.CreateAttendance(ctx, record); err != nil {
			return nil, conflictOnDuplicate(err, msgAlreadyCheckedIn)
		}
		return record, nil
	}

	record.CheckIn = &now
	record.Status = models.AttendancePresent
	record.SetCheckInLocation(geo)
	if err := s.attendance.SaveAttendance(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// CheckOut records hours worked. Status moves to Present or Half-Day when the
// hours allow it and is otherwise left as it was.
func (s *AttendanceService) CheckOut(ctx context.Context, employee *models.Employee, geo *models.GeoPoint) (*models.Attendance, error) {
	now := s.clock.Now()
	record, err := s.attendance.AttendanceForDay(ctx, employee.ID, clock.StartOfDay(now))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Conflict(msgCheckInFirst)
	}
	if err != nil {
		return nil, err
	}
	if record.CheckIn == nil {
		return nil, apperr.Conflict(msgCheckInFirst)
	}
	if record.CheckOut != nil {
		return nil, apperr.Conflict(msgAlreadyCheckedOut)
	}

	record.CheckOut = &now
	record.Hours = models.WorkedHours(*record.CheckIn, now)
	record.Status = models.StatusForHours(record.Status, record.Hours)
	record.SetCheckOutLocation(geo)
	if err := s.attendance.SaveAttendance(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

type AttendanceQuery struct {
	From         *time.Time
	To           *time.Time
	EmployeeCode string
	Status       models.AttendanceStatus
	Page         int
	Limit        int
}

type StatusBreakdown struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Leave   int `json:"leave"`
	HalfDay int `json:"halfDay"`
}

func (b *StatusBreakdown) add(status models.AttendanceStatus) {
	switch status {
	case models.AttendancePresent:
		b.Present++
	case models.AttendanceAbsent:
		b.Absent++
	case models.AttendanceLeave:
		b.Leave++
	case models.AttendanceHalfDay:
		b.HalfDay++
	}
}

type AttendanceList struct {
	Attendance []models.Attendance `json:"attendance"`
	Stats      *StatusBreakdown    `json:"stats,omitempty"`
	Pagination utils.Pagination    `json:"pagination"`
}

// MyAttendance pages the employee's own ledger. Stats cover every record the
// employee has, not only the filtered page.
func (s *AttendanceService) MyAttendance(ctx context.Context, employee *models.Employee, q AttendanceQuery) (*AttendanceList, error) {
	p := page(q.Page, q.Limit, defaultMyAttendanceLimit)
	ref := employee.ID
	records, total, err := s.attendance.ListAttendance(ctx, store.AttendanceFilter{
		EmployeeRef: &ref,
		From:        q.From,
		To:          q.To,
		Page:        p,
	})
	if err != nil {
		return nil, err
	}
	stats, err := s.Breakdown(ctx, store.AttendanceFilter{EmployeeRef: &ref})
	if err != nil {
		return nil, err
	}
	return &AttendanceList{Attendance: records, Stats: &stats, Pagination: pagination(total, p)}, nil
}

func (s *AttendanceService) All(ctx context.Context, q AttendanceQuery) (*AttendanceList, error) {
	p := page(q.Page, q.Limit, defaultAllAttendanceLimit)
	records, total, err := s.attendance.ListAttendance(ctx, store.AttendanceFilter{
		EmployeeCode: models.NormalizeEmployeeID(q.EmployeeCode),
		Status:       q.Status,
		From:         q.From,
		To:           q.To,
		Page:         p,
	})
	if err != nil {
		return nil, err
	}
	return &AttendanceList{Attendance: records, Pagination: pagination(total, p)}, nil
}

// Breakdown counts records per status over the whole filter, ignoring paging.
func (s *AttendanceService) Breakdown(ctx context.Context, filter store.AttendanceFilter) (StatusBreakdown, error) {
	filter.Page = store.Page{}
	records, _, err := s.attendance.ListAttendance(ctx, filter)
	if err != nil {
		return StatusBreakdown{}, err
	}
	var stats StatusBreakdown
	for _, r := range records {
		stats.add(r.Status)
	}
	return stats, nil
}

type TodayStats struct {
	Total   int64 `json:"total"`
	Present int   `json:"present"`
	Absent  int64 `json:"absent"`
	Leave   int   `json:"leave"`
	HalfDay int   `json:"halfDay"`
}

type TodayAttendance struct {
	Attendance []models.Attendance `json:"attendance"`
	Stats      TodayStats          `json:"stats"`
}

// Today summarizes the current day. Absence is never stored; it is whatever
// remains of the active headcount.
func (s *AttendanceService) Today(ctx context.Context) (*TodayAttendance, error) {
	day := today(s.clock)
	records, _, err := s.attendance.ListAttendance(ctx, store.AttendanceFilter{From: &day, To: &day})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].CheckIn, records[j].CheckIn
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})

	active, _, err := s.employees.ListEmployees(ctx, store.EmployeeFilter{Status: models.EmployeeActive})
	if err != nil {
		return nil, err
	}
	headcount := make(map[uuid.UUID]bool, len(active))
	for _, e := range active {
		headcount[e.ID] = true
	}

	// Only rows of active employees count against the headcount.
	var breakdown StatusBreakdown
	for _, r := range records {
		if headcount[r.EmployeeRef] {
			breakdown.add(r.Status)
		}
	}
	stats := TodayStats{
		Total:   int64(len(active)),
		Present: breakdown.Present,
		Leave:   breakdown.Leave,
		HalfDay: breakdown.HalfDay,
	}
	if absent := stats.Total - int64(stats.Present+stats.Leave+stats.HalfDay); absent > 0 {
		stats.Absent = absent
	}
	return &TodayAttendance{Attendance: records, Stats: stats}, nil
}

// MyToday returns nil without error when nothing is recorded yet.
func (s *AttendanceService) MyToday(ctx context.Context, employee *models.Employee) (*models.Attendance, error) {
	record, err := s.attendance.AttendanceForDay(ctx, employee.ID, today(s.clock))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return record, err
}

func (s *AttendanceService) MarkLeave(ctx context.Context, employeeRef uuid.UUID, date time.Time, remarks string) (*models.Attendance, error) {
	employee, err := s.employees.EmployeeByID(ctx, employeeRef)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return s.SetDayStatus(ctx, DayStatusInput{
		EmployeeRef:  employee.ID,
		EmployeeCode: employee.EmployeeID,
		EmployeeName: employee.Name,
		Day:          date,
		Status:       models.AttendanceLeave,
		Remarks:      strings.TrimSpace(remarks),
	})
}

type DayStatusInput struct {
	EmployeeRef  uuid.UUID
	EmployeeCode string
	EmployeeName string
	Day          time.Time
	Status       models.AttendanceStatus
	Remarks      string
}

// SetDayStatus finds or creates the (employee, day) record and overwrites its
// status and remarks. Check-in data on an existing row is kept. Repeating the
// call with the same input leaves the ledger unchanged.
func (s *AttendanceService) SetDayStatus(ctx context.Context, in DayStatusInput) (*models.Attendance, error) {
	if !in.Status.Valid() {
		return nil, apperr.Validation("Invalid attendance status")
	}
	day := in.Day.In(s.Location())
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	record := &models.Attendance{
		EmployeeRef:  in.EmployeeRef,
		EmployeeCode: in.EmployeeCode,
		EmployeeName: in.EmployeeName,
		Date:         day,
		Status:       in.Status,
		Remarks:      in.Remarks,
	}
	if err := s.attendance.UpsertAttendanceDay(ctx, record, append([]string(nil), dayStatusColumns...)); err != nil {
		return nil, err
	}
	return s.attendance.AttendanceForDay(ctx, in.EmployeeRef, day)
}
