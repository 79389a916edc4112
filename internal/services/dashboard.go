package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/clock"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/report"
	"dayflow-backend/internal/store"
	"dayflow-backend/internal/utils"
)

const (
	dashboardNotifications = 5
	dashboardRecentLeaves  = 5
	attendanceTrendMonths  = 6
)

type DashboardService struct {
	store         store.Store
	attendance    *AttendanceService
	leaves        *LeaveService
	payroll       *PayrollService
	employees     *EmployeeService
	notifications *NotificationService
	clock         clock.Clock
}

func NewDashboardService(
	st store.Store,
	attendance *AttendanceService,
	leaves *LeaveService,
	payroll *PayrollService,
	employees *EmployeeService,
	notifications *NotificationService,
	clk clock.Clock,
) *DashboardService {
	return &DashboardService{
		store:         st,
		attendance:    attendance,
		leaves:        leaves,
		payroll:       payroll,
		employees:     employees,
		notifications: notifications,
		clock:         clk,
	}
}

func (s *DashboardService) Location() *time.Location {
	return s.clock.Now().Location()
}

type ProfileSummary struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar"`
}

type LeaveSummary struct {
	LeaveBalance
	Pending int64 `json:"pending"`
}

type PayrollSnapshot struct {
	Month     string               `json:"month"`
	NetSalary float64              `json:"netSalary"`
	Status    models.PayrollStatus `json:"status"`
}

type EmployeeDashboardStats struct {
	Attendance StatusBreakdown  `json:"attendance"`
	Leaves     LeaveSummary     `json:"leaves"`
	Payroll    *PayrollSnapshot `json:"payroll"`
}

type EmployeeDashboard struct {
	User            ProfileSummary         `json:"user"`
	TodayAttendance *models.Attendance     `json:"todayAttendance"`
	Stats           EmployeeDashboardStats `json:"stats"`
	Notifications   []models.Notification  `json:"notifications"`
}

func (s *DashboardService) Employee(ctx context.Context, employee *models.Employee) (*EmployeeDashboard, error) {
	todayRecord, err := s.attendance.MyToday(ctx, employee)
	if err != nil {
		return nil, err
	}

	monthStart := clock.StartOfMonth(s.clock.Now())
	ref := employee.ID
	monthStats, err := s.attendance.Breakdown(ctx, store.AttendanceFilter{EmployeeRef: &ref, From: &monthStart})
	if err != nil {
		return nil, err
	}

	balance, err := s.leaves.Balance(ctx, employee.ID)
	if err != nil {
		return nil, err
	}
	pending, err := s.leaves.PendingCount(ctx, &ref)
	if err != nil {
		return nil, err
	}

	notifications, err := s.notifications.Recent(ctx, employee.ID, dashboardNotifications)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	current, err := s.payroll.CurrentMonth(ctx, employee.ID)
	if err != nil {
		return nil, err
	}
	var snapshot *PayrollSnapshot
	if current != nil {
		snapshot = &PayrollSnapshot{Month: current.Month, NetSalary: current.NetSalary, Status: current.Status}
	}

	return &EmployeeDashboard{
		User: ProfileSummary{
			Name:       employee.Name,
			EmployeeID: employee.EmployeeID,
			Department: employee.Department,
			Position:   employee.Position,
			Email:      employee.Email,
			Avatar:     employee.Avatar,
		},
		TodayAttendance: todayRecord,
		Stats: EmployeeDashboardStats{
			Attendance: monthStats,
			Leaves:     LeaveSummary{LeaveBalance: balance, Pending: pending},
			Payroll:    snapshot,
		},
		Notifications: notifications,
	}, nil
}

type AdminEmployeeCounts struct {
	Total   int64 `json:"total"`
	Active  int64 `json:"active"`
	OnLeave int64 `json:"onLeave"`
}

type AdminTodayAttendance struct {
	Total   int64 `json:"total"`
	Present int   `json:"present"`
	Absent  int64 `json:"absent"`
	Leave   int   `json:"leave"`
	HalfDay int   `json:"halfDay"`
}

type TrendPoint struct {
	Year   int                     `json:"year"`
	Month  int                     `json:"month"`
	Status models.AttendanceStatus `json:"status"`
	Count  int                     `json:"count"`
}

type AdminAttendance struct {
	Today AdminTodayAttendance `json:"today"`
	Trend []TrendPoint         `json:"trend"`
}

type AdminLeaves struct {
	Pending int64          `json:"pending"`
	Recent  []models.Leave `json:"recent"`
}

type AdminDashboard struct {
	Employees   AdminEmployeeCounts    `json:"employees"`
	Attendance  AdminAttendance        `json:"attendance"`
	Leaves      AdminLeaves            `json:"leaves"`
	Departments []DepartmentCount      `json:"departments"`
	Payroll     []PayrollStatusSummary `json:"payroll"`
}

func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	counts, err := s.employees.Counts(ctx)
	if err != nil {
		return nil, err
	}
	today, err := s.attendance.Today(ctx)
	if err != nil {
		return nil, err
	}
	trend, err := s.attendanceTrend(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.leaves.PendingCount(ctx, nil)
	if err != nil {
		return nil, err
	}
	recent, err := s.leaves.Recent(ctx, dashboardRecentLeaves)
	if err != nil {
		return nil, err
	}
	departments, err := s.employees.DepartmentCounts(ctx)
	if err != nil {
		return nil, err
	}
	payroll, err := s.payroll.MonthSummary(ctx, utils.MonthLabel(s.clock.Now()))
	if err != nil {
		return nil, err
	}

	return &AdminDashboard{
		Employees: AdminEmployeeCounts{Total: counts.Total, Active: counts.Active, OnLeave: counts.OnLeave},
		Attendance: AdminAttendance{
			Today: AdminTodayAttendance{
				Total:   today.Stats.Total,
				Present: today.Stats.Present,
				Absent:  today.Stats.Absent,
				Leave:   today.Stats.Leave,
				HalfDay: today.Stats.HalfDay,
			},
			Trend: trend,
		},
		Leaves:      AdminLeaves{Pending: pending, Recent: recent},
		Departments: departments,
		Payroll:     payroll,
	}, nil
}

// attendanceTrend counts records per (year, month, status) from six months ago
// to now, oldest month first.
func (s *DashboardService) attendanceTrend(ctx context.Context) ([]TrendPoint, error) {
	since := s.clock.Now().AddDate(0, -attendanceTrendMonths, 0)
	records, _, err := s.store.ListAttendance(ctx, store.AttendanceFilter{From: &since})
	if err != nil {
		return nil, err
	}
	type key struct {
		year   int
		month  int
		status models.AttendanceStatus
	}
	tally := map[key]int{}
	for _, r := range records {
		tally[key{year: r.Date.Year(), month: int(r.Date.Month()), status: r.Status}]++
	}
	points := make([]TrendPoint, 0, len(tally))
	for k, count := range tally {
		points = append(points, TrendPoint{Year: k.year, Month: k.month, Status: k.status, Count: count})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		if points[i].Month != points[j].Month {
			return points[i].Month < points[j].Month
		}
		return points[i].Status < points[j].Status
	})
	return points, nil
}

const (
	ReportAttendance = "attendance"
	ReportLeave      = "leave"
	ReportPayroll    = "payroll"
	ReportEmployee   = "employee"
)

type ReportQuery struct {
	Type         string
	Start        *time.Time
	End          *time.Time
	EmployeeCode string
	Department   string
}

type ReportPeriod struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

type AttendanceSummary struct {
	Status     models.AttendanceStatus `json:"status"`
	Count      int                     `json:"count"`
	TotalHours float64                 `json:"totalHours"`
}

type LeaveTypeSummary struct {
	LeaveType models.LeaveType `json:"leaveType"`
	Count     int              `json:"count"`
	TotalDays float64          `json:"totalDays"`
}

type Report struct {
	Type       string        `json:"type"`
	Period     *ReportPeriod `json:"period,omitempty"`
	Department string        `json:"department,omitempty"`
	Data       any           `json:"data"`
	Summary    any           `json:"summary"`

	tables []report.Table
}

// Tables is the spreadsheet rendering of the report: its rows, then its summary.
func (r *Report) Tables() []report.Table {
	return r.tables
}

func (s *DashboardService) Report(ctx context.Context, q ReportQuery) (*Report, error) {
	switch strings.ToLower(strings.TrimSpace(q.Type)) {
	case ReportAttendance:
		return s.attendanceReport(ctx, q)
	case ReportLeave:
		return s.leaveReport(ctx, q)
	case ReportPayroll:
		return s.payrollReport(ctx, q)
	case ReportEmployee:
		return s.employeeReport(ctx, q)
	}
	return nil, apperr.Validation("Invalid report type")
}

// endOfRange widens a date-only upper bound to cover that whole day for timestamp columns.
func endOfRange(end *time.Time) *time.Time {
	if end == nil {
		return nil
	}
	e := utils.EndOfDay(*end)
	return &e
}

func (s *DashboardService) attendanceReport(ctx context.Context, q ReportQuery) (*Report, error) {
	records, _, err := s.store.ListAttendance(ctx, store.AttendanceFilter{
		EmployeeCode: models.NormalizeEmployeeID(q.EmployeeCode),
		From:         q.Start,
		To:           q.End,
	})
	if err != nil {
		return nil, err
	}
	order := []models.AttendanceStatus{models.AttendancePresent, models.AttendanceHalfDay, models.AttendanceLeave, models.AttendanceAbsent}
	byStatus := map[models.AttendanceStatus]*AttendanceSummary{}
	for _, st := range order {
		byStatus[st] = &AttendanceSummary{Status: st}
	}
	for _, r := range records {
		if sum, ok := byStatus[r.Status]; ok {
			sum.Count++
			sum.TotalHours += r.Hours
		}
	}
	summary := []AttendanceSummary{}
	pairs := [][2]any{}
	for _, st := range order {
		if sum := byStatus[st]; sum.Count > 0 {
			summary = append(summary, *sum)
			pairs = append(pairs, [2]any{string(st), sum.Count}, [2]any{string(st) + " hours", sum.TotalHours})
		}
	}
	if records == nil {
		records = []models.Attendance{}
	}
	return &Report{
		Type:    ReportAttendance,
		Period:  &ReportPeriod{StartDate: q.Start, EndDate: q.End},
		Data:    records,
		Summary: summary,
		tables:  []report.Table{report.AttendanceTable(records), report.SummaryTable(pairs)},
	}, nil
}

func (s *DashboardService) leaveReport(ctx context.Context, q ReportQuery) (*Report, error) {
	leaves, _, err := s.store.ListLeaves(ctx, store.LeaveFilter{
		EmployeeCode: models.NormalizeEmployeeID(q.EmployeeCode),
		AppliedFrom:  q.Start,
		AppliedTo:    endOfRange(q.End),
	})
	if err != nil {
		return nil, err
	}
	byType := map[models.LeaveType]*LeaveTypeSummary{}
	for _, l := range leaves {
		sum, ok := byType[l.LeaveType]
		if !ok {
			sum = &LeaveTypeSummary{LeaveType: l.LeaveType}
			byType[l.LeaveType] = sum
		}
		sum.Count++
		sum.TotalDays += l.Days
	}
	summary := make([]LeaveTypeSummary, 0, len(byType))
	for _, sum := range byType {
		summary = append(summary, *sum)
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].LeaveType < summary[j].LeaveType })
	pairs := [][2]any{}
	for _, sum := range summary {
		pairs = append(pairs, [2]any{string(sum.LeaveType) + " requests", sum.Count}, [2]any{string(sum.LeaveType) + " days", sum.TotalDays})
	}
	if leaves == nil {
		leaves = []models.Leave{}
	}
	return &Report{
		Type:    ReportLeave,
		Period:  &ReportPeriod{StartDate: q.Start, EndDate: q.End},
		Data:    leaves,
		Summary: summary,
		tables:  []report.Table{report.LeaveTable(leaves), report.SummaryTable(pairs)},
	}, nil
}

func (s *DashboardService) payrollReport(ctx context.Context, q ReportQuery) (*Report, error) {
	payrolls, _, err := s.store.ListPayrolls(ctx, store.PayrollFilter{
		CreatedFrom: q.Start,
		CreatedTo:   endOfRange(q.End),
	})
	if err != nil {
		return nil, err
	}
	department := strings.TrimSpace(q.Department)
	if department != "" {
		members, _, err := s.store.ListEmployees(ctx, store.EmployeeFilter{Department: department})
		if err != nil {
			return nil, err
		}
		inDepartment := map[uuid.UUID]bool{}
		for _, e := range members {
			inDepartment[e.ID] = true
		}
		filtered := payrolls[:0]
		for _, p := range payrolls {
			if inDepartment[p.EmployeeRef] {
				filtered = append(filtered, p)
			}
		}
		payrolls = filtered
	}
	if payrolls == nil {
		payrolls = []models.Payroll{}
	}
	totals := totalsOf(payrolls)
	return &Report{
		Type:       ReportPayroll,
		Period:     &ReportPeriod{StartDate: q.Start, EndDate: q.End},
		Department: department,
		Data:       payrolls,
		Summary:    totals,
		tables: []report.Table{report.PayrollTable(payrolls), report.SummaryTable([][2]any{
			{"Employees", totals.TotalEmployees},
			{"Total payroll", totals.TotalPayroll},
			{"Average salary", totals.AvgSalary},
		})},
	}, nil
}

func (s *DashboardService) employeeReport(ctx context.Context, q ReportQuery) (*Report, error) {
	department := strings.TrimSpace(q.Department)
	employees, _, err := s.store.ListEmployees(ctx, store.EmployeeFilter{Department: department})
	if err != nil {
		return nil, err
	}
	counts := EmployeeCounts{Total: int64(len(employees))}
	for _, e := range employees {
		switch e.Status {
		case models.EmployeeActive:
			counts.Active++
		case models.EmployeeInactive:
			counts.Inactive++
		case models.EmployeeOnLeave:
			counts.OnLeave++
		}
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	return &Report{
		Type:       ReportEmployee,
		Department: department,
		Data:       employees,
		Summary:    counts,
		tables: []report.Table{report.EmployeeTable(employees), report.SummaryTable([][2]any{
			{"Total", counts.Total},
			{"Active", counts.Active},
			{"Inactive", counts.Inactive},
			{"On leave", counts.OnLeave},
		})},
	}, nil
}
