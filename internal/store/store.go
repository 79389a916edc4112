// Package store declares the ledgers the services read and write.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dayflow-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Page selects a window of results. A zero Limit returns everything.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	if p.Page < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

type EmployeeFilter struct {
	IDs        []uuid.UUID
	Search     string
	Department string
	Status     models.EmployeeStatus
	Page
}

type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	// SaveEmployee never changes the stored refresh token; use SetRefreshToken.
	SaveEmployee(ctx context.Context, employee *models.Employee) error
	EmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	EmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
	EmployeeByCode(ctx context.Context, code string) (*models.Employee, error)
	// ListEmployees returns the page sorted by creation time, newest first, and the total match count.
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]models.Employee, int64, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
}

type AttendanceFilter struct {
	EmployeeRef  *uuid.UUID
	EmployeeCode string
	Status       models.AttendanceStatus
	From         *time.Time
	To           *time.Time
	Page
}

type AttendanceRepository interface {
	AttendanceForDay(ctx context.Context, employeeRef uuid.UUID, day time.Time) (*models.Attendance, error)
	CreateAttendance(ctx context.Context, record *models.Attendance) error
	SaveAttendance(ctx context.Context, record *models.Attendance) error
	// UpsertAttendanceDay inserts record, or on an existing (employee, day) row
	// overwrites only the named columns. It is atomic for that single row.
	UpsertAttendanceDay(ctx context.Context, record *models.Attendance, columns []string) error
	// ListAttendance sorts by day, newest first.
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]models.Attendance, int64, error)
}

type LeaveFilter struct {
	EmployeeRef  *uuid.UUID
	EmployeeCode string
	Status       models.LeaveStatus
	AppliedFrom  *time.Time
	AppliedTo    *time.Time
	StartFrom    *time.Time
	Page
}

type LeaveRepository interface {
	CreateLeave(ctx context.Context, leave *models.Leave) error
	SaveLeave(ctx context.Context, leave *models.Leave) error
	LeaveByID(ctx context.Context, id uuid.UUID) (*models.Leave, error)
	DeleteLeave(ctx context.Context, id uuid.UUID) error
	// ListLeaves sorts by applied date, newest first.
	ListLeaves(ctx context.Context, filter LeaveFilter) ([]models.Leave, int64, error)
}

type PayrollFilter struct {
	EmployeeRef  *uuid.UUID
	EmployeeCode string
	Month        string
	Status       models.PayrollStatus
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Page
}

type PayrollRepository interface {
	CreatePayroll(ctx context.Context, payroll *models.Payroll) error
	SavePayroll(ctx context.Context, payroll *models.Payroll) error
	PayrollByID(ctx context.Context, id uuid.UUID) (*models.Payroll, error)
	PayrollForMonth(ctx context.Context, employeeRef uuid.UUID, month string) (*models.Payroll, error)
	// ListPayrolls sorts by creation time, newest first.
	ListPayrolls(ctx context.Context, filter PayrollFilter) ([]models.Payroll, int64, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	RecentNotifications(ctx context.Context, employeeRef uuid.UUID, limit int) ([]models.Notification, error)
}

// Store bundles every ledger.
type Store interface {
	EmployeeRepository
	AttendanceRepository
	LeaveRepository
	PayrollRepository
	NotificationRepository
}
