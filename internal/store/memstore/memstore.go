// Package memstore keeps every ledger in process memory. It backs the test
// suites and DB_DRIVER=memory local runs.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dayflow-backend/internal/clock"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	clock clock.Clock

	employees     map[uuid.UUID]*models.Employee
	attendance    map[uuid.UUID]*models.Attendance
	leaves        map[uuid.UUID]*models.Leave
	payrolls      map[uuid.UUID]*models.Payroll
	notifications map[uuid.UUID]*models.Notification

	// seq breaks ties between rows created at the same instant.
	seq   int64
	order map[uuid.UUID]int64
}

var _ store.Store = (*Store)(nil)

// New returns an empty store stamping timestamps from clk; nil uses the wall clock.
func New(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &Store{
		clock:         clk,
		employees:     map[uuid.UUID]*models.Employee{},
		attendance:    map[uuid.UUID]*models.Attendance{},
		leaves:        map[uuid.UUID]*models.Leave{},
		payrolls:      map[uuid.UUID]*models.Payroll{},
		notifications: map[uuid.UUID]*models.Notification{},
		order:         map[uuid.UUID]int64{},
	}
}

func (s *Store) track(id uuid.UUID) {
	s.seq++
	s.order[id] = s.seq
}

func (s *Store) newer(a, b uuid.UUID, ta, tb time.Time) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return s.order[a] > s.order[b]
}

func window[T any](items []T, page store.Page) []T {
	if page.Limit <= 0 {
		return items
	}
	offset := page.Offset()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (s *Store) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.employees {
		if existing.Email == employee.Email || existing.EmployeeID == employee.EmployeeID {
			return store.ErrDuplicate
		}
	}
	_ = employee.BeforeCreate(nil)
	now := s.clock.Now()
	employee.CreatedAt, employee.UpdatedAt = now, now
	copied := *employee
	s.employees[employee.ID] = &copied
	s.track(employee.ID)
	return nil
}

func (s *Store) SaveEmployee(ctx context.Context, employee *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.employees[employee.ID]
	if !ok {
		return store.ErrNotFound
	}
	for id, existing := range s.employees {
		if id != employee.ID && (existing.Email == employee.Email || existing.EmployeeID == employee.EmployeeID) {
			return store.ErrDuplicate
		}
	}
	employee.UpdatedAt = s.clock.Now()
	copied := *employee
	copied.RefreshToken = current.RefreshToken
	s.employees[employee.ID] = &copied
	return nil
}

func (s *Store) EmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	employee, ok := s.employees[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *employee
	return &copied, nil
}

func (s *Store) EmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	return s.findEmployee(func(e *models.Employee) bool { return e.Email == email })
}

func (s *Store) EmployeeByCode(ctx context.Context, code string) (*models.Employee, error) {
	return s.findEmployee(func(e *models.Employee) bool { return e.EmployeeID == code })
}

func (s *Store) findEmployee(match func(*models.Employee) bool) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, employee := range s.employees {
		if match(employee) {
			copied := *employee
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]models.Employee, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := map[uuid.UUID]bool{}
	for _, id := range filter.IDs {
		ids[id] = true
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var matched []models.Employee
	for _, e := range s.employees {
		if len(ids) > 0 && !ids[e.ID] {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Name), search) &&
			!strings.Contains(strings.ToLower(e.Email), search) &&
			!strings.Contains(strings.ToLower(e.EmployeeID), search) {
			continue
		}
		if filter.Department != "" && e.Department != filter.Department {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		matched = append(matched, *e)
	}
	sort.Slice(matched, func(i, j int) bool {
		return s.newer(matched[i].ID, matched[j].ID, matched[i].CreatedAt, matched[j].CreatedAt)
	})
	return window(matched, filter.Page), int64(len(matched)), nil
}

func (s *Store) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	employee, ok := s.employees[id]
	if !ok {
		return store.ErrNotFound
	}
	employee.RefreshToken = token
	employee.UpdatedAt = s.clock.Now()
	return nil
}

func sameDay(a, b time.Time) bool {
	return !a.Before(b) && a.Before(b.AddDate(0, 0, 1))
}

func (s *Store) AttendanceForDay(ctx context.Context, employeeRef uuid.UUID, day time.Time) (*models.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record := s.attendanceForDay(employeeRef, day); record != nil {
		copied := *record
		copied.FillLocation()
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) attendanceForDay(employeeRef uuid.UUID, day time.Time) *models.Attendance {
	for _, record := range s.attendance {
		if record.EmployeeRef == employeeRef && sameDay(record.Date, day) {
			return record
		}
	}
	return nil
}

func (s *Store) CreateAttendance(ctx context.Context, record *models.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attendanceForDay(record.EmployeeRef, record.Date) != nil {
		return store.ErrDuplicate
	}
	s.insertAttendance(record)
	return nil
}

func (s *Store) insertAttendance(record *models.Attendance) {
	_ = record.BeforeCreate(nil)
	now := s.clock.Now()
	record.CreatedAt, record.UpdatedAt = now, now
	copied := *record
	s.attendance[record.ID] = &copied
	s.track(record.ID)
}

func (s *Store) SaveAttendance(ctx context.Context, record *models.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attendance[record.ID]; !ok {
		return store.ErrNotFound
	}
	if other := s.attendanceForDay(record.EmployeeRef, record.Date); other != nil && other.ID != record.ID {
		return store.ErrDuplicate
	}
	record.UpdatedAt = s.clock.Now()
	copied := *record
	s.attendance[record.ID] = &copied
	return nil
}

func (s *Store) UpsertAttendanceDay(ctx context.Context, record *models.Attendance, columns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.attendanceForDay(record.EmployeeRef, record.Date)
	if existing == nil {
		s.insertAttendance(record)
		return nil
	}
	for _, column := range columns {
		switch column {
		case "status":
			existing.Status = record.Status
		case "remarks":
			existing.Remarks = record.Remarks
		case "employee_name":
			existing.EmployeeName = record.EmployeeName
		case "employee_code":
			existing.EmployeeCode = record.EmployeeCode
		case "hours":
			existing.Hours = record.Hours
		case "check_in":
			existing.CheckIn = record.CheckIn
		case "check_out":
			existing.CheckOut = record.CheckOut
		}
	}
	existing.UpdatedAt = s.clock.Now()
	return nil
}

func (s *Store) ListAttendance(ctx context.Context, filter store.AttendanceFilter) ([]models.Attendance, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Attendance
	for _, r := range s.attendance {
		if filter.EmployeeRef != nil && r.EmployeeRef != *filter.EmployeeRef {
			continue
		}
		if filter.EmployeeCode != "" && r.EmployeeCode != filter.EmployeeCode {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.From != nil && r.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && r.Date.After(*filter.To) {
			continue
		}
		copied := *r
		copied.FillLocation()
		matched = append(matched, copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return s.newer(matched[i].ID, matched[j].ID, matched[i].Date, matched[j].Date)
	})
	return window(matched, filter.Page), int64(len(matched)), nil
}

func (s *Store) CreateLeave(ctx context.Context, leave *models.Leave) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = leave.BeforeCreate(nil)
	now := s.clock.Now()
	leave.CreatedAt, leave.UpdatedAt = now, now
	copied := *leave
	s.leaves[leave.ID] = &copied
	s.track(leave.ID)
	return nil
}

func (s *Store) SaveLeave(ctx context.Context, leave *models.Leave) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leaves[leave.ID]; !ok {
		return store.ErrNotFound
	}
	leave.UpdatedAt = s.clock.Now()
	copied := *leave
	s.leaves[leave.ID] = &copied
	return nil
}

func (s *Store) LeaveByID(ctx context.Context, id uuid.UUID) (*models.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	leave, ok := s.leaves[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *leave
	return &copied, nil
}

func (s *Store) DeleteLeave(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leaves[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.leaves, id)
	delete(s.order, id)
	return nil
}

func (s *Store) ListLeaves(ctx context.Context, filter store.LeaveFilter) ([]models.Leave, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Leave
	for _, l := range s.leaves {
		if filter.EmployeeRef != nil && l.EmployeeRef != *filter.EmployeeRef {
			continue
		}
		if filter.EmployeeCode != "" && l.EmployeeCode != filter.EmployeeCode {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.AppliedFrom != nil && l.AppliedDate.Before(*filter.AppliedFrom) {
			continue
		}
		if filter.AppliedTo != nil && l.AppliedDate.After(*filter.AppliedTo) {
			continue
		}
		if filter.StartFrom != nil && l.StartDate.Before(*filter.StartFrom) {
			continue
		}
		matched = append(matched, *l)
	}
	sort.Slice(matched, func(i, j int) bool {
		return s.newer(matched[i].ID, matched[j].ID, matched[i].AppliedDate, matched[j].AppliedDate)
	})
	return window(matched, filter.Page), int64(len(matched)), nil
}

func (s *Store) CreatePayroll(ctx context.Context, payroll *models.Payroll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.payrolls {
		if existing.EmployeeRef == payroll.EmployeeRef && existing.Month == payroll.Month {
			return store.ErrDuplicate
		}
	}
	_ = payroll.BeforeCreate(nil)
	_ = payroll.BeforeSave(nil)
	now := s.clock.Now()
	payroll.CreatedAt, payroll.UpdatedAt = now, now
	copied := *payroll
	s.payrolls[payroll.ID] = &copied
	s.track(payroll.ID)
	return nil
}

func (s *Store) SavePayroll(ctx context.Context, payroll *models.Payroll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payrolls[payroll.ID]; !ok {
		return store.ErrNotFound
	}
	for id, existing := range s.payrolls {
		if id != payroll.ID && existing.EmployeeRef == payroll.EmployeeRef && existing.Month == payroll.Month {
			return store.ErrDuplicate
		}
	}
	_ = payroll.BeforeSave(nil)
	payroll.UpdatedAt = s.clock.Now()
	copied := *payroll
	s.payrolls[payroll.ID] = &copied
	return nil
}

func (s *Store) PayrollByID(ctx context.Context, id uuid.UUID) (*models.Payroll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payroll, ok := s.payrolls[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *payroll
	return &copied, nil
}

func (s *Store) PayrollForMonth(ctx context.Context, employeeRef uuid.UUID, month string) (*models.Payroll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, payroll := range s.payrolls {
		if payroll.EmployeeRef == employeeRef && payroll.Month == month {
			copied := *payroll
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListPayrolls(ctx context.Context, filter store.PayrollFilter) ([]models.Payroll, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Payroll
	for _, p := range s.payrolls {
		if filter.EmployeeRef != nil && p.EmployeeRef != *filter.EmployeeRef {
			continue
		}
		if filter.EmployeeCode != "" && p.EmployeeCode != filter.EmployeeCode {
			continue
		}
		if filter.Month != "" && p.Month != filter.Month {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.CreatedFrom != nil && p.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && p.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return s.newer(matched[i].ID, matched[j].ID, matched[i].CreatedAt, matched[j].CreatedAt)
	})
	return window(matched, filter.Page), int64(len(matched)), nil
}

func (s *Store) CreateNotification(ctx context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = notification.BeforeCreate(nil)
	now := s.clock.Now()
	notification.CreatedAt, notification.UpdatedAt = now, now
	copied := *notification
	s.notifications[notification.ID] = &copied
	s.track(notification.ID)
	return nil
}

func (s *Store) RecentNotifications(ctx context.Context, employeeRef uuid.UUID, limit int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Notification
	for _, n := range s.notifications {
		if n.EmployeeRef == employeeRef {
			matched = append(matched, *n)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return s.newer(matched[i].ID, matched[j].ID, matched[i].CreatedAt, matched[j].CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
