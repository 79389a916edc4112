// Package gormstore implements the ledgers on a relational database through gorm.
package gormstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dayflow-backend/internal/models"
	"dayflow-backend/internal/store"
)

type Store struct {
	DB *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	}
	return err
}

func paginate(query *gorm.DB, page store.Page) *gorm.DB {
	if page.Limit > 0 {
		query = query.Offset(page.Offset()).Limit(page.Limit)
	}
	return query
}

// countPage counts the filtered rows, then loads one page of them. Both
// queries start from the same filtered statement.
func countPage(query *gorm.DB, order string, page store.Page, dest any) (int64, error) {
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	if err := paginate(query.Order(order), page).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	return translate(s.DB.WithContext(ctx).Create(employee).Error)
}

// SaveEmployee writes every column except the refresh token, which only
// SetRefreshToken changes.
func (s *Store) SaveEmployee(ctx context.Context, employee *models.Employee) error {
	return translate(s.DB.WithContext(ctx).Omit("refresh_token").Save(employee).Error)
}

func (s *Store) EmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := s.DB.WithContext(ctx).First(&employee, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &employee, nil
}

func (s *Store) EmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var employee models.Employee
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&employee).Error; err != nil {
		return nil, translate(err)
	}
	return &employee, nil
}

func (s *Store) EmployeeByCode(ctx context.Context, code string) (*models.Employee, error) {
	var employee models.Employee
	if err := s.DB.WithContext(ctx).Where("employee_id = ?", code).First(&employee).Error; err != nil {
		return nil, translate(err)
	}
	return &employee, nil
}

func (s *Store) ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]models.Employee, int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.Employee{})
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(employee_id) LIKE ?", pattern, pattern, pattern)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var employees []models.Employee
	total, err := countPage(query, "created_at desc", filter.Page, &employees)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (s *Store) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	result := s.DB.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", id).Update("refresh_token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AttendanceForDay(ctx context.Context, employeeRef uuid.UUID, day time.Time) (*models.Attendance, error) {
	var record models.Attendance
	next := day.AddDate(0, 0, 1)
	if err := s.DB.WithContext(ctx).
		Where("employee_ref = ? AND date >= ? AND date < ?", employeeRef, day, next).
		First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (s *Store) CreateAttendance(ctx context.Context, record *models.Attendance) error {
	return translate(s.DB.WithContext(ctx).Create(record).Error)
}

func (s *Store) SaveAttendance(ctx context.Context, record *models.Attendance) error {
	return translate(s.DB.WithContext(ctx).Save(record).Error)
}

func (s *Store) UpsertAttendanceDay(ctx context.Context, record *models.Attendance, columns []string) error {
	columns = append(columns, "updated_at")
	return translate(s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_ref"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(record).Error)
}

func (s *Store) ListAttendance(ctx context.Context, filter store.AttendanceFilter) ([]models.Attendance, int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.Attendance{})
	if filter.EmployeeRef != nil {
		query = query.Where("employee_ref = ?", *filter.EmployeeRef)
	}
	if filter.EmployeeCode != "" {
		query = query.Where("employee_code = ?", filter.EmployeeCode)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	var records []models.Attendance
	total, err := countPage(query, "date desc", filter.Page, &records)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *Store) CreateLeave(ctx context.Context, leave *models.Leave) error {
	return translate(s.DB.WithContext(ctx).Create(leave).Error)
}

func (s *Store) SaveLeave(ctx context.Context, leave *models.Leave) error {
	return translate(s.DB.WithContext(ctx).Save(leave).Error)
}

func (s *Store) LeaveByID(ctx context.Context, id uuid.UUID) (*models.Leave, error) {
	var leave models.Leave
	if err := s.DB.WithContext(ctx).First(&leave, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &leave, nil
}

func (s *Store) DeleteLeave(ctx context.Context, id uuid.UUID) error {
	result := s.DB.WithContext(ctx).Delete(&models.Leave{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListLeaves(ctx context.Context, filter store.LeaveFilter) ([]models.Leave, int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.Leave{})
	if filter.EmployeeRef != nil {
		query = query.Where("employee_ref = ?", *filter.EmployeeRef)
	}
	if filter.EmployeeCode != "" {
		query = query.Where("employee_code = ?", filter.EmployeeCode)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AppliedFrom != nil {
		query = query.Where("applied_date >= ?", *filter.AppliedFrom)
	}
	if filter.AppliedTo != nil {
		query = query.Where("applied_date <= ?", *filter.AppliedTo)
	}
	if filter.StartFrom != nil {
		query = query.Where("start_date >= ?", *filter.StartFrom)
	}

	var leaves []models.Leave
	total, err := countPage(query, "applied_date desc", filter.Page, &leaves)
	if err != nil {
		return nil, 0, err
	}
	return leaves, total, nil
}

func (s *Store) CreatePayroll(ctx context.Context, payroll *models.Payroll) error {
	return translate(s.DB.WithContext(ctx).Create(payroll).Error)
}

func (s *Store) SavePayroll(ctx context.Context, payroll *models.Payroll) error {
	return translate(s.DB.WithContext(ctx).Save(payroll).Error)
}

func (s *Store) PayrollByID(ctx context.Context, id uuid.UUID) (*models.Payroll, error) {
	var payroll models.Payroll
	if err := s.DB.WithContext(ctx).First(&payroll, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &payroll, nil
}

func (s *Store) PayrollForMonth(ctx context.Context, employeeRef uuid.UUID, month string) (*models.Payroll, error) {
	var payroll models.Payroll
	if err := s.DB.WithContext(ctx).
		Where("employee_ref = ? AND month = ?", employeeRef, month).
		First(&payroll).Error; err != nil {
		return nil, translate(err)
	}
	return &payroll, nil
}

func (s *Store) ListPayrolls(ctx context.Context, filter store.PayrollFilter) ([]models.Payroll, int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.Payroll{})
	if filter.EmployeeRef != nil {
		query = query.Where("employee_ref = ?", *filter.EmployeeRef)
	}
	if filter.EmployeeCode != "" {
		query = query.Where("employee_code = ?", filter.EmployeeCode)
	}
	if filter.Month != "" {
		query = query.Where("month = ?", filter.Month)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var payrolls []models.Payroll
	total, err := countPage(query, "created_at desc", filter.Page, &payrolls)
	if err != nil {
		return nil, 0, err
	}
	return payrolls, total, nil
}

func (s *Store) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return translate(s.DB.WithContext(ctx).Create(notification).Error)
}

func (s *Store) RecentNotifications(ctx context.Context, employeeRef uuid.UUID, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.DB.WithContext(ctx).Where("employee_ref = ?", employeeRef).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}
