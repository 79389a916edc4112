package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/clock"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/store"
	"dayflow-backend/internal/utils"
)

const (
	msgEmployeeNotFound  = "Employee not found"
	msgDuplicateEmployee = "Employee with this email or employee ID already exists"

	defaultEmployeeLimit = 10
)

type EmployeeService struct {
	employees store.EmployeeRepository
	clock     clock.Clock
}

func NewEmployeeService(employees store.EmployeeRepository, clk clock.Clock) *EmployeeService {
	return &EmployeeService{employees: employees, clock: clk}
}

type EmployeeQuery struct {
	Search     string
	Department string
	Status     models.EmployeeStatus
	Page       int
	Limit      int
}

type EmployeeList struct {
	Employees  []models.Employee `json:"employees"`
	Pagination utils.Pagination  `json:"pagination"`
}

func (s *EmployeeService) List(ctx context.Context, q EmployeeQuery) (*EmployeeList, error) {
	p := page(q.Page, q.Limit, defaultEmployeeLimit)
	employees, total, err := s.employees.ListEmployees(ctx, store.EmployeeFilter{
		Search:     q.Search,
		Department: q.Department,
		Status:     q.Status,
		Page:       p,
	})
	if err != nil {
		return nil, err
	}
	return &EmployeeList{Employees: employees, Pagination: pagination(total, p)}, nil
}

func (s *EmployeeService) Get(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	employee, err := s.employees.EmployeeByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgEmployeeNotFound)
	}
	return employee, nil
}

// View is Get as seen by viewer: the salary is left out unless the viewer is
// staff or the employee themselves.
func (s *EmployeeService) View(ctx context.Context, viewer *models.Employee, id uuid.UUID) (*models.Employee, error) {
	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.Role.IsElevated() && viewer.ID != employee.ID {
		employee.Salary = nil
	}
	return employee, nil
}

type CreateEmployeeInput struct {
	EmployeeID string
	Name       string
	Email      string
	Password   string
	Department string
	Position   string
	Role       string
	Salary     *float64
	Phone      string
	Address    string
}

func (s *EmployeeService) Create(ctx context.Context, in CreateEmployeeInput) (*models.Employee, error) {
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return nil, apperr.Validation("Invalid role")
	}
	if in.Salary != nil && *in.Salary < 0 {
		return nil, apperr.Validation("Salary cannot be negative")
	}
	employee := &models.Employee{
		EmployeeID: models.NormalizeEmployeeID(in.EmployeeID),
		Name:       strings.TrimSpace(in.Name),
		Email:      models.NormalizeEmail(in.Email),
		Role:       role,
		Department: strings.TrimSpace(in.Department),
		Position:   strings.TrimSpace(in.Position),
		Salary:     in.Salary,
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		JoinDate:   s.clock.Now(),
		Status:     models.EmployeeActive,
	}
	if err := ensureUniqueEmployee(ctx, s.employees, employee.Email, employee.EmployeeID, msgDuplicateEmployee); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	employee.PasswordHash = hash
	if err := s.employees.CreateEmployee(ctx, employee); err != nil {
		return nil, conflictOnDuplicate(err, msgDuplicateEmployee)
	}
	return employee, nil
}

// EmployeeUpdate lists the fields an administrator may change. The employee
// code, email and password are not among them.
type EmployeeUpdate struct {
	Name       *string
	Department *string
	Position   *string
	Role       *string
	Salary     *float64
	Phone      *string
	Address    *string
	Status     *string
}

// Update applies an administrator's changes. Role, salary and status are hr
// decisions, and only hr may edit another hr account.
func (s *EmployeeService) Update(ctx context.Context, actor *models.Employee, id uuid.UUID, in EmployeeUpdate) (*models.Employee, error) {
	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManageEmployees() {
		if employee.Role.CanManageEmployees() {
			return nil, apperr.Forbidden(msgNoPermission)
		}
		if in.Role != nil || in.Salary != nil || in.Status != nil {
			return nil, apperr.Forbidden("Only HR can change role, salary or status")
		}
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len(name) < 2 {
			return nil, apperr.Validation("Name must be at least 2 characters")
		}
		employee.Name = name
	}
	if in.Department != nil {
		employee.Department = strings.TrimSpace(*in.Department)
	}
	if in.Position != nil {
		employee.Position = strings.TrimSpace(*in.Position)
	}
	if in.Role != nil {
		role := models.Role(strings.ToLower(strings.TrimSpace(*in.Role)))
		if !role.Valid() {
			return nil, apperr.Validation("Invalid role")
		}
		employee.Role = role
	}
	if in.Salary != nil {
		if *in.Salary < 0 {
			return nil, apperr.Validation("Salary cannot be negative")
		}
		salary := *in.Salary
		employee.Salary = &salary
	}
	if in.Phone != nil {
		employee.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		employee.Address = strings.TrimSpace(*in.Address)
	}
	if in.Status != nil {
		status := models.EmployeeStatus(strings.TrimSpace(*in.Status))
		if !status.Valid() {
			return nil, apperr.Validation("Invalid status")
		}
		employee.Status = status
	}
	if err := s.employees.SaveEmployee(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// Deactivate is the only removal; employees are never hard-deleted.
func (s *EmployeeService) Deactivate(ctx context.Context, id uuid.UUID) error {
	employee, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	employee.Status = models.EmployeeInactive
	return s.employees.SaveEmployee(ctx, employee)
}

type EmployeeCounts struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	OnLeave  int64 `json:"onLeave"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type EmployeeStats struct {
	Stats           EmployeeCounts    `json:"stats"`
	DepartmentStats []DepartmentCount `json:"departmentStats"`
}

func (s *EmployeeService) Stats(ctx context.Context) (*EmployeeStats, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, err
	}
	departments, err := s.DepartmentCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &EmployeeStats{Stats: counts, DepartmentStats: departments}, nil
}

func (s *EmployeeService) Counts(ctx context.Context) (EmployeeCounts, error) {
	var counts EmployeeCounts
	var err error
	if counts.Total, err = s.count(ctx, ""); err != nil {
		return counts, err
	}
	if counts.Active, err = s.count(ctx, models.EmployeeActive); err != nil {
		return counts, err
	}
	if counts.Inactive, err = s.count(ctx, models.EmployeeInactive); err != nil {
		return counts, err
	}
	if counts.OnLeave, err = s.count(ctx, models.EmployeeOnLeave); err != nil {
		return counts, err
	}
	return counts, nil
}

func (s *EmployeeService) count(ctx context.Context, status models.EmployeeStatus) (int64, error) {
	_, total, err := s.employees.ListEmployees(ctx, store.EmployeeFilter{Status: status, Page: store.Page{Page: 1, Limit: 1}})
	return total, err
}

// DepartmentCounts tallies active employees per department, largest first.
func (s *EmployeeService) DepartmentCounts(ctx context.Context) ([]DepartmentCount, error) {
	active, _, err := s.employees.ListEmployees(ctx, store.EmployeeFilter{Status: models.EmployeeActive})
	if err != nil {
		return nil, err
	}
	tally := map[string]int{}
	for _, e := range active {
		tally[e.Department]++
	}
	out := []DepartmentCount{}
	for _, c := range sortedCounts(tally) {
		out = append(out, DepartmentCount{Department: c.key, Count: c.count})
	}
	return out, nil
}

func ensureUniqueEmployee(ctx context.Context, employees store.EmployeeRepository, email, code, message string) error {
	if _, err := employees.EmployeeByEmail(ctx, email); err == nil {
		return apperr.Conflict(message)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, err := employees.EmployeeByCode(ctx, code); err == nil {
		return apperr.Conflict(message)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}
