package services

import (
	"context"
	"errors"
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
	msgPayrollNotFound      = "Payroll not found"
	msgPayrollExists        = "Payroll for this month already exists"
	msgPayrollPaidImmutable = "Cannot update paid payroll"
	msgPayrollAlreadyPaid   = "Payroll already paid"

	defaultMyPayrollLimit  = 12
	defaultAllPayrollLimit = 20
)

type Company struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type PayrollService struct {
	payrolls  store.PayrollRepository
	employees store.EmployeeRepository
	clock     clock.Clock
	company   Company
}

func NewPayrollService(payrolls store.PayrollRepository, employees store.EmployeeRepository, clk clock.Clock, company Company) *PayrollService {
	return &PayrollService{payrolls: payrolls, employees: employees, clock: clk, company: company}
}

type PayrollInput struct {
	EmployeeCode string
	Month        string
	BaseSalary   float64
	Allowances   float64
	Deductions   float64
	Bonus        float64
	Breakdown    models.PayrollBreakdown
	Remarks      string
}

func validateAmounts(base, allowances, deductions, bonus float64) error {
	if base <= 0 {
		return apperr.Validation("Base salary must be greater than 0")
	}
	if allowances < 0 || deductions < 0 || bonus < 0 {
		return apperr.Validation("Allowances, deductions and bonus cannot be negative")
	}
	return nil
}

func (s *PayrollService) Create(ctx context.Context, in PayrollInput) (*models.Payroll, error) {
	month := strings.TrimSpace(in.Month)
	if month == "" {
		return nil, apperr.Validation("Month is required")
	}
	if err := validateAmounts(in.BaseSalary, in.Allowances, in.Deductions, in.Bonus); err != nil {
		return nil, err
	}
	employee, err := s.employees.EmployeeByCode(ctx, models.NormalizeEmployeeID(in.EmployeeCode))
	if err != nil {
		return nil, notFound(err, msgEmployeeNotFound)
	}
	if _, err := s.payrolls.PayrollForMonth(ctx, employee.ID, month); err == nil {
		return nil, apperr.Conflict(msgPayrollExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	payroll := &models.Payroll{
		EmployeeRef:  employee.ID,
		EmployeeCode: employee.EmployeeID,
		EmployeeName: employee.Name,
		Month:        month,
		BaseSalary:   in.BaseSalary,
		Allowances:   in.Allowances,
		Deductions:   in.Deductions,
		Bonus:        in.Bonus,
		Status:       models.PayrollPending,
		Breakdown:    in.Breakdown,
		Remarks:      strings.TrimSpace(in.Remarks),
	}
	payroll.Recalculate()
	if err := s.payrolls.CreatePayroll(ctx, payroll); err != nil {
		return nil, conflictOnDuplicate(err, msgPayrollExists)
	}
	return payroll, nil
}

type PayrollUpdate struct {
	BaseSalary *float64
	Allowances *float64
	Deductions *float64
	Bonus      *float64
	Breakdown  *models.PayrollBreakdown
	Remarks    *string
}

// Update refuses paid records and re-derives tax and net salary from the merged amounts.
func (s *PayrollService) Update(ctx context.Context, id uuid.UUID, in PayrollUpdate) (*models.Payroll, error) {
	payroll, err := s.payrolls.PayrollByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgPayrollNotFound)
	}
	if payroll.Status == models.PayrollPaid {
		return nil, apperr.Conflict(msgPayrollPaidImmutable)
	}
	if in.BaseSalary != nil {
		payroll.BaseSalary = *in.BaseSalary
	}
	if in.Allowances != nil {
		payroll.Allowances = *in.Allowances
	}
	if in.Deductions != nil {
		payroll.Deductions = *in.Deductions
	}
	if in.Bonus != nil {
		payroll.Bonus = *in.Bonus
	}
	if err := validateAmounts(payroll.BaseSalary, payroll.Allowances, payroll.Deductions, payroll.Bonus); err != nil {
		return nil, err
	}
	if in.Breakdown != nil {
		payroll.Breakdown = *in.Breakdown
	}
	if in.Remarks != nil {
		payroll.Remarks = strings.TrimSpace(*in.Remarks)
	}
	payroll.Recalculate()
	if err := s.payrolls.SavePayroll(ctx, payroll); err != nil {
		return nil, err
	}
	return payroll, nil
}

func (s *PayrollService) ProcessPayment(ctx context.Context, id uuid.UUID, method string) (*models.Payroll, error) {
	payroll, err := s.payrolls.PayrollByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgPayrollNotFound)
	}
	if payroll.Status == models.PayrollPaid {
		return nil, apperr.Conflict(msgPayrollAlreadyPaid)
	}
	now := s.clock.Now()
	payroll.Status = models.PayrollPaid
	payroll.PaymentDate = &now
	payroll.PaymentMethod = strings.TrimSpace(method)
	if payroll.PaymentMethod == "" {
		payroll.PaymentMethod = models.DefaultPaymentMethod
	}
	payroll.Recalculate()
	if err := s.payrolls.SavePayroll(ctx, payroll); err != nil {
		return nil, err
	}
	return payroll, nil
}

func (s *PayrollService) owned(ctx context.Context, id uuid.UUID, viewer *models.Employee, forbidden string) (*models.Payroll, error) {
	payroll, err := s.payrolls.PayrollByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgPayrollNotFound)
	}
	if payroll.EmployeeRef != viewer.ID && !viewer.Role.CanAdministerPayroll() {
		return nil, apperr.Forbidden(forbidden)
	}
	return payroll, nil
}

func (s *PayrollService) Get(ctx context.Context, id uuid.UUID, viewer *models.Employee) (*models.Payroll, error) {
	return s.owned(ctx, id, viewer, "You can only view your own payroll")
}

type PayslipEmployee struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

type PayslipEarnings struct {
	BaseSalary float64 `json:"baseSalary"`
	Allowances float64 `json:"allowances"`
	Bonus      float64 `json:"bonus"`
	Gross      float64 `json:"gross"`
}

type PayslipDeductions struct {
	Tax   float64 `json:"tax"`
	Other float64 `json:"other"`
	Total float64 `json:"total"`
}

type Payslip struct {
	Company       Company                 `json:"company"`
	Employee      PayslipEmployee         `json:"employee"`
	PayPeriod     string                  `json:"payPeriod"`
	Earnings      PayslipEarnings         `json:"earnings"`
	Deductions    PayslipDeductions       `json:"deductions"`
	NetSalary     float64                 `json:"netSalary"`
	Breakdown     models.PayrollBreakdown `json:"breakdown"`
	PaymentDate   *time.Time              `json:"paymentDate,omitempty"`
	PaymentMethod string                  `json:"paymentMethod,omitempty"`
}

// Payslip is a read-only projection of the payroll record and the employee's current position.
func (s *PayrollService) Payslip(ctx context.Context, id uuid.UUID, viewer *models.Employee) (*Payslip, error) {
	payroll, err := s.owned(ctx, id, viewer, "You can only generate your own payslip")
	if err != nil {
		return nil, err
	}
	slip := &Payslip{
		Company: s.company,
		Employee: PayslipEmployee{
			Name:       payroll.EmployeeName,
			EmployeeID: payroll.EmployeeCode,
		},
		PayPeriod: payroll.Month,
		Earnings: PayslipEarnings{
			BaseSalary: payroll.BaseSalary,
			Allowances: payroll.Allowances,
			Bonus:      payroll.Bonus,
			Gross:      payroll.Gross(),
		},
		Deductions: PayslipDeductions{
			Tax:   payroll.Tax,
			Other: payroll.Deductions,
			Total: payroll.Tax + payroll.Deductions,
		},
		NetSalary:     payroll.NetSalary,
		Breakdown:     payroll.Breakdown,
		PaymentDate:   payroll.PaymentDate,
		PaymentMethod: payroll.PaymentMethod,
	}
	if employee, err := s.employees.EmployeeByID(ctx, payroll.EmployeeRef); err == nil {
		slip.Employee.Department = employee.Department
		slip.Employee.Position = employee.Position
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return slip, nil
}

type MyPayrollList struct {
	Payrolls       []models.Payroll `json:"payrolls"`
	CurrentPayroll *models.Payroll  `json:"currentPayroll"`
	Pagination     utils.Pagination `json:"pagination"`
}

func (s *PayrollService) MyPayroll(ctx context.Context, employee *models.Employee, month string, pageNum, limit int) (*MyPayrollList, error) {
	p := page(pageNum, limit, defaultMyPayrollLimit)
	ref := employee.ID
	payrolls, total, err := s.payrolls.ListPayrolls(ctx, store.PayrollFilter{EmployeeRef: &ref, Month: strings.TrimSpace(month), Page: p})
	if err != nil {
		return nil, err
	}
	current, err := s.CurrentMonth(ctx, employee.ID)
	if err != nil {
		return nil, err
	}
	return &MyPayrollList{Payrolls: payrolls, CurrentPayroll: current, Pagination: pagination(total, p)}, nil
}

// CurrentMonth returns nil without error when no record exists for this month.
func (s *PayrollService) CurrentMonth(ctx context.Context, employeeRef uuid.UUID) (*models.Payroll, error) {
	payroll, err := s.payrolls.PayrollForMonth(ctx, employeeRef, utils.MonthLabel(s.clock.Now()))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return payroll, nil
}

type PayrollQuery struct {
	Month        string
	EmployeeCode string
	Status       models.PayrollStatus
	Page         int
	Limit        int
}

type PayrollTotals struct {
	TotalPayroll   float64 `json:"totalPayroll"`
	TotalEmployees int     `json:"totalEmployees"`
	AvgSalary      float64 `json:"avgSalary"`
}

func totalsOf(payrolls []models.Payroll) PayrollTotals {
	var totals PayrollTotals
	for _, p := range payrolls {
		totals.TotalPayroll += p.NetSalary
	}
	totals.TotalEmployees = len(payrolls)
	if totals.TotalEmployees > 0 {
		totals.AvgSalary = totals.TotalPayroll / float64(totals.TotalEmployees)
	}
	return totals
}

type PayrollList struct {
	Payrolls   []models.Payroll `json:"payrolls"`
	Stats      PayrollTotals    `json:"stats"`
	Pagination utils.Pagination `json:"pagination"`
}

// All pages the filtered ledger; Stats covers the whole filtered set.
func (s *PayrollService) All(ctx context.Context, q PayrollQuery) (*PayrollList, error) {
	p := page(q.Page, q.Limit, defaultAllPayrollLimit)
	filter := store.PayrollFilter{
		Month:        strings.TrimSpace(q.Month),
		EmployeeCode: models.NormalizeEmployeeID(q.EmployeeCode),
		Status:       q.Status,
	}
	everything, _, err := s.payrolls.ListPayrolls(ctx, filter)
	if err != nil {
		return nil, err
	}
	filter.Page = p
	payrolls, total, err := s.payrolls.ListPayrolls(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &PayrollList{Payrolls: payrolls, Stats: totalsOf(everything), Pagination: pagination(total, p)}, nil
}

type PayrollStatusSummary struct {
	Status models.PayrollStatus `json:"status"`
	Count  int                  `json:"count"`
	Total  float64              `json:"total"`
}

// MonthSummary groups one pay period by status.
func (s *PayrollService) MonthSummary(ctx context.Context, month string) ([]PayrollStatusSummary, error) {
	payrolls, _, err := s.payrolls.ListPayrolls(ctx, store.PayrollFilter{Month: month})
	if err != nil {
		return nil, err
	}
	order := []models.PayrollStatus{models.PayrollPending, models.PayrollPaid, models.PayrollFailed}
	byStatus := map[models.PayrollStatus]*PayrollStatusSummary{}
	for _, st := range order {
		byStatus[st] = &PayrollStatusSummary{Status: st}
	}
	for _, p := range payrolls {
		if sum, ok := byStatus[p.Status]; ok {
			sum.Count++
			sum.Total += p.NetSalary
		}
	}
	out := []PayrollStatusSummary{}
	for _, st := range order {
		if byStatus[st].Count > 0 {
			out = append(out, *byStatus[st])
		}
	}
	return out, nil
}
