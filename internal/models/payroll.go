package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayrollStatus string

const (
	PayrollPending PayrollStatus = "Pending"
	PayrollPaid    PayrollStatus = "Paid"
	PayrollFailed  PayrollStatus = "Failed"
)

func (s PayrollStatus) Valid() bool {
	switch s {
	case PayrollPending, PayrollPaid, PayrollFailed:
		return true
	}
	return false
}

const (
	TaxRate              = 0.10
	DefaultPaymentMethod = "Bank Transfer"
)

// PayrollBreakdown is informational and never summed into the totals.
type PayrollBreakdown struct {
	HRA              float64 `gorm:"type:decimal(12,2);default:0" json:"hra"`
	TravelAllowance  float64 `gorm:"type:decimal(12,2);default:0" json:"travelAllowance"`
	MedicalAllowance float64 `gorm:"type:decimal(12,2);default:0" json:"medicalAllowance"`
	ProvidentFund    float64 `gorm:"type:decimal(12,2);default:0" json:"providentFund"`
	Insurance        float64 `gorm:"type:decimal(12,2);default:0" json:"insurance"`
	OtherDeductions  float64 `gorm:"type:decimal(12,2);default:0" json:"otherDeductions"`
}

type Payroll struct {
	ID            uuid.UUID        `gorm:"type:char(36);primaryKey" json:"id"`
	EmployeeRef   uuid.UUID        `gorm:"type:char(36);not null;uniqueIndex:idx_payroll_employee_month" json:"userId"`
	EmployeeCode  string           `gorm:"size:50;not null;index" json:"employeeId"`
	EmployeeName  string           `gorm:"size:255;not null" json:"employeeName"`
	Month         string           `gorm:"size:40;not null;uniqueIndex:idx_payroll_employee_month;index" json:"month"`
	BaseSalary    float64          `gorm:"type:decimal(12,2);not null" json:"baseSalary"`
	Allowances    float64          `gorm:"type:decimal(12,2);not null;default:0" json:"allowances"`
	Deductions    float64          `gorm:"type:decimal(12,2);not null;default:0" json:"deductions"`
	Bonus         float64          `gorm:"type:decimal(12,2);not null;default:0" json:"bonus"`
	Tax           float64          `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	NetSalary     float64          `gorm:"type:decimal(12,2);not null" json:"netSalary"`
	Status        PayrollStatus    `gorm:"size:20;not null;default:Pending;index" json:"status"`
	PaymentDate   *time.Time       `json:"paymentDate,omitempty"`
	PaymentMethod string           `gorm:"size:100" json:"paymentMethod,omitempty"`
	Remarks       string           `gorm:"size:500" json:"remarks,omitempty"`
	Breakdown     PayrollBreakdown `gorm:"embedded;embeddedPrefix:breakdown_" json:"breakdown"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func (p *Payroll) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the stored net salary derived from the other amounts.
func (p *Payroll) BeforeSave(tx *gorm.DB) error {
	p.NetSalary = p.computeNet()
	return nil
}

func (p *Payroll) Gross() float64 {
	return p.BaseSalary + p.Allowances + p.Bonus
}

// Recalculate derives tax from the gross amount and the net salary from everything else.
func (p *Payroll) Recalculate() {
	p.Tax = roundCents(p.Gross() * TaxRate)
	p.NetSalary = p.computeNet()
}

func (p *Payroll) computeNet() float64 {
	return roundCents(p.BaseSalary + p.Allowances + p.Bonus - p.Deductions - p.Tax)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
