package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaveType string

const (
	LeavePaid   LeaveType = "paid"
	LeaveSick   LeaveType = "sick"
	LeaveUnpaid LeaveType = "unpaid"
	LeaveCasual LeaveType = "casual"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeavePaid, LeaveSick, LeaveUnpaid, LeaveCasual:
		return true
	}
	return false
}

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

func (s LeaveStatus) Valid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected:
		return true
	}
	return false
}

// AnnualLeaveAllowance is the default yearly allowance in days.
const AnnualLeaveAllowance = 20

const MinReasonLength = 10

type Leave struct {
	ID           uuid.UUID   `gorm:"type:char(36);primaryKey" json:"id"`
	EmployeeRef  uuid.UUID   `gorm:"type:char(36);not null;index:idx_leaves_employee_status" json:"userId"`
	EmployeeCode string      `gorm:"size:50;not null;index" json:"employeeId"`
	EmployeeName string      `gorm:"size:255;not null" json:"employeeName"`
	LeaveType    LeaveType   `gorm:"size:20;not null" json:"leaveType"`
	StartDate    time.Time   `gorm:"not null;index:idx_leaves_dates" json:"startDate"`
	EndDate      time.Time   `gorm:"not null;index:idx_leaves_dates" json:"endDate"`
	Days         float64     `gorm:"type:decimal(6,1);not null" json:"days"`
	Reason       string      `gorm:"size:1000;not null" json:"reason"`
	Status       LeaveStatus `gorm:"size:20;not null;default:Pending;index:idx_leaves_employee_status" json:"status"`
	AppliedDate  time.Time   `gorm:"not null;index" json:"appliedDate"`
	ApprovedBy   *uuid.UUID  `gorm:"type:char(36)" json:"approvedBy,omitempty"`
	ApprovedDate *time.Time  `json:"approvedDate,omitempty"`
	Remarks      string      `gorm:"size:500" json:"remarks,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (l *Leave) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// CalculateLeaveDays counts calendar days from start to end, both included.
// Weekends are not excluded.
func CalculateLeaveDays(start, end time.Time) float64 {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return float64(int(e.Sub(s).Hours()/24) + 1)
}

// LeaveDates lists every calendar day of the inclusive range at midnight in loc.
func LeaveDates(start, end time.Time, loc *time.Location) []time.Time {
	current := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	var dates []time.Time
	for !current.After(last) {
		dates = append(dates, current)
		current = current.AddDate(0, 0, 1)
	}
	return dates
}
