package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLeave   AttendanceStatus = "Leave"
	AttendanceHalfDay AttendanceStatus = "Half-Day"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLeave, AttendanceHalfDay:
		return true
	}
	return false
}

const (
	FullDayHours = 8
	HalfDayHours = 4
)

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Attendance is the ledger row for one employee on one calendar day.
type Attendance struct {
	ID                uuid.UUID        `gorm:"type:char(36);primaryKey" json:"id"`
	EmployeeRef       uuid.UUID        `gorm:"type:char(36);not null;uniqueIndex:idx_attendance_employee_day" json:"userId"`
	EmployeeCode      string           `gorm:"size:50;not null;index" json:"employeeId"`
	EmployeeName      string           `gorm:"size:255;not null" json:"employeeName"`
	Date              time.Time        `gorm:"not null;uniqueIndex:idx_attendance_employee_day;index" json:"date"`
	CheckIn           *time.Time       `json:"checkIn,omitempty"`
	CheckOut          *time.Time       `json:"checkOut,omitempty"`
	Status            AttendanceStatus `gorm:"size:20;not null;default:Absent;index" json:"status"`
	Hours             float64          `gorm:"type:decimal(4,1);not null;default:0" json:"hours"`
	CheckInLatitude   *float64         `json:"-"`
	CheckInLongitude  *float64         `json:"-"`
	CheckOutLatitude  *float64         `json:"-"`
	CheckOutLongitude *float64         `json:"-"`
	Location          *Location        `gorm:"-" json:"location,omitempty"`
	Remarks           string           `gorm:"size:500" json:"remarks,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

type Location struct {
	CheckIn  *GeoPoint `json:"checkIn,omitempty"`
	CheckOut *GeoPoint `json:"checkOut,omitempty"`
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Attendance) AfterFind(tx *gorm.DB) error {
	a.FillLocation()
	return nil
}

// FillLocation rebuilds the serialized location block from the stored columns.
func (a *Attendance) FillLocation() {
	var loc Location
	if a.CheckInLatitude != nil && a.CheckInLongitude != nil {
		loc.CheckIn = &GeoPoint{Latitude: *a.CheckInLatitude, Longitude: *a.CheckInLongitude}
	}
	if a.CheckOutLatitude != nil && a.CheckOutLongitude != nil {
		loc.CheckOut = &GeoPoint{Latitude: *a.CheckOutLatitude, Longitude: *a.CheckOutLongitude}
	}
	if loc.CheckIn == nil && loc.CheckOut == nil {
		a.Location = nil
		return
	}
	a.Location = &loc
}

func (a *Attendance) SetCheckInLocation(p *GeoPoint) {
	if p == nil {
		return
	}
	a.CheckInLatitude, a.CheckInLongitude = &p.Latitude, &p.Longitude
	a.FillLocation()
}

func (a *Attendance) SetCheckOutLocation(p *GeoPoint) {
	if p == nil {
		return
	}
	a.CheckOutLatitude, a.CheckOutLongitude = &p.Latitude, &p.Longitude
	a.FillLocation()
}

// WorkedHours is the span between check-in and check-out rounded to one decimal.
func WorkedHours(checkIn, checkOut time.Time) float64 {
	hours := checkOut.Sub(checkIn).Hours()
	return math.Round(hours*10) / 10
}

// StatusForHours upgrades to Present or Half-Day when enough hours were worked.
// Below the half-day threshold the current status is kept as is.
func StatusForHours(current AttendanceStatus, hours float64) AttendanceStatus {
	switch {
	case hours >= FullDayHours:
		return AttendancePresent
	case hours >= HalfDayHours:
		return AttendanceHalfDay
	default:
		return current
	}
}
