package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
	EmployeeOnLeave  EmployeeStatus = "on-leave"
)

func (s EmployeeStatus) Valid() bool {
	switch s {
	case EmployeeActive, EmployeeInactive, EmployeeOnLeave:
		return true
	}
	return false
}

type Employee struct {
	ID           uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	EmployeeID   string         `gorm:"uniqueIndex;size:50;not null" json:"employeeId"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Role         Role           `gorm:"size:20;not null;default:employee" json:"role"`
	Department   string         `gorm:"size:120;index" json:"department,omitempty"`
	Position     string         `gorm:"size:120" json:"position,omitempty"`
	Phone        string         `gorm:"size:50" json:"phone,omitempty"`
	Address      string         `gorm:"size:500" json:"address,omitempty"`
	Avatar       string         `gorm:"size:2048" json:"avatar,omitempty"`
	JoinDate     time.Time      `json:"joinDate"`
	Salary       *float64       `gorm:"type:decimal(12,2)" json:"salary,omitempty"`
	Status       EmployeeStatus `gorm:"size:20;not null;default:active;index" json:"status"`
	RefreshToken string         `gorm:"size:1024" json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NormalizeEmployeeID trims and uppercases a business employee identifier.
func NormalizeEmployeeID(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
