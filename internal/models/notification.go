package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

type Notification struct {
	ID          uuid.UUID        `gorm:"type:char(36);primaryKey" json:"id"`
	EmployeeRef uuid.UUID        `gorm:"type:char(36);not null;index:idx_notifications_employee_read" json:"userId"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Message     string           `gorm:"size:1000;not null" json:"message"`
	Type        NotificationType `gorm:"size:20;not null;default:info" json:"type"`
	Read        bool             `gorm:"not null;default:false;index:idx_notifications_employee_read" json:"read"`
	Link        string           `gorm:"size:500" json:"link,omitempty"`
	CreatedAt   time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
