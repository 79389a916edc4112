package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"dayflow-backend/internal/email"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/store"
)

// Sender delivers a notification outside the application.
type Sender interface {
	Send(ctx context.Context, msg email.Message) error
}

type NotificationService struct {
	notifications store.NotificationRepository
	employees     store.EmployeeRepository
	sender        Sender
}

// NewNotificationService persists notifications; sender may be nil to skip email delivery.
func NewNotificationService(notifications store.NotificationRepository, employees store.EmployeeRepository, sender Sender) *NotificationService {
	return &NotificationService{notifications: notifications, employees: employees, sender: sender}
}

func (s *NotificationService) Notify(ctx context.Context, employeeRef uuid.UUID, title, message string, kind models.NotificationType) error {
	notification := &models.Notification{
		EmployeeRef: employeeRef,
		Title:       title,
		Message:     message,
		Type:        kind,
	}
	if err := s.notifications.CreateNotification(ctx, notification); err != nil {
		return err
	}

	if s.sender == nil {
		return nil
	}
	employee, err := s.employees.EmployeeByID(ctx, employeeRef)
	if err != nil {
		log.Printf("notification %s: lookup recipient: %v", notification.ID, err)
		return nil
	}
	if err := s.sender.Send(ctx, email.Message{To: employee.Email, Subject: title, Body: message}); err != nil {
		log.Printf("notification %s: email to %s failed: %v", notification.ID, employee.Email, err)
	}
	return nil
}

func (s *NotificationService) Recent(ctx context.Context, employeeRef uuid.UUID, limit int) ([]models.Notification, error) {
	return s.notifications.RecentNotifications(ctx, employeeRef, limit)
}
