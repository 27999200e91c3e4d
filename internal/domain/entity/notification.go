package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationKind classifies a notification
type NotificationKind string

const (
	NotificationReminder     NotificationKind = "reminder"
	NotificationDelay        NotificationKind = "delay"
	NotificationConfirmation NotificationKind = "confirmation"
	NotificationCancellation NotificationKind = "cancellation"
	NotificationInfo         NotificationKind = "info"
	NotificationAlert        NotificationKind = "alert"
)

// Notification is a persisted message for one user
type Notification struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind                 NotificationKind `gorm:"type:varchar(20);not null" json:"kind"`
	Title                string           `gorm:"type:varchar(255);not null" json:"title"`
	Message              string           `gorm:"type:text;not null" json:"message"`
	IsRead               bool             `gorm:"not null;default:false;index" json:"is_read"`
	RelatedChildID       *uuid.UUID       `gorm:"type:uuid" json:"related_child_id,omitempty"`
	RelatedAppointmentID *uuid.UUID       `gorm:"type:uuid" json:"related_appointment_id,omitempty"`
	RelatedVaccineID     *uuid.UUID       `gorm:"type:uuid" json:"related_vaccine_id,omitempty"`
	CreatedAt            time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NotificationMessage is the payload handed to the notification collaborator
type NotificationMessage struct {
	UserID               uuid.UUID        `json:"user_id"`
	Kind                 NotificationKind `json:"kind"`
	Title                string           `json:"title"`
	Message              string           `json:"message"`
	RelatedChildID       *uuid.UUID       `json:"related_child_id,omitempty"`
	RelatedAppointmentID *uuid.UUID       `json:"related_appointment_id,omitempty"`
	RelatedVaccineID     *uuid.UUID       `json:"related_vaccine_id,omitempty"`
}

// ToNotification builds the stored form of the message
func (m NotificationMessage) ToNotification() *Notification {
	return &Notification{
		UserID:               m.UserID,
		Kind:                 m.Kind,
		Title:                m.Title,
		Message:              m.Message,
		RelatedChildID:       m.RelatedChildID,
		RelatedAppointmentID: m.RelatedAppointmentID,
		RelatedVaccineID:     m.RelatedVaccineID,
	}
}
