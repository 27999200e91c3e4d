package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID                   uuid.UUID  `json:"id"`
	Kind                 string     `json:"kind"`
	Title                string     `json:"title"`
	Message              string     `json:"message"`
	IsRead               bool       `json:"is_read"`
	RelatedChildID       *uuid.UUID `json:"related_child_id,omitempty"`
	RelatedAppointmentID *uuid.UUID `json:"related_appointment_id,omitempty"`
	RelatedVaccineID     *uuid.UUID `json:"related_vaccine_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Unread        int64                  `json:"unread"`
	Total         int                    `json:"total"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
