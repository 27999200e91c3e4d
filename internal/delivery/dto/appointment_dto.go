package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	ChildID    uuid.UUID  `json:"child_id" validate:"required"`
	Date       string     `json:"date" validate:"required_without=SlotID,omitempty,isodate"` // Format: YYYY-MM-DD
	Time       string     `json:"time" validate:"required_without=SlotID,omitempty,clock"`   // Format: HH:MM
	Type       string     `json:"type" validate:"omitempty,oneof=vaccination checkup consultation"`
	Notes      string     `json:"notes" validate:"omitempty,max=2000"`
	ScheduleID *uuid.UUID `json:"schedule_id" validate:"required_with=SlotID"`
	SlotID     *uuid.UUID `json:"slot_id" validate:"required_with=ScheduleID"`
}

type ConfirmAppointmentRequest struct {
	ScheduleID *uuid.UUID `json:"schedule_id" validate:"required_with=SlotID"`
	SlotID     *uuid.UUID `json:"slot_id" validate:"required_with=ScheduleID"`
}

type RejectAppointmentRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	ChildID         uuid.UUID  `json:"child_id"`
	ChildName       string     `json:"child_name,omitempty"`
	ParentID        uuid.UUID  `json:"parent_id"`
	ParentName      string     `json:"parent_name,omitempty"`
	DoctorID        *uuid.UUID `json:"doctor_id,omitempty"`
	DoctorName      string     `json:"doctor_name,omitempty"`
	ScheduleID      *uuid.UUID `json:"schedule_id,omitempty"`
	SlotID          *uuid.UUID `json:"slot_id,omitempty"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	Status          string     `json:"status"`
	Type            string     `json:"type"`
	Notes           string     `json:"notes,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
