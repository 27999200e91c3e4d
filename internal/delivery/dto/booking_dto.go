package dto

import "github.com/google/uuid"

// Request DTOs

// BookSlotRequest optionally pairs the reservation with an appointment
// request for a child
type BookSlotRequest struct {
	ChildID *uuid.UUID `json:"child_id" validate:"omitempty"`
	Type    string     `json:"type" validate:"omitempty,oneof=vaccination checkup consultation"`
	Notes   string     `json:"notes" validate:"omitempty,max=2000"`
}

// Response DTOs

type BookingResponse struct {
	Schedule    ScheduleResponse     `json:"schedule"`
	Slot        SlotResponse         `json:"slot"`
	Appointment *AppointmentResponse `json:"appointment,omitempty"`
}
