package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SlotRequest struct {
	StartTime string `json:"start_time" validate:"required,clock"` // Format: HH:MM
	EndTime   string `json:"end_time" validate:"required,clock"`   // Format: HH:MM
}

type UpsertScheduleRequest struct {
	Date        string        `json:"date" validate:"required,isodate"` // Format: YYYY-MM-DD
	Slots       []SlotRequest `json:"slots" validate:"omitempty,dive"`
	IsAvailable *bool         `json:"is_available" validate:"omitempty"`
	Notes       *string       `json:"notes" validate:"omitempty,max=500"`
}

type AddSlotsRequest struct {
	Slots []SlotRequest `json:"slots" validate:"required,min=1,dive"`
}

// Response DTOs

type SlotResponse struct {
	ID        uuid.UUID  `json:"id"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	IsBooked  bool       `json:"is_booked"`
	BookedBy  *uuid.UUID `json:"booked_by,omitempty"`
}

type ScheduleResponse struct {
	ID             uuid.UUID       `json:"id"`
	DoctorID       uuid.UUID       `json:"doctor_id"`
	Doctor         *DoctorResponse `json:"doctor,omitempty"`
	Date           string          `json:"date"`
	IsAvailable    bool            `json:"is_available"`
	Notes          string          `json:"notes,omitempty"`
	Slots          []SlotResponse  `json:"slots"`
	AvailableCount int             `json:"available_count"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ScheduleListResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	Total     int                `json:"total"`
}

type AvailableScheduleResponse struct {
	ID             uuid.UUID      `json:"id"`
	Date           string         `json:"date"`
	Notes          string         `json:"notes,omitempty"`
	AvailableSlots []SlotResponse `json:"available_slots"`
	AvailableCount int            `json:"available_count"`
	TotalSlots     int            `json:"total_slots"`
}

type AvailableDoctorResponse struct {
	Doctor   DoctorResponse            `json:"doctor"`
	Schedule AvailableScheduleResponse `json:"schedule"`
}
