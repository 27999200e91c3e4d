package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type UpdateVaccinationRequest struct {
	Status           string  `json:"status" validate:"required,oneof=scheduled delayed completed missed cancelled"`
	AdministeredDate *string `json:"administered_date" validate:"omitempty,isodate"` // Format: YYYY-MM-DD
	Notes            *string `json:"notes" validate:"omitempty,max=2000"`
	BatchNumber      *string `json:"batch_number" validate:"omitempty,max=100"`
}

// Response DTOs

type VaccinationResponse struct {
	ID               uuid.UUID  `json:"id"`
	ChildID          uuid.UUID  `json:"child_id"`
	ChildName        string     `json:"child_name,omitempty"`
	VaccineID        uuid.UUID  `json:"vaccine_id"`
	VaccineName      string     `json:"vaccine_name,omitempty"`
	DoseNumber       int        `json:"dose_number"`
	TotalDoses       int        `json:"total_doses,omitempty"`
	ScheduledDate    string     `json:"scheduled_date"`
	AdministeredDate *time.Time `json:"administered_date,omitempty"`
	DoctorID         *uuid.UUID `json:"doctor_id,omitempty"`
	DoctorName       string     `json:"doctor_name,omitempty"`
	Status           string     `json:"status"`
	Notes            string     `json:"notes,omitempty"`
	BatchNumber      string     `json:"batch_number,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type VaccinationListResponse struct {
	Vaccinations []VaccinationResponse `json:"vaccinations"`
	Total        int                   `json:"total"`
}

type VaccinationStatsResponse struct {
	TotalChildren      int64 `json:"total_children"`
	CompletedThisMonth int64 `json:"completed_this_month"`
	Scheduled          int64 `json:"scheduled"`
	Delayed            int64 `json:"delayed"`
	Completed          int64 `json:"completed"`
	Missed             int64 `json:"missed"`
	Cancelled          int64 `json:"cancelled"`
	CompletionRate     int64 `json:"completion_rate"`
}
