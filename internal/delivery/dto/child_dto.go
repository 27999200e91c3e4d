package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateChildRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	BirthDate string `json:"birth_date" validate:"required,isodate"` // Format: YYYY-MM-DD
	Gender    string `json:"gender" validate:"required,oneof=male female"`
	BloodType string `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies string `json:"allergies" validate:"omitempty"`
	Notes     string `json:"notes" validate:"omitempty"`
	// ParentID lets staff register a child on behalf of a parent
	ParentID *uuid.UUID `json:"parent_id" validate:"omitempty"`
}

// UpdateChildRequest edits profile fields. The birth date is fixed because
// the dose schedule was derived from it.
type UpdateChildRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=255"`
	Gender    *string `json:"gender" validate:"omitempty,oneof=male female"`
	BloodType *string `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies *string `json:"allergies" validate:"omitempty"`
	Notes     *string `json:"notes" validate:"omitempty"`
	IsActive  *bool   `json:"is_active" validate:"omitempty"`
}

// Response DTOs

type ChildResponse struct {
	ID         uuid.UUID `json:"id"`
	ParentID   uuid.UUID `json:"parent_id"`
	ParentName string    `json:"parent_name,omitempty"`
	Name       string    `json:"name"`
	BirthDate  string    `json:"birth_date"`
	AgeMonths  int       `json:"age_months"`
	Gender     string    `json:"gender"`
	BloodType  string    `json:"blood_type,omitempty"`
	Allergies  string    `json:"allergies,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateChildResponse struct {
	Child               ChildResponse         `json:"child"`
	Vaccinations        []VaccinationResponse `json:"vaccinations"`
	VaccinationsCreated int                   `json:"vaccinations_created"`
}

type ChildDetailResponse struct {
	Child        ChildResponse         `json:"child"`
	Vaccinations []VaccinationResponse `json:"vaccinations"`
}

type ChildListResponse struct {
	Children []ChildResponse `json:"children"`
	Total    int             `json:"total"`
}
