package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateVaccineRequest struct {
	Name              string `json:"name" validate:"required,max=255"`
	Description       string `json:"description" validate:"omitempty"`
	RecommendedAges   []int  `json:"recommended_ages" validate:"required,dive,gte=0"`
	TotalDoses        int    `json:"total_doses" validate:"gte=0"`
	IsMandatory       *bool  `json:"is_mandatory" validate:"omitempty"`
	SideEffects       string `json:"side_effects" validate:"omitempty"`
	Contraindications string `json:"contraindications" validate:"omitempty"`
}

// Response DTOs

type VaccineResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	RecommendedAges   []int     `json:"recommended_ages"`
	TotalDoses        int       `json:"total_doses"`
	IsMandatory       bool      `json:"is_mandatory"`
	SideEffects       string    `json:"side_effects,omitempty"`
	Contraindications string    `json:"contraindications,omitempty"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

type VaccineListResponse struct {
	Vaccines []VaccineResponse `json:"vaccines"`
	Total    int               `json:"total"`
}
