package converter

import (
	"time"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
)

// ChildToResponse converts a Child entity to ChildResponse DTO.
// The age is computed against now.
func ChildToResponse(child *entity.Child, now time.Time) *dto.ChildResponse {
	if child == nil {
		return nil
	}

	response := &dto.ChildResponse{
		ID:        child.ID,
		ParentID:  child.ParentID,
		Name:      child.Name,
		BirthDate: child.BirthDate.Format(DateLayout),
		AgeMonths: child.AgeInMonths(now),
		Gender:    child.Gender,
		BloodType: child.BloodType,
		Allergies: child.Allergies,
		Notes:     child.Notes,
		IsActive:  child.IsActive,
		CreatedAt: child.CreatedAt,
		UpdatedAt: child.UpdatedAt,
	}

	if child.Parent != nil {
		response.ParentName = child.Parent.FullName
	}

	return response
}

// ChildrenToResponses converts a slice of Child entities to ChildResponse DTOs
func ChildrenToResponses(children []entity.Child, now time.Time) []dto.ChildResponse {
	responses := make([]dto.ChildResponse, len(children))
	for i := range children {
		responses[i] = *ChildToResponse(&children[i], now)
	}
	return responses
}
