package converter

import (
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
)

// VaccineToResponse converts a Vaccine entity to VaccineResponse DTO
func VaccineToResponse(vaccine *entity.Vaccine) *dto.VaccineResponse {
	if vaccine == nil {
		return nil
	}

	ages := make([]int, len(vaccine.RecommendedAges))
	copy(ages, vaccine.RecommendedAges)

	return &dto.VaccineResponse{
		ID:                vaccine.ID,
		Name:              vaccine.Name,
		Description:       vaccine.Description,
		RecommendedAges:   ages,
		TotalDoses:        vaccine.TotalDoses,
		IsMandatory:       vaccine.IsMandatory,
		SideEffects:       vaccine.SideEffects,
		Contraindications: vaccine.Contraindications,
		IsActive:          vaccine.IsActive,
		CreatedAt:         vaccine.CreatedAt,
	}
}

// VaccinesToResponses converts a slice of Vaccine entities to VaccineResponse DTOs
func VaccinesToResponses(vaccines []entity.Vaccine) []dto.VaccineResponse {
	responses := make([]dto.VaccineResponse, len(vaccines))
	for i := range vaccines {
		responses[i] = *VaccineToResponse(&vaccines[i])
	}
	return responses
}
