package converter

import (
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
)

// VaccinationToResponse converts a DoseRecord entity to VaccinationResponse DTO.
// Child, vaccine and doctor names are filled when the relations are loaded.
func VaccinationToResponse(record *entity.DoseRecord) *dto.VaccinationResponse {
	if record == nil {
		return nil
	}

	response := &dto.VaccinationResponse{
		ID:               record.ID,
		ChildID:          record.ChildID,
		VaccineID:        record.VaccineID,
		DoseNumber:       record.DoseNumber,
		ScheduledDate:    record.ScheduledDate.Format(DateLayout),
		AdministeredDate: record.AdministeredDate,
		DoctorID:         record.DoctorID,
		Status:           string(record.Status),
		Notes:            record.Notes,
		BatchNumber:      record.BatchNumber,
		UpdatedAt:        record.UpdatedAt,
	}

	if record.Child != nil {
		response.ChildName = record.Child.Name
	}
	if record.Vaccine != nil {
		response.VaccineName = record.Vaccine.Name
		response.TotalDoses = record.Vaccine.TotalDoses
	}
	if record.Doctor != nil {
		response.DoctorName = record.Doctor.FullName
	}

	return response
}

// VaccinationsToResponses converts a slice of DoseRecord entities to VaccinationResponse DTOs
func VaccinationsToResponses(records []entity.DoseRecord) []dto.VaccinationResponse {
	responses := make([]dto.VaccinationResponse, len(records))
	for i := range records {
		responses[i] = *VaccinationToResponse(&records[i])
	}
	return responses
}

// StatsToResponse converts aggregated dose statistics to VaccinationStatsResponse DTO
func StatsToResponse(stats *entity.VaccinationStats) *dto.VaccinationStatsResponse {
	if stats == nil {
		return nil
	}

	return &dto.VaccinationStatsResponse{
		TotalChildren:      stats.TotalChildren,
		CompletedThisMonth: stats.CompletedThisMonth,
		Scheduled:          stats.Scheduled,
		Delayed:            stats.Delayed,
		Completed:          stats.Completed,
		Missed:             stats.Missed,
		Cancelled:          stats.Cancelled,
		CompletionRate:     stats.CompletionRate,
	}
}
