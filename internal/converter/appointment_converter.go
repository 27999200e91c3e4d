package converter

import (
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:              appointment.ID,
		ChildID:         appointment.ChildID,
		ParentID:        appointment.ParentID,
		DoctorID:        appointment.DoctorID,
		ScheduleID:      appointment.ScheduleID,
		SlotID:          appointment.SlotID,
		Date:            appointment.ScheduledDate.Format(DateLayout),
		Time:            appointment.ScheduledTime,
		Status:          string(appointment.Status),
		Type:            string(appointment.Type),
		Notes:           appointment.Notes,
		RejectionReason: appointment.RejectionReason,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}

	if appointment.Child != nil {
		response.ChildName = appointment.Child.Name
	}
	if appointment.Parent != nil {
		response.ParentName = appointment.Parent.FullName
	}
	if appointment.Doctor != nil {
		response.DoctorName = appointment.Doctor.FullName
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
