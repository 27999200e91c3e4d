package converter

import (
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
)

// SlotToResponse converts an AvailabilitySlot entity to SlotResponse DTO
func SlotToResponse(slot *entity.AvailabilitySlot) *dto.SlotResponse {
	if slot == nil {
		return nil
	}

	return &dto.SlotResponse{
		ID:        slot.ID,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		IsBooked:  slot.IsBooked,
		BookedBy:  slot.BookedBy,
	}
}

// SlotsToResponses converts a slice of AvailabilitySlot entities to SlotResponse DTOs
func SlotsToResponses(slots []entity.AvailabilitySlot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i := range slots {
		responses[i] = *SlotToResponse(&slots[i])
	}
	return responses
}

// ScheduleToResponse converts a DoctorSchedule entity to ScheduleResponse DTO
func ScheduleToResponse(schedule *entity.DoctorSchedule) *dto.ScheduleResponse {
	if schedule == nil {
		return nil
	}

	return &dto.ScheduleResponse{
		ID:             schedule.ID,
		DoctorID:       schedule.DoctorID,
		Doctor:         DoctorToResponse(schedule.Doctor),
		Date:           schedule.ScheduleDate.Format(DateLayout),
		IsAvailable:    schedule.IsAvailable,
		Notes:          schedule.Notes,
		Slots:          SlotsToResponses(schedule.Slots),
		AvailableCount: len(schedule.AvailableSlots()),
		CreatedAt:      schedule.CreatedAt,
		UpdatedAt:      schedule.UpdatedAt,
	}
}

// SchedulesToResponses converts a slice of DoctorSchedule entities to ScheduleResponse DTOs
func SchedulesToResponses(schedules []entity.DoctorSchedule) []dto.ScheduleResponse {
	responses := make([]dto.ScheduleResponse, len(schedules))
	for i := range schedules {
		responses[i] = *ScheduleToResponse(&schedules[i])
	}
	return responses
}

// AvailabilityToResponses converts doctor availability entries to AvailableDoctorResponse DTOs
func AvailabilityToResponses(entries []entity.DoctorAvailability) []dto.AvailableDoctorResponse {
	responses := make([]dto.AvailableDoctorResponse, len(entries))
	for i, entry := range entries {
		responses[i] = dto.AvailableDoctorResponse{
			Doctor: *DoctorToResponse(&entry.Doctor),
			Schedule: dto.AvailableScheduleResponse{
				ID:             entry.Schedule.ID,
				Date:           entry.Schedule.ScheduleDate.Format(DateLayout),
				Notes:          entry.Schedule.Notes,
				AvailableSlots: SlotsToResponses(entry.AvailableSlots),
				AvailableCount: len(entry.AvailableSlots),
				TotalSlots:     entry.TotalSlots,
			},
		}
	}
	return responses
}
